package audit

import (
	"github.com/veilmark/semdom/delegate"
)

// Delegate states reported per shadow root.
const (
	StateSet        = "set"        // a delegate is designated and valid
	StateUnresolved = "unresolved" // declarative id did not match
	StateNone       = "none"       // no designation at all
)

// Report is the result of auditing one document for semantic
// delegation. It is what the store persists and the service returns.
type Report struct {
	ID          string          `json:"id"`
	GeneratedAt int64           `json:"generated_at"` // unix millis
	Policy      delegate.Policy `json:"policy"`

	ShadowRoots   []ShadowRootInfo `json:"shadow_roots"`
	Chains        []Chain          `json:"chains,omitempty"`
	Relationships []Relationship   `json:"relationships,omitempty"`
	Summary       Summary          `json:"summary"`
}

// ShadowRootInfo describes one shadow root and its delegate state.
type ShadowRootInfo struct {
	HostPath     string `json:"host_path"`
	HostTag      string `json:"host_tag"`
	Mode         string `json:"mode"`
	State        string `json:"state"`
	DelegateID   string `json:"delegate_id,omitempty"`
	DelegatePath string `json:"delegate_path,omitempty"`
	// HostExcerpt is the host's serialized markup, sanitized for safe
	// embedding in report viewers, truncated.
	HostExcerpt string `json:"host_excerpt,omitempty"`
	// DelegateText is a readable flattening of the delegate subtree.
	DelegateText string `json:"delegate_text,omitempty"`
}

// Chain is one delegation chain starting at a shadow host.
type Chain struct {
	HostPath string   `json:"host_path"`
	Hops     []string `json:"hops"`
	Cyclic   bool     `json:"cyclic"`
}

// Relationship records an IDREF-style relationship before and after
// delegation.
type Relationship struct {
	Kind         string `json:"kind"` // "label-for", "aria-labelledby", ...
	SourcePath   string `json:"source_path"`
	TargetID     string `json:"target_id"`
	RawPath      string `json:"raw_path,omitempty"`
	ResolvedPath string `json:"resolved_path,omitempty"`
	// Delegated is true when delegation changed the target.
	Delegated bool `json:"delegated"`
}

// Summary aggregates the report counts.
type Summary struct {
	ShadowRoots   int `json:"shadow_roots"`
	Delegates     int `json:"delegates"`
	Unresolved    int `json:"unresolved"`
	Cycles        int `json:"cycles"`
	Relationships int `json:"relationships"`
	Delegated     int `json:"delegated"`
}
