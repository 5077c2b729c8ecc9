package delegate

import (
	"errors"

	"github.com/veilmark/semdom/dom"
)

// ErrDelegationCycle is reported by ResolveChain when following
// delegate links revisits an element (or exceeds the defensive hop
// cap). Resolve never surfaces it; it falls back to the input element.
var ErrDelegationCycle = errors.New("delegate: delegation chain cycles")

// maxChainHops bounds traversal against pathological trees. Legitimate
// chains are bounded by shadow-nesting depth, which stays far below
// this in any real document.
const maxChainHops = 256

// Resolver computes effective targets by following delegate links
// through nested shadow roots.
type Resolver struct {
	reg    *Registry
	policy Policy
}

// NewResolver creates a resolver over reg governed by policy.
func NewResolver(reg *Registry, policy Policy) *Resolver {
	return &Resolver{reg: reg, policy: policy}
}

// Policy returns the resolver's category policy.
func (r *Resolver) Policy() Policy { return r.policy }

// Resolve returns the element that should stand in for el under the
// given relationship category. It is total and deterministic: excluded
// categories, absent delegation, cycles, and hop-cap overruns all
// resolve to el itself. Callers substitute Resolve(target, cat) at
// every point where they would otherwise have used target directly.
func (r *Resolver) Resolve(el *dom.Node, cat Category) *dom.Node {
	chain, err := r.ResolveChain(el, cat)
	if err != nil {
		// Cycle: behave as if no delegation were configured.
		return el
	}
	return chain[len(chain)-1]
}

// ResolveChain resolves like Resolve but returns every hop, starting
// with el itself. On a cycle it returns the hops walked so far together
// with ErrDelegationCycle; diagnostic callers (the audit pipeline) use
// the partial chain, correctness-critical callers should discard it.
func (r *Resolver) ResolveChain(el *dom.Node, cat Category) ([]*dom.Node, error) {
	chain := []*dom.Node{el}
	if el == nil || cat == CategoryStyle || !r.policy.Includes(cat) {
		return chain, nil
	}
	visited := map[*dom.Node]bool{el: true}
	current := el
	for hops := 0; ; hops++ {
		if hops >= maxChainHops {
			return chain, ErrDelegationCycle
		}
		sr := current.Shadow()
		if sr == nil {
			return chain, nil
		}
		next, ok := r.reg.Get(sr)
		if !ok {
			return chain, nil
		}
		if visited[next] {
			return chain, ErrDelegationCycle
		}
		visited[next] = true
		chain = append(chain, next)
		current = next
	}
}
