package delegate

// Category names a kind of relationship that may (or may not) follow
// semantic delegation. Which categories delegate is policy, not
// algorithm: the resolver consults a Policy table so the set can be
// tightened or loosened without touching resolution itself.
type Category string

const (
	// CategoryStyle is CSS selector matching. Permanently excluded
	// from delegation; no Policy setting can enable it.
	CategoryStyle Category = "style"
	// CategoryARIA covers aria-* reference attributes (labelledby,
	// describedby, controls, ...).
	CategoryARIA Category = "aria"
	// CategoryActiveDescendant is aria-activedescendant, kept separate
	// because its target must stay focus-manageable.
	CategoryActiveDescendant Category = "activedescendant"
	// CategoryLabelFor is <label for=ID> association.
	CategoryLabelFor Category = "label-for"
	// CategoryLabelWrapped is implicit association by wrapping a
	// control in a <label>.
	CategoryLabelWrapped Category = "label-wrapped"
	// CategoryForm is form-control participation (value, validity,
	// submission). Off by default pending a specification decision.
	CategoryForm Category = "form"
)

// Policy is the per-category inclusion table. The zero value delegates
// nothing; DefaultPolicy returns the shipping defaults. Styling has no
// entry on purpose: it can never be included.
type Policy struct {
	ARIA             bool `yaml:"aria" json:"aria"`
	ActiveDescendant bool `yaml:"activedescendant" json:"activedescendant"`
	LabelFor         bool `yaml:"label_for" json:"label_for"`
	LabelWrapped     bool `yaml:"label_wrapped" json:"label_wrapped"`
	Form             bool `yaml:"form" json:"form"`
}

// DefaultPolicy enables the ARIA and label categories and leaves form
// participation off.
func DefaultPolicy() Policy {
	return Policy{
		ARIA:             true,
		ActiveDescendant: true,
		LabelFor:         true,
		LabelWrapped:     true,
		Form:             false,
	}
}

// Includes reports whether the category follows delegation under this
// policy. Unknown categories do not delegate.
func (p Policy) Includes(c Category) bool {
	switch c {
	case CategoryARIA:
		return p.ARIA
	case CategoryActiveDescendant:
		return p.ActiveDescendant
	case CategoryLabelFor:
		return p.LabelFor
	case CategoryLabelWrapped:
		return p.LabelWrapped
	case CategoryForm:
		return p.Form
	default:
		return false
	}
}
