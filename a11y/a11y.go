// Package a11y implements the relationship consumers that semantic
// delegation plugs into: label association, ARIA IDREF resolution, and
// a simplified accessible name/description computation. Every place
// the algorithms would use a referenced element directly, they
// substitute the resolver's effective target instead.
package a11y

import (
	"strings"

	"github.com/veilmark/semdom/delegate"
	"github.com/veilmark/semdom/dom"
)

// RefAttrs are the ARIA reference attributes routed through delegation,
// mapped to their resolution category.
var RefAttrs = map[string]delegate.Category{
	"aria-labelledby":       delegate.CategoryARIA,
	"aria-describedby":      delegate.CategoryARIA,
	"aria-controls":         delegate.CategoryARIA,
	"aria-details":          delegate.CategoryARIA,
	"aria-owns":             delegate.CategoryARIA,
	"aria-activedescendant": delegate.CategoryActiveDescendant,
}

// Assoc resolves accessibility relationships over a tree, following
// semantic delegation.
type Assoc struct {
	res *delegate.Resolver
}

// New creates an Assoc backed by res.
func New(res *delegate.Resolver) *Assoc {
	return &Assoc{res: res}
}

// LabelTarget computes the control a <label> element labels. An
// explicit for=ID wins over wrapping; in both cases the raw target is
// substituted by its delegation result, so a label pointing at a
// shadow host lands on the host's effective delegate.
func (a *Assoc) LabelTarget(label *dom.Node) *dom.Node {
	if label == nil || label.Tag() != "label" {
		return nil
	}
	if id, ok := label.AttrVal("for"); ok && id != "" {
		target := dom.GetElementByID(dom.ScopeRoot(label), id)
		if target == nil {
			return nil
		}
		return a.res.Resolve(target, delegate.CategoryLabelFor)
	}
	// Implicit association: first labelable descendant in the light tree.
	var target *dom.Node
	dom.Walk(label, func(n *dom.Node) bool {
		if target != nil {
			return false
		}
		if n != label && labelable(n) {
			target = n
			return false
		}
		return true
	})
	if target == nil {
		return nil
	}
	return a.res.Resolve(target, delegate.CategoryLabelWrapped)
}

func labelable(n *dom.Node) bool {
	switch n.Tag() {
	case "input", "button", "select", "textarea", "meter", "output", "progress":
		return true
	}
	// A shadow host can become labelable through its delegate.
	return n.Shadow() != nil
}

// ResolveRefs resolves the IDREF token list held in the named ARIA
// attribute of el, each reference passed through delegation. Tokens
// that do not resolve in el's tree scope are dropped, matching how
// dangling IDREFs behave today.
func (a *Assoc) ResolveRefs(el *dom.Node, attr string) []*dom.Node {
	cat, ok := RefAttrs[strings.ToLower(attr)]
	if !ok {
		return nil
	}
	raw, ok := el.AttrVal(attr)
	if !ok {
		return nil
	}
	scope := dom.ScopeRoot(el)
	var out []*dom.Node
	for _, id := range strings.Fields(raw) {
		target := dom.GetElementByID(scope, id)
		if target == nil {
			continue
		}
		out = append(out, a.res.Resolve(target, cat))
	}
	return out
}

// FormTarget computes the element that participates in form association
// for el: when el is a shadow host whose delegate chain ends in a form
// control and the form category is enabled, that control stands in.
func (a *Assoc) FormTarget(el *dom.Node) *dom.Node {
	return a.res.Resolve(el, delegate.CategoryForm)
}
