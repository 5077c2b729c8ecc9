package a11y

import (
	"strings"

	"github.com/veilmark/semdom/dom"
)

// ComputeName computes a simplified accessible name for el, in
// precedence order: aria-labelledby (texts of the resolved references),
// aria-label, associated <label> text, then the title attribute. It is
// deliberately a subset of the full AccName algorithm — enough to show
// delegation changing the outcome, not a conformant implementation.
func (a *Assoc) ComputeName(el *dom.Node) string {
	if el == nil {
		return ""
	}
	if refs := a.ResolveRefs(el, "aria-labelledby"); len(refs) > 0 {
		return joinTexts(refs)
	}
	if v, ok := el.AttrVal("aria-label"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if labels := a.labelsFor(el); len(labels) > 0 {
		return joinTexts(labels)
	}
	if v, ok := el.AttrVal("title"); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// ComputeDescription computes a simplified accessible description:
// aria-describedby reference texts, falling back to title when it was
// not already consumed as the name.
func (a *Assoc) ComputeDescription(el *dom.Node) string {
	if el == nil {
		return ""
	}
	if refs := a.ResolveRefs(el, "aria-describedby"); len(refs) > 0 {
		return joinTexts(refs)
	}
	if v, ok := el.AttrVal("title"); ok && a.ComputeName(el) != strings.TrimSpace(v) {
		return strings.TrimSpace(v)
	}
	return ""
}

// labelsFor finds every <label> in el's document whose resolved target
// is el. The scan covers the document scope and all shadow scopes so a
// label outside a shadow boundary still reaches a delegated control
// inside one.
func (a *Assoc) labelsFor(el *dom.Node) []*dom.Node {
	var labels []*dom.Node
	var scan func(root *dom.Node)
	scan = func(root *dom.Node) {
		dom.Walk(root, func(n *dom.Node) bool {
			if n.Tag() == "label" && a.LabelTarget(n) == el {
				labels = append(labels, n)
			}
			if sr := n.Shadow(); sr != nil {
				scan(sr.Tree())
			}
			return true
		})
	}
	scan(documentRoot(el))
	return labels
}

// documentRoot walks out of every enclosing shadow scope to the
// outermost tree root.
func documentRoot(n *dom.Node) *dom.Node {
	top := dom.ScopeRoot(n)
	for {
		sr := dom.EnclosingShadowRoot(top)
		if sr == nil {
			return top
		}
		top = dom.ScopeRoot(sr.Host())
	}
}

func joinTexts(nodes []*dom.Node) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if t := dom.ComposedText(n); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
