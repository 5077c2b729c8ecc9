// Package delegate implements semantic delegation for shadow roots: a
// per-shadow-root registry designating one descendant element to stand
// in for the shadow host, and a resolver that follows nested delegate
// links to compute the effective target of a relationship.
package delegate

import (
	"errors"
	"fmt"

	"github.com/veilmark/semdom/dom"
)

// ErrInvalidDelegate is returned by Set when the element does not live
// inside the shadow root's own tree.
var ErrInvalidDelegate = errors.New("delegate: element is not in the shadow root's tree")

// Registry holds the delegate designation of each shadow root. It is a
// relation, not an owner: it never keeps elements alive, and a stored
// element that has since left its shadow tree reads back as absent.
//
// Registry is not safe for concurrent mutation; like the tree it
// annotates, it belongs to a single goroutine.
type Registry struct {
	links map[*dom.ShadowRoot]*dom.Node
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{links: make(map[*dom.ShadowRoot]*dom.Node)}
}

// Set designates el as the semantic delegate of sr. A nil el clears the
// designation. The element must be a descendant of sr's tree (nested
// shadow trees under sr do not count — those are their own scopes);
// otherwise Set fails with ErrInvalidDelegate and the registry is
// unchanged. Last write wins: imperative callers may overwrite a
// declaratively parsed designation.
func (r *Registry) Set(sr *dom.ShadowRoot, el *dom.Node) error {
	if sr == nil {
		return errors.New("delegate: nil shadow root")
	}
	if el == nil {
		delete(r.links, sr)
		return nil
	}
	if !sr.Contains(el) {
		tag := el.Tag()
		if tag == "" {
			tag = "node"
		}
		return fmt.Errorf("%w: <%s id=%q>", ErrInvalidDelegate, tag, el.ID())
	}
	r.links[sr] = el
	return nil
}

// Get returns sr's current delegate. Containment is revalidated on
// every read, so an element removed from the shadow tree since Set
// reads back as absent without any explicit invalidation call.
func (r *Registry) Get(sr *dom.ShadowRoot) (*dom.Node, bool) {
	el, ok := r.links[sr]
	if !ok {
		return nil, false
	}
	if !sr.Contains(el) {
		// The stored relation is stale; drop it so the map does not
		// pin the detached subtree.
		delete(r.links, sr)
		return nil, false
	}
	return el, true
}

// Len reports how many shadow roots currently have a stored
// designation, including ones that would revalidate as stale.
func (r *Registry) Len() int { return len(r.links) }
