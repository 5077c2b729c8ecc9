package dom

import (
	"errors"
	"fmt"
)

// ShadowMode is the encapsulation mode of a shadow root.
type ShadowMode string

const (
	ModeOpen   ShadowMode = "open"
	ModeClosed ShadowMode = "closed"
)

// ShadowRoot is an encapsulated subtree attached to a host element.
// Its tree is a separate id scope: ids inside it are invisible to
// GetElementByID calls scoped to the host's own tree, and vice versa.
type ShadowRoot struct {
	host *Node
	mode ShadowMode
	tree *Node // synthetic shadowTreeNode holding the shadow children
}

// ErrShadowHost is returned when a shadow root cannot be attached.
var ErrShadowHost = errors.New("dom: cannot attach shadow root")

// AttachShadow attaches a new shadow root to host. Only element nodes
// can host, and a host carries at most one shadow root.
func (n *Node) AttachShadow(mode ShadowMode) (*ShadowRoot, error) {
	if n.Type != ElementNode {
		return nil, fmt.Errorf("%w: %v node is not an element", ErrShadowHost, n.Type)
	}
	if n.shadow != nil {
		return nil, fmt.Errorf("%w: <%s> already hosts one", ErrShadowHost, n.Data)
	}
	if mode != ModeOpen && mode != ModeClosed {
		return nil, fmt.Errorf("%w: unknown mode %q", ErrShadowHost, mode)
	}
	sr := &ShadowRoot{host: n, mode: mode, tree: &Node{Type: shadowTreeNode}}
	sr.tree.owner = sr
	n.shadow = sr
	return sr, nil
}

// Shadow returns the shadow root hosted by n, or nil.
func (n *Node) Shadow() *ShadowRoot { return n.shadow }

// Host returns the element this shadow root is attached to.
func (sr *ShadowRoot) Host() *Node { return sr.host }

// Mode returns the shadow root's encapsulation mode.
func (sr *ShadowRoot) Mode() ShadowMode { return sr.mode }

// Tree returns the root node of the shadow subtree. Children appended
// to it make up the shadow content.
func (sr *ShadowRoot) Tree() *Node { return sr.tree }

// Contains reports whether el currently lives inside this shadow
// root's tree. Nested shadow trees under this one do NOT count: an
// element inside an inner shadow root belongs to that inner scope.
func (sr *ShadowRoot) Contains(el *Node) bool {
	for p := el; p != nil; p = p.Parent {
		if p == sr.tree {
			return true
		}
	}
	return false
}

// GetElementByID finds the first element with the given id inside this
// shadow root's own scope (not descending into nested shadow trees).
func (sr *ShadowRoot) GetElementByID(id string) *Node {
	return getElementByID(sr.tree, id)
}

// ScopeRoot returns the root of the tree scope n belongs to: either a
// shadow tree root or the outermost ancestor (document or detached
// subtree root).
func ScopeRoot(n *Node) *Node {
	top := n
	for top.Parent != nil {
		top = top.Parent
	}
	return top
}

// EnclosingShadowRoot returns the shadow root whose tree contains n,
// or nil when n lives in the document (or a detached light subtree).
func EnclosingShadowRoot(n *Node) *ShadowRoot {
	return ScopeRoot(n).owner
}

// GetElementByID finds the first element with the given id in the tree
// scope rooted at root, without crossing shadow boundaries.
func GetElementByID(root *Node, id string) *Node {
	return getElementByID(root, id)
}

func getElementByID(root *Node, id string) *Node {
	if id == "" {
		return nil
	}
	var found *Node
	Walk(root, func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.Type == ElementNode && n.ID() == id {
			found = n
			return false
		}
		return true
	})
	return found
}
