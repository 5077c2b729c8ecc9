// Package dom implements a lightweight element tree with shadow root
// support. It is not a full DOM: it models exactly what delegation
// resolution needs — parent/child structure, attributes, element ids,
// and encapsulated shadow subtrees with their own id scopes.
//
// The node layout follows golang.org/x/net/html (linked siblings rather
// than child slices) so trees converted from parsed HTML keep the same
// shape and traversal idioms.
package dom

import (
	"errors"
	"strings"
)

// NodeType discriminates the node kinds the tree can hold.
type NodeType int

const (
	// DocumentNode is the root of a parsed document.
	DocumentNode NodeType = iota
	// ElementNode is a named element with attributes.
	ElementNode
	// TextNode holds character data.
	TextNode
	// shadowTreeNode is the synthetic root of a shadow root's subtree.
	// Never created by callers; only AttachShadow produces one.
	shadowTreeNode
)

// Attribute is a single name/value pair on an element.
type Attribute struct {
	Key string
	Val string
}

// Node is an element, text node, or document root.
//
// Mutate structure only through AppendChild and Remove so that sibling
// links stay consistent.
type Node struct {
	Type NodeType
	// Data is the tag name for elements and the text for text nodes.
	Data string
	Attr []Attribute

	Parent                   *Node
	FirstChild, LastChild    *Node
	PrevSibling, NextSibling *Node

	// shadow is non-nil when this element hosts a shadow root.
	shadow *ShadowRoot
	// owner is set on a shadow tree root to point back at its ShadowRoot.
	owner *ShadowRoot
}

// NewElement creates a detached element node.
func NewElement(tag string, attrs ...Attribute) *Node {
	return &Node{Type: ElementNode, Data: strings.ToLower(tag), Attr: attrs}
}

// NewText creates a detached text node.
func NewText(text string) *Node {
	return &Node{Type: TextNode, Data: text}
}

// NewDocument creates an empty document root.
func NewDocument() *Node {
	return &Node{Type: DocumentNode}
}

// AttrVal returns the value of the named attribute and whether it is present.
// Attribute names are matched case-insensitively, as in parsed HTML.
func (n *Node) AttrVal(key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// ID returns the element's id attribute, or "" if absent.
func (n *Node) ID() string {
	v, _ := n.AttrVal("id")
	return v
}

// SetAttr sets or replaces the named attribute.
func (n *Node) SetAttr(key, val string) {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, Attribute{Key: strings.ToLower(key), Val: val})
}

// Tag returns the element's tag name ("" for non-elements).
func (n *Node) Tag() string {
	if n.Type != ElementNode {
		return ""
	}
	return n.Data
}

var errNotDetached = errors.New("dom: node already has a parent")

// AppendChild adds c as the last child of n. c must be detached.
func (n *Node) AppendChild(c *Node) error {
	if c.Parent != nil || c.PrevSibling != nil || c.NextSibling != nil {
		return errNotDetached
	}
	c.Parent = n
	if n.LastChild == nil {
		n.FirstChild = c
		n.LastChild = c
		return nil
	}
	c.PrevSibling = n.LastChild
	n.LastChild.NextSibling = c
	n.LastChild = c
	return nil
}

// Remove detaches n (and its whole subtree) from its parent. Detaching
// is what invalidates any delegate designation held on nodes in the
// subtree: containment checks simply stop succeeding.
func (n *Node) Remove() {
	p := n.Parent
	if p == nil {
		return
	}
	if p.FirstChild == n {
		p.FirstChild = n.NextSibling
	}
	if p.LastChild == n {
		p.LastChild = n.PrevSibling
	}
	if n.PrevSibling != nil {
		n.PrevSibling.NextSibling = n.NextSibling
	}
	if n.NextSibling != nil {
		n.NextSibling.PrevSibling = n.PrevSibling
	}
	n.Parent = nil
	n.PrevSibling = nil
	n.NextSibling = nil
}

// Walk visits n and every descendant in document order. It does not
// cross shadow boundaries; the visitor can recurse into n.Shadow()
// itself when composed traversal is wanted. Returning false from fn
// prunes the subtree below the current node.
func Walk(n *Node, fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}
