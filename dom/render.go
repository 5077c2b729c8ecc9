package dom

import (
	"strings"
)

// voidElements per the HTML serialization rules; they render without a
// closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Render serializes n and its subtree back to HTML. Shadow trees are
// rendered as declarative <template shadowrootmode> blocks so a parse
// round-trip reproduces the same structure.
func Render(n *Node) string {
	var b strings.Builder
	render(&b, n)
	return b.String()
}

func render(b *strings.Builder, n *Node) {
	switch n.Type {
	case TextNode:
		b.WriteString(escapeText(n.Data))
	case DocumentNode, shadowTreeNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			render(b, c)
		}
	case ElementNode:
		b.WriteByte('<')
		b.WriteString(n.Data)
		for _, a := range n.Attr {
			b.WriteByte(' ')
			b.WriteString(a.Key)
			b.WriteString(`="`)
			b.WriteString(escapeAttr(a.Val))
			b.WriteByte('"')
		}
		b.WriteByte('>')
		if voidElements[n.Data] {
			return
		}
		if sr := n.shadow; sr != nil {
			b.WriteString(`<template shadowrootmode="`)
			b.WriteString(string(sr.mode))
			b.WriteString(`">`)
			for c := sr.tree.FirstChild; c != nil; c = c.NextSibling {
				render(b, c)
			}
			b.WriteString("</template>")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			render(b, c)
		}
		b.WriteString("</")
		b.WriteString(n.Data)
		b.WriteByte('>')
	}
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func escapeAttr(s string) string {
	r := strings.NewReplacer("&", "&amp;", `"`, "&quot;")
	return r.Replace(s)
}

// TextContent flattens the text of n's light tree (shadow content is
// skipped; use ComposedText for the flattened-tree view).
func TextContent(n *Node) string {
	var b strings.Builder
	Walk(n, func(c *Node) bool {
		if c.Type == TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return collapseSpace(b.String())
}

// ComposedText flattens the text of n as assistive technology would
// see it: when an element hosts a shadow root, the shadow content
// replaces the element's light children.
func ComposedText(n *Node) string {
	var b strings.Builder
	var walk func(*Node)
	walk = func(c *Node) {
		if c.Type == TextNode {
			b.WriteString(c.Data)
			return
		}
		if c.Type == ElementNode && c.shadow != nil {
			walk(c.shadow.tree)
			return
		}
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			walk(gc)
		}
	}
	walk(n)
	return collapseSpace(b.String())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
