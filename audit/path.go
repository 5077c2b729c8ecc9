package audit

import (
	"fmt"
	"strings"

	"github.com/veilmark/semdom/dom"
)

// NodePath builds an XPath-like locator for n, crossing shadow
// boundaries with a "#shadow" step so paths stay unique across scopes:
//
//	/html/body/x-field/#shadow/div/input
func NodePath(n *dom.Node) string {
	if n == nil {
		return ""
	}
	var segs []string
	cur := n
	for cur != nil {
		switch cur.Type {
		case dom.ElementNode:
			segs = append(segs, pathStep(cur))
			if cur.Parent != nil {
				cur = cur.Parent
				continue
			}
			// Top of a shadow scope: hop to the host.
			if sr := dom.EnclosingShadowRoot(cur); sr != nil {
				segs = append(segs, "#shadow")
				cur = sr.Host()
				continue
			}
			cur = nil
		case dom.TextNode:
			segs = append(segs, "text()")
			cur = cur.Parent
		default:
			if sr := dom.EnclosingShadowRoot(cur); sr != nil {
				segs = append(segs, "#shadow")
				cur = sr.Host()
				continue
			}
			cur = nil
		}
	}
	// Reverse into document order.
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return "/" + strings.Join(segs, "/")
}

// pathStep renders one path segment: the tag name, with a 1-based
// index among same-tag siblings when needed.
func pathStep(n *dom.Node) string {
	idx := 1
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == dom.ElementNode && s.Data == n.Data {
			idx++
		}
	}
	multiple := idx > 1
	if !multiple {
		for s := n.NextSibling; s != nil; s = s.NextSibling {
			if s.Type == dom.ElementNode && s.Data == n.Data {
				multiple = true
				break
			}
		}
	}
	if multiple {
		return fmt.Sprintf("%s[%d]", n.Data, idx)
	}
	return n.Data
}
