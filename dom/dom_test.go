package dom

import (
	"strings"
	"testing"
)

func TestAppendChild_Links(t *testing.T) {
	parent := NewElement("div")
	a := NewElement("span")
	b := NewElement("span")
	if err := parent.AppendChild(a); err != nil {
		t.Fatal(err)
	}
	if err := parent.AppendChild(b); err != nil {
		t.Fatal(err)
	}

	if parent.FirstChild != a || parent.LastChild != b {
		t.Fatalf("child links wrong: first=%v last=%v", parent.FirstChild, parent.LastChild)
	}
	if a.NextSibling != b || b.PrevSibling != a {
		t.Error("sibling links wrong")
	}
	if err := parent.AppendChild(a); err == nil {
		t.Error("appending an attached node: expected error")
	}
}

func TestRemove_DetachesSubtree(t *testing.T) {
	parent := NewElement("div")
	mid := NewElement("section")
	leaf := NewElement("input")
	_ = parent.AppendChild(mid)
	_ = mid.AppendChild(leaf)

	mid.Remove()
	if mid.Parent != nil {
		t.Error("removed node still has a parent")
	}
	if parent.FirstChild != nil || parent.LastChild != nil {
		t.Error("parent still references removed child")
	}
	// The subtree stays intact below the detached node.
	if leaf.Parent != mid {
		t.Error("detached subtree broken")
	}
}

func TestAttachShadow(t *testing.T) {
	host := NewElement("x-field")
	sr, err := host.AttachShadow(ModeOpen)
	if err != nil {
		t.Fatal(err)
	}
	if sr.Host() != host || host.Shadow() != sr {
		t.Error("host/shadow back-references wrong")
	}
	if _, err := host.AttachShadow(ModeOpen); err == nil {
		t.Error("second shadow root: expected error")
	}
	if _, err := NewText("x").AttachShadow(ModeOpen); err == nil {
		t.Error("shadow on text node: expected error")
	}
	if _, err := NewElement("div").AttachShadow("ajar"); err == nil {
		t.Error("unknown mode: expected error")
	}
}

func TestShadowContains_DoesNotCrossBoundaries(t *testing.T) {
	host := NewElement("x-field")
	sr, _ := host.AttachShadow(ModeOpen)
	inner := NewElement("input")
	_ = sr.Tree().AppendChild(inner)

	if !sr.Contains(inner) {
		t.Error("shadow tree should contain its own element")
	}
	if sr.Contains(host) {
		t.Error("shadow tree must not contain its host")
	}

	// Element inside a nested shadow tree belongs to the inner scope only.
	nestedHost := NewElement("x-inner")
	_ = sr.Tree().AppendChild(nestedHost)
	nested, _ := nestedHost.AttachShadow(ModeOpen)
	deep := NewElement("button")
	_ = nested.Tree().AppendChild(deep)

	if !sr.Contains(nestedHost) {
		t.Error("nested host is part of the outer shadow tree")
	}
	if sr.Contains(deep) {
		t.Error("nested shadow content must not count as outer-tree containment")
	}
}

func TestContains_FalseAfterRemoval(t *testing.T) {
	host := NewElement("x-field")
	sr, _ := host.AttachShadow(ModeOpen)
	wrap := NewElement("div")
	inner := NewElement("input")
	_ = sr.Tree().AppendChild(wrap)
	_ = wrap.AppendChild(inner)

	wrap.Remove()
	if sr.Contains(inner) {
		t.Error("containment must end when the subtree is detached")
	}
}

func TestGetElementByID_ScopedPerTree(t *testing.T) {
	doc := NewDocument()
	host := NewElement("x-field", Attribute{Key: "id", Val: "host"})
	_ = doc.AppendChild(host)
	sr, _ := host.AttachShadow(ModeOpen)
	inner := NewElement("input", Attribute{Key: "id", Val: "field"})
	_ = sr.Tree().AppendChild(inner)

	if got := GetElementByID(doc, "host"); got != host {
		t.Errorf("document scope: got %v, want host", got)
	}
	if got := GetElementByID(doc, "field"); got != nil {
		t.Error("shadow id must not resolve in the document scope")
	}
	if got := sr.GetElementByID("field"); got != inner {
		t.Errorf("shadow scope: got %v, want inner", got)
	}
	if got := sr.GetElementByID("host"); got != nil {
		t.Error("document id must not resolve in the shadow scope")
	}
}

func TestScopeRoot_AndEnclosingShadowRoot(t *testing.T) {
	doc := NewDocument()
	host := NewElement("x-field")
	_ = doc.AppendChild(host)
	sr, _ := host.AttachShadow(ModeOpen)
	inner := NewElement("input")
	_ = sr.Tree().AppendChild(inner)

	if ScopeRoot(host) != doc {
		t.Error("host scope should be the document")
	}
	if EnclosingShadowRoot(host) != nil {
		t.Error("host is not inside a shadow scope")
	}
	if EnclosingShadowRoot(inner) != sr {
		t.Error("inner element should report its shadow root")
	}
}

func TestRender_DeclarativeRoundTripShape(t *testing.T) {
	host := NewElement("x-field", Attribute{Key: "id", Val: "h"})
	sr, _ := host.AttachShadow(ModeOpen)
	_ = sr.Tree().AppendChild(NewElement("input", Attribute{Key: "id", Val: "i"}))
	_ = host.AppendChild(NewText("light"))

	got := Render(host)
	want := `<x-field id="h"><template shadowrootmode="open"><input id="i"></template>light</x-field>`
	if got != want {
		t.Errorf("Render:\n got %s\nwant %s", got, want)
	}
}

func TestRender_Escaping(t *testing.T) {
	el := NewElement("span", Attribute{Key: "title", Val: `a"b`})
	_ = el.AppendChild(NewText("1 < 2 & 3"))
	got := Render(el)
	if !strings.Contains(got, "&quot;") || !strings.Contains(got, "&lt;") || !strings.Contains(got, "&amp;") {
		t.Errorf("Render escaping: got %s", got)
	}
}

func TestComposedText_ShadowReplacesLight(t *testing.T) {
	host := NewElement("x-field")
	_ = host.AppendChild(NewText("light text"))
	sr, _ := host.AttachShadow(ModeOpen)
	_ = sr.Tree().AppendChild(NewText("shadow text"))

	if got := TextContent(host); got != "light text" {
		t.Errorf("TextContent: got %q", got)
	}
	if got := ComposedText(host); got != "shadow text" {
		t.Errorf("ComposedText: got %q", got)
	}
}
