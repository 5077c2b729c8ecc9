package a11y

import (
	"strings"
	"testing"

	"github.com/veilmark/semdom/delegate"
	"github.com/veilmark/semdom/dom"
	"github.com/veilmark/semdom/parse"
)

func setup(t *testing.T, src string) (*dom.Node, *Assoc) {
	t.Helper()
	reg := delegate.NewRegistry()
	doc, err := parse.New(reg).Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	return doc, New(delegate.NewResolver(reg, delegate.DefaultPolicy()))
}

func findTag(root *dom.Node, tag string) *dom.Node {
	var found *dom.Node
	dom.Walk(root, func(n *dom.Node) bool {
		if found != nil {
			return false
		}
		if n.Tag() == tag {
			found = n
			return false
		}
		return true
	})
	return found
}

func TestLabelTarget_DelegatesThroughHost(t *testing.T) {
	doc, assoc := setup(t, `
		<label for="H">Name</label>
		<x-field id="H">
			<template shadowrootmode="open" shadowrootsemanticdelegate="actualinput">
				<input id="actualinput">
			</template>
		</x-field>`)

	label := findTag(doc, "label")
	got := assoc.LabelTarget(label)
	if got == nil {
		t.Fatal("label target not found")
	}
	if got.Tag() != "input" || got.ID() != "actualinput" {
		t.Errorf("label target: got <%s id=%q>, want the inner input", got.Tag(), got.ID())
	}
}

func TestLabelTarget_NoDelegateFallsBackToHost(t *testing.T) {
	doc, assoc := setup(t, `
		<label for="H">Name</label>
		<x-field id="H">
			<template shadowrootmode="open"><input></template>
		</x-field>`)

	if got := assoc.LabelTarget(findTag(doc, "label")); got == nil || got.Tag() != "x-field" {
		t.Errorf("without delegation the host itself is the target, got %v", got)
	}
}

func TestLabelTarget_Wrapped(t *testing.T) {
	doc, assoc := setup(t, `
		<label>Name
			<x-field>
				<template shadowrootmode="open" shadowrootsemanticdelegate="i">
					<input id="i">
				</template>
			</x-field>
		</label>`)

	got := assoc.LabelTarget(findTag(doc, "label"))
	if got == nil || got.Tag() != "input" {
		t.Errorf("wrapped label: got %v, want the inner input", got)
	}
}

func TestLabelTarget_DanglingFor(t *testing.T) {
	doc, assoc := setup(t, `<label for="missing">Name</label>`)
	if got := assoc.LabelTarget(findTag(doc, "label")); got != nil {
		t.Errorf("dangling for: got %v, want nil", got)
	}
}

func TestResolveRefs_DescribedBy(t *testing.T) {
	doc, assoc := setup(t, `
		<div id="plain">hint</div>
		<x-field id="H">
			<template shadowrootmode="open" shadowrootsemanticdelegate="i">
				<input id="i">
			</template>
		</x-field>
		<button aria-describedby="plain H missing"></button>`)

	refs := assoc.ResolveRefs(findTag(doc, "button"), "aria-describedby")
	if len(refs) != 2 {
		t.Fatalf("refs: got %d, want 2 (missing token dropped)", len(refs))
	}
	if refs[0].Tag() != "div" {
		t.Errorf("refs[0]: got <%s>, want the plain div untouched", refs[0].Tag())
	}
	if refs[1].Tag() != "input" {
		t.Errorf("refs[1]: got <%s>, want the delegated input", refs[1].Tag())
	}
}

func TestResolveRefs_ActiveDescendantCategory(t *testing.T) {
	doc, assoc := setup(t, `
		<x-list id="L">
			<template shadowrootmode="open" shadowrootsemanticdelegate="ul">
				<ul id="ul"></ul>
			</template>
		</x-list>
		<input aria-activedescendant="L">`)

	refs := assoc.ResolveRefs(findTag(doc, "input"), "aria-activedescendant")
	if len(refs) != 1 || refs[0].Tag() != "ul" {
		t.Errorf("activedescendant: got %v", refs)
	}
}

func TestComputeName_LabelledByThroughDelegation(t *testing.T) {
	doc, assoc := setup(t, `
		<x-field id="H">
			<template shadowrootmode="open" shadowrootsemanticdelegate="t">
				<span id="t">Shadow title</span>
			</template>
		</x-field>
		<button aria-labelledby="H"></button>`)

	got := assoc.ComputeName(findTag(doc, "button"))
	if got != "Shadow title" {
		t.Errorf("name: got %q, want %q", got, "Shadow title")
	}
}

func TestComputeName_Precedence(t *testing.T) {
	doc, assoc := setup(t, `<input aria-label="explicit" title="fallback">`)
	if got := assoc.ComputeName(findTag(doc, "input")); got != "explicit" {
		t.Errorf("aria-label must win over title: got %q", got)
	}

	doc, assoc = setup(t, `<input title="fallback">`)
	if got := assoc.ComputeName(findTag(doc, "input")); got != "fallback" {
		t.Errorf("title fallback: got %q", got)
	}
}

func TestComputeName_FromExternalLabel(t *testing.T) {
	doc, assoc := setup(t, `
		<label for="H">Full name</label>
		<x-field id="H">
			<template shadowrootmode="open" shadowrootsemanticdelegate="i">
				<input id="i">
			</template>
		</x-field>`)

	// The label's resolved target is the inner input, so the input's
	// name comes from the external label across the shadow boundary.
	// The input lives in the shadow tree, so look it up in that scope.
	input := findTag(doc, "x-field").Shadow().GetElementByID("i")
	if input == nil {
		t.Fatal("shadow-scoped input not found")
	}
	if got := assoc.ComputeName(input); got != "Full name" {
		t.Errorf("name via delegated label: got %q, want %q", got, "Full name")
	}
}

func TestComputeDescription(t *testing.T) {
	doc, assoc := setup(t, `
		<x-hint id="H">
			<template shadowrootmode="open" shadowrootsemanticdelegate="p">
				<p id="p">Must be unique</p>
			</template>
		</x-hint>
		<input aria-describedby="H">`)

	if got := assoc.ComputeDescription(findTag(doc, "input")); got != "Must be unique" {
		t.Errorf("description: got %q", got)
	}
}

func TestFormTarget_GatedByPolicy(t *testing.T) {
	src := `
		<x-field id="H">
			<template shadowrootmode="open" shadowrootsemanticdelegate="i">
				<input id="i">
			</template>
		</x-field>`

	doc, assoc := setup(t, src)
	host := findTag(doc, "x-field")
	if got := assoc.FormTarget(host); got != host {
		t.Error("form category is off by default")
	}

	reg := delegate.NewRegistry()
	doc2, err := parse.New(reg).Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	policy := delegate.DefaultPolicy()
	policy.Form = true
	assoc2 := New(delegate.NewResolver(reg, policy))
	if got := assoc2.FormTarget(findTag(doc2, "x-field")); got == nil || got.Tag() != "input" {
		t.Errorf("form delegation enabled: got %v", got)
	}
}
