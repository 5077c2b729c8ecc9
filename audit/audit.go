// Package audit implements the delegation audit pipeline: parse
// markup, inventory every shadow root and its delegate state, walk
// delegation chains (flagging cycles), and show each label/ARIA
// relationship before and after delegation.
//
// The pipeline: raw HTML → parse (with trace) → inventory → chains →
// relationships → report.
package audit

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"

	"github.com/veilmark/semdom/a11y"
	"github.com/veilmark/semdom/delegate"
	"github.com/veilmark/semdom/dom"
	"github.com/veilmark/semdom/idgen"
	"github.com/veilmark/semdom/parse"
)

// excerptMax caps the sanitized host excerpt length.
const excerptMax = 400

// Options controls an audit run.
type Options struct {
	Policy delegate.Policy
	Logger *slog.Logger
	NewID  idgen.Generator
}

func (o *Options) defaults() {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.NewID == nil {
		o.NewID = idgen.Prefixed("rep_", idgen.Default)
	}
	if o.Policy == (delegate.Policy{}) {
		o.Policy = delegate.DefaultPolicy()
	}
}

// Auditor runs audits with shared sanitizer and markdown converter
// instances.
type Auditor struct {
	opts      Options
	sanitizer *bluemonday.Policy
	md        *converter.Converter
}

// New creates an Auditor.
func New(opts Options) *Auditor {
	opts.defaults()
	return &Auditor{
		opts:      opts,
		sanitizer: bluemonday.UGCPolicy(),
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
	}
}

// Run audits the given HTML document.
func Run(src []byte, opts Options) (*Report, error) {
	return New(opts).Run(src)
}

// Run parses src and produces the delegation report.
func (a *Auditor) Run(src []byte) (*Report, error) {
	reg := delegate.NewRegistry()

	var traces []parse.TraceEvent
	p := parse.New(reg,
		parse.WithLogger(a.opts.Logger),
		parse.WithTrace(func(ev parse.TraceEvent) { traces = append(traces, ev) }),
	)
	doc, err := p.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}

	res := delegate.NewResolver(reg, a.opts.Policy)
	rep := &Report{
		ID:          a.opts.NewID(),
		GeneratedAt: time.Now().UnixMilli(),
		Policy:      a.opts.Policy,
	}

	unresolved := unresolvedByRoot(traces)
	a.inventory(doc, reg, res, unresolved, rep)
	a.relationships(doc, res, rep)

	rep.Summary.ShadowRoots = len(rep.ShadowRoots)
	rep.Summary.Relationships = len(rep.Relationships)
	return rep, nil
}

func unresolvedByRoot(traces []parse.TraceEvent) map[*dom.ShadowRoot]string {
	m := make(map[*dom.ShadowRoot]string)
	for _, ev := range traces {
		if !ev.Resolved {
			m[ev.ShadowRoot] = ev.ID
		}
	}
	return m
}

// inventory walks every scope, recording each shadow root's delegate
// state and the delegation chain from its host.
func (a *Auditor) inventory(doc *dom.Node, reg *delegate.Registry, res *delegate.Resolver, unresolved map[*dom.ShadowRoot]string, rep *Report) {
	forEachScope(doc, func(root *dom.Node) {
		dom.Walk(root, func(n *dom.Node) bool {
			sr := n.Shadow()
			if sr == nil {
				return true
			}
			info := ShadowRootInfo{
				HostPath: NodePath(n),
				HostTag:  n.Tag(),
				Mode:     string(sr.Mode()),
				State:    StateNone,
			}
			if id, ok := unresolved[sr]; ok {
				info.State = StateUnresolved
				info.DelegateID = id
				rep.Summary.Unresolved++
			}
			if del, ok := reg.Get(sr); ok {
				info.State = StateSet
				info.DelegateID = del.ID()
				info.DelegatePath = NodePath(del)
				info.DelegateText = a.flatten(del)
				rep.Summary.Delegates++
				rep.Chains = append(rep.Chains, a.chain(n, res))
			}
			info.HostExcerpt = a.excerpt(n)
			rep.ShadowRoots = append(rep.ShadowRoots, info)
			return true
		})
	})
	for _, c := range rep.Chains {
		if c.Cyclic {
			rep.Summary.Cycles++
		}
	}
}

func (a *Auditor) chain(host *dom.Node, res *delegate.Resolver) Chain {
	hops, err := res.ResolveChain(host, delegate.CategoryARIA)
	c := Chain{
		HostPath: NodePath(host),
		Cyclic:   errors.Is(err, delegate.ErrDelegationCycle),
	}
	for _, h := range hops {
		c.Hops = append(c.Hops, NodePath(h))
	}
	return c
}

// relationships records every label[for] and ARIA IDREF relationship
// in every scope, with its pre- and post-delegation target.
func (a *Auditor) relationships(doc *dom.Node, res *delegate.Resolver, rep *Report) {
	assoc := a11y.New(res)
	forEachScope(doc, func(root *dom.Node) {
		dom.Walk(root, func(n *dom.Node) bool {
			if n.Type != dom.ElementNode {
				return true
			}
			if n.Tag() == "label" {
				if id, ok := n.AttrVal("for"); ok && id != "" {
					raw := dom.GetElementByID(dom.ScopeRoot(n), id)
					resolved := assoc.LabelTarget(n)
					rep.Relationships = append(rep.Relationships,
						relationship("label-for", n, id, raw, resolved, rep))
				}
			}
			for _, attr := range refAttrOrder {
				val, ok := n.AttrVal(attr)
				if !ok || val == "" {
					continue
				}
				rawTargets := rawRefs(n, attr)
				resolvedTargets := assoc.ResolveRefs(n, attr)
				for i, raw := range rawTargets {
					var resolved *dom.Node
					if i < len(resolvedTargets) {
						resolved = resolvedTargets[i]
					}
					rep.Relationships = append(rep.Relationships,
						relationship(attr, n, raw.id, raw.node, resolved, rep))
				}
			}
			return true
		})
	})
}

// refAttrOrder fixes the reporting order of the ARIA reference
// attributes (a11y.RefAttrs is a map).
var refAttrOrder = []string{
	"aria-labelledby",
	"aria-describedby",
	"aria-controls",
	"aria-details",
	"aria-owns",
	"aria-activedescendant",
}

type rawRef struct {
	id   string
	node *dom.Node
}

// rawRefs resolves the IDREF tokens of attr without delegation,
// keeping only tokens that match an element (mirroring ResolveRefs so
// indices line up).
func rawRefs(el *dom.Node, attr string) []rawRef {
	val, _ := el.AttrVal(attr)
	scope := dom.ScopeRoot(el)
	var out []rawRef
	for _, id := range strings.Fields(val) {
		if n := dom.GetElementByID(scope, id); n != nil {
			out = append(out, rawRef{id: id, node: n})
		}
	}
	return out
}

func relationship(kind string, source *dom.Node, id string, raw, resolved *dom.Node, rep *Report) Relationship {
	rel := Relationship{
		Kind:       kind,
		SourcePath: NodePath(source),
		TargetID:   id,
		RawPath:    NodePath(raw),
	}
	if resolved != nil {
		rel.ResolvedPath = NodePath(resolved)
		rel.Delegated = resolved != raw
	}
	if rel.Delegated {
		rep.Summary.Delegated++
	}
	return rel
}

// forEachScope invokes fn for the document scope and, recursively, for
// every shadow tree scope beneath it.
func forEachScope(root *dom.Node, fn func(*dom.Node)) {
	fn(root)
	dom.Walk(root, func(n *dom.Node) bool {
		if sr := n.Shadow(); sr != nil {
			forEachScope(sr.Tree(), fn)
		}
		return true
	})
}

// excerpt serializes the host's markup, sanitized and truncated.
func (a *Auditor) excerpt(n *dom.Node) string {
	s := a.sanitizer.Sanitize(dom.Render(n))
	if len(s) > excerptMax {
		// Cut on a rune boundary so the excerpt stays valid UTF-8.
		cut := excerptMax
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}

// flatten renders the delegate subtree as markdown for the report's
// human-readable target text.
func (a *Auditor) flatten(n *dom.Node) string {
	md, err := a.md.ConvertString(dom.Render(n))
	if err != nil {
		a.opts.Logger.Debug("audit: markdown flatten failed", "error", err)
		return dom.ComposedText(n)
	}
	return md
}
