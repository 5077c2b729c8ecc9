// Package parse builds dom trees from HTML markup, attaching
// declarative shadow roots and registering declaratively designated
// semantic delegates.
//
// A <template shadowrootmode="open|closed"> child of an element
// becomes that element's shadow root; the template itself does not
// survive into the tree. A shadowrootsemanticdelegate attribute on
// such a template names an id to resolve inside the freshly adopted
// shadow tree: resolution happens after the whole template subtree is
// in place (so ids declared later in the template still match) and
// funnels through the same Registry.Set that imperative code uses,
// which is why a later imperative assignment simply overwrites it.
package parse

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"github.com/veilmark/semdom/delegate"
	"github.com/veilmark/semdom/dom"
)

const (
	// AttrShadowRootMode marks a template as a declarative shadow root.
	AttrShadowRootMode = "shadowrootmode"
	// AttrSemanticDelegate names the id of the shadow root's delegate.
	AttrSemanticDelegate = "shadowrootsemanticdelegate"
)

// TraceEvent records one declarative delegate resolution attempt.
type TraceEvent struct {
	Host       *dom.Node
	ShadowRoot *dom.ShadowRoot
	ID         string
	Resolved   bool
}

// Parser converts HTML into dom trees and records declarative
// delegates in its registry.
type Parser struct {
	reg    *delegate.Registry
	logger *slog.Logger
	trace  func(TraceEvent)
}

// Option customises a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for declarative-resolution
// diagnostics. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) { p.logger = l }
}

// WithTrace installs a callback invoked for every declarative delegate
// attribute encountered, resolved or not. The audit pipeline uses it to
// surface unresolved ids that parsing itself treats as non-fatal.
func WithTrace(fn func(TraceEvent)) Option {
	return func(p *Parser) { p.trace = fn }
}

// New creates a Parser writing delegate designations into reg.
func New(reg *delegate.Registry, opts ...Option) *Parser {
	p := &Parser{reg: reg, logger: slog.Default()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Parse reads a full HTML document and returns its dom tree. Shadow
// roots declared in the markup are attached and their delegates
// registered before Parse returns.
func (p *Parser) Parse(r io.Reader) (*dom.Node, error) {
	n, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc := dom.NewDocument()
	p.convertChildren(n, doc)
	return doc, nil
}

// convertChildren adopts every child of src under dst, expanding
// declarative shadow root templates along the way.
func (p *Parser) convertChildren(src *html.Node, dst *dom.Node) {
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			_ = dst.AppendChild(dom.NewText(c.Data))
		case html.ElementNode:
			if mode, ok := shadowTemplateMode(c); ok {
				p.adoptShadowTemplate(c, dst, mode)
				continue
			}
			el := dom.NewElement(c.Data, convertAttrs(c.Attr)...)
			_ = dst.AppendChild(el)
			p.convertChildren(c, el)
		default:
			// Comments, doctypes: nothing delegation cares about.
		}
	}
}

// adoptShadowTemplate turns a declarative shadow root template into an
// attached shadow root on host, then resolves the declarative delegate
// id once the subtree is complete.
func (p *Parser) adoptShadowTemplate(tpl *html.Node, host *dom.Node, mode dom.ShadowMode) {
	sr, err := host.AttachShadow(mode)
	if err != nil {
		// Second declarative root on the same host; the first wins,
		// matching declarative shadow DOM behaviour.
		p.logger.Debug("parse: declarative shadow root skipped",
			"host", host.Tag(), "error", err)
		return
	}
	p.convertChildren(tpl, sr.Tree())

	id := attrVal(tpl, AttrSemanticDelegate)
	if id == "" {
		return
	}
	el := sr.GetElementByID(id)
	if el == nil {
		// Non-fatal: the shadow root simply has no delegate.
		p.logger.Debug("parse: semantic delegate id not found",
			"host", host.Tag(), "id", id)
		p.emit(TraceEvent{Host: host, ShadowRoot: sr, ID: id})
		return
	}
	if err := p.reg.Set(sr, el); err != nil {
		p.logger.Debug("parse: semantic delegate rejected",
			"host", host.Tag(), "id", id, "error", err)
		p.emit(TraceEvent{Host: host, ShadowRoot: sr, ID: id})
		return
	}
	p.emit(TraceEvent{Host: host, ShadowRoot: sr, ID: id, Resolved: true})
}

func (p *Parser) emit(ev TraceEvent) {
	if p.trace != nil {
		p.trace(ev)
	}
}

// shadowTemplateMode reports whether n is a declarative shadow root
// template and with which mode.
func shadowTemplateMode(n *html.Node) (dom.ShadowMode, bool) {
	if n.Type != html.ElementNode || n.Data != "template" {
		return "", false
	}
	switch strings.ToLower(attrVal(n, AttrShadowRootMode)) {
	case "open":
		return dom.ModeOpen, true
	case "closed":
		return dom.ModeClosed, true
	}
	return "", false
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func convertAttrs(attrs []html.Attribute) []dom.Attribute {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]dom.Attribute, len(attrs))
	for i, a := range attrs {
		out[i] = dom.Attribute{Key: a.Key, Val: a.Val}
	}
	return out
}
