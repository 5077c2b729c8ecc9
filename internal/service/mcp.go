package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/veilmark/semdom/audit"
	"github.com/veilmark/semdom/delegate"
	"github.com/veilmark/semdom/dom"
	"github.com/veilmark/semdom/idgen"
	"github.com/veilmark/semdom/kit"
	"github.com/veilmark/semdom/parse"
)

// RegisterMCP registers the semdom tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerAuditTool(srv)
	s.registerResolveTool(srv)
}

// mcpMiddleware wraps every tool endpoint: stamps a request id and
// logs failed calls with the transport and id.
func (s *Service) mcpMiddleware() kit.Middleware {
	requestID := func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			if kit.GetRequestID(ctx) == "" {
				ctx = kit.WithRequestID(ctx, idgen.New())
			}
			return next(ctx, req)
		}
	}
	logFailures := func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			resp, err := next(ctx, req)
			if err != nil {
				s.logger.Warn("tool call failed",
					"transport", kit.GetTransport(ctx),
					"request_id", kit.GetRequestID(ctx),
					"err", err)
			}
			return resp, err
		}
	}
	return kit.Chain(requestID, logFailures)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// --- semdom_audit ---

type mcpAuditReq struct {
	HTML    string `json:"html"`
	Persist bool   `json:"persist"`
}

func (s *Service) registerAuditTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "semdom_audit",
		Description: "Audit an HTML document for shadow-root semantic delegation: delegates, chains, cycles, and rewritten label/ARIA relationships.",
		InputSchema: inputSchema(map[string]any{
			"html":    map[string]any{"type": "string", "description": "HTML document to audit"},
			"persist": map[string]any{"type": "boolean", "description": "Store the report in the history database"},
		}, []string{"html"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*mcpAuditReq)
		return s.Audit(ctx, r.HTML, nil, r.Persist)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r mcpAuditReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, s.mcpMiddleware()(endpoint), decode)
}

// --- semdom_resolve ---

type mcpResolveReq struct {
	HTML      string `json:"html"`
	ElementID string `json:"element_id"`
	Category  string `json:"category"`
}

type mcpResolveResp struct {
	InputPath    string   `json:"input_path"`
	ResolvedPath string   `json:"resolved_path"`
	ResolvedID   string   `json:"resolved_id,omitempty"`
	ResolvedTag  string   `json:"resolved_tag"`
	Hops         []string `json:"hops"`
	Delegated    bool     `json:"delegated"`
}

func (s *Service) registerResolveTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "semdom_resolve",
		Description: "Resolve the effective delegation target of an element (by id) in an HTML document for a relationship category.",
		InputSchema: inputSchema(map[string]any{
			"html":       map[string]any{"type": "string", "description": "HTML document"},
			"element_id": map[string]any{"type": "string", "description": "id of the element to resolve"},
			"category":   map[string]any{"type": "string", "description": "style | aria | activedescendant | label-for | label-wrapped | form (default aria)"},
		}, []string{"html", "element_id"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*mcpResolveReq)
		return s.resolveByID(r)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r mcpResolveReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, s.mcpMiddleware()(endpoint), decode)
}

func (s *Service) resolveByID(r *mcpResolveReq) (*mcpResolveResp, error) {
	cat := delegate.Category(r.Category)
	if r.Category == "" {
		cat = delegate.CategoryARIA
	}

	reg := delegate.NewRegistry()
	doc, err := parse.New(reg, parse.WithLogger(s.logger)).Parse(bytes.NewReader([]byte(r.HTML)))
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	el := findAcrossScopes(doc, r.ElementID)
	if el == nil {
		return nil, fmt.Errorf("no element with id %q", r.ElementID)
	}

	res := delegate.NewResolver(reg, s.policy)
	hops, chainErr := res.ResolveChain(el, cat)
	target := el
	if chainErr == nil {
		target = hops[len(hops)-1]
	} else if !errors.Is(chainErr, delegate.ErrDelegationCycle) {
		return nil, chainErr
	}

	resp := &mcpResolveResp{
		InputPath:    audit.NodePath(el),
		ResolvedPath: audit.NodePath(target),
		ResolvedID:   target.ID(),
		ResolvedTag:  target.Tag(),
		Delegated:    target != el,
	}
	for _, h := range hops {
		resp.Hops = append(resp.Hops, audit.NodePath(h))
	}
	return resp, nil
}

// findAcrossScopes searches the document scope and every shadow scope
// for the first element with the given id.
func findAcrossScopes(root *dom.Node, id string) *dom.Node {
	if el := dom.GetElementByID(root, id); el != nil {
		return el
	}
	var found *dom.Node
	dom.Walk(root, func(n *dom.Node) bool {
		if found != nil {
			return false
		}
		if sr := n.Shadow(); sr != nil {
			if el := findAcrossScopes(sr.Tree(), id); el != nil {
				found = el
				return false
			}
		}
		return true
	})
	return found
}
