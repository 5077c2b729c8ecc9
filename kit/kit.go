// Package kit holds the small transport-agnostic plumbing shared by
// the HTTP and MCP surfaces: the Endpoint abstraction, middleware
// chaining, and request-scoped context accessors.
package kit

import "context"

// Endpoint is a transport-agnostic request handler. HTTP handlers and
// MCP tools both decode into a typed request and call one of these.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares outermost-first: Chain(a, b)(ep) runs a,
// then b, then ep.
func Chain(mws ...Middleware) Middleware {
	return func(ep Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			ep = mws[i](ep)
		}
		return ep
	}
}
