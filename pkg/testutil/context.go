package testutil

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bigfive/pkg/requestcontext"
)

// WithURLParams attaches chi route parameters so a handler method can be
// called directly without a router.
func WithURLParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// WithRequestID stamps a request id the way the request id middleware does.
func WithRequestID(req *http.Request, id string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), id))
}
