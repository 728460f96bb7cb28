// Package metadata carries caller metadata from HTTP headers into the request
// context so services can attribute ledger events without importing net/http.
package metadata

import (
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"assetcore/pkg/requestcontext"
)

const (
	// HeaderActorID names the caller acting on an asset, e.g. "USR:ops-42" or "PARTNER:acme".
	HeaderActorID = "X-Actor-ID"

	maxActorIDLength = 128
)

// RequestMetadata copies the chi request id and the declared actor into the
// context. It must run after chi's RequestID middleware.
func RequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if reqID := chimiddleware.GetReqID(ctx); reqID != "" {
			ctx = requestcontext.WithRequestID(ctx, reqID)
			w.Header().Set(chimiddleware.RequestIDHeader, reqID)
		}
		if actor := ActorFromRequest(r); actor != "" {
			ctx = requestcontext.WithActorID(ctx, actor)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ActorFromRequest extracts a bounded, trimmed actor id from the request headers.
func ActorFromRequest(r *http.Request) string {
	actor := strings.TrimSpace(r.Header.Get(HeaderActorID))
	if len(actor) > maxActorIDLength {
		return ""
	}
	return actor
}
