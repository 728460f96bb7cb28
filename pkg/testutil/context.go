package testutil

import (
	"net/http"

	"assetcore/pkg/requestcontext"
)

// WithActor attaches a caller identity, as the metadata middleware would
// for an X-Actor-ID header.
func WithActor(req *http.Request, actorID string) *http.Request {
	return req.WithContext(requestcontext.WithActorID(req.Context(), actorID))
}
