package metadata

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"

	"assetcore/pkg/requestcontext"
)

func TestRequestMetadata(t *testing.T) {
	var requestID, actorID string
	h := chimiddleware.RequestID(RequestMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = requestcontext.RequestID(r.Context())
		actorID = requestcontext.ActorID(r.Context())
	})))

	t.Run("copies request id and actor", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(chimiddleware.RequestIDHeader, "req-123")
		req.Header.Set(HeaderActorID, "  USR:ops-42 ")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, "req-123", requestID)
		assert.Equal(t, "USR:ops-42", actorID)
		assert.Equal(t, "req-123", rec.Header().Get(chimiddleware.RequestIDHeader))
	})

	t.Run("oversized actor is dropped", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderActorID, strings.Repeat("a", maxActorIDLength+1))

		h.ServeHTTP(httptest.NewRecorder(), req)

		assert.Empty(t, actorID)
		assert.NotEmpty(t, requestID)
	})
}
