package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"assetcore/internal/ledger"
	dErrors "assetcore/pkg/domain-errors"
	"assetcore/pkg/platform/httputil"
	"assetcore/pkg/requestcontext"
)

// Service defines the ledger operations exposed over HTTP.
type Service interface {
	LogEvent(ctx context.Context, eventType ledger.EventType, assetID, actorID string, payload ledger.Payload) (*ledger.Event, error)
	GetAssetHistory(ctx context.Context, assetID string) ([]ledger.Event, error)
	GetEvent(ctx context.Context, eventID string) (*ledger.Event, error)
	VerifyChain(ctx context.Context, assetID string) (*ledger.ChainReport, error)
}

// Handler serves read access to the ledger plus caller-recorded events.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts ledger endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/assets/{assetID}/history", h.HandleHistory)
	r.Get("/v1/assets/{assetID}/verify", h.HandleVerifyChain)
	r.Post("/v1/assets/{assetID}/events", h.HandleAppend)
	r.Get("/v1/events/{eventID}", h.HandleGetEvent)
}

// HandleHistory handles GET /v1/assets/{assetID}/history.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	assetID, err := ledger.NormalizeAssetID(chi.URLParam(r, "assetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.service.GetAssetHistory(ctx, assetID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read asset history",
			"request_id", requestcontext.RequestID(ctx),
			"asset_id", assetID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, NewHistoryResponse(assetID, events))
}

// HandleGetEvent handles GET /v1/events/{eventID}.
func (h *Handler) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := h.service.GetEvent(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ev)
}

// HandleVerifyChain handles GET /v1/assets/{assetID}/verify.
func (h *Handler) HandleVerifyChain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	assetID, err := ledger.NormalizeAssetID(chi.URLParam(r, "assetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	report, err := h.service.VerifyChain(ctx, assetID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !report.Valid {
		h.logger.WarnContext(ctx, "asset chain failed verification",
			"request_id", requestcontext.RequestID(ctx),
			"asset_id", assetID,
			"problems", len(report.Problems),
		)
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

// HandleAppend handles POST /v1/assets/{assetID}/events. Only observations and
// transfers may be recorded by callers; the rest are written by the core.
func (h *Handler) HandleAppend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actorID := requestcontext.ActorID(ctx)
	if actorID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "X-Actor-ID header is required"))
		return
	}
	assetID, err := ledger.NormalizeAssetID(chi.URLParam(r, "assetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[AppendEventRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	ev, err := h.service.LogEvent(ctx, req.ParsedType(), assetID, actorID, req.ParsedPayload())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to record ledger event",
			"request_id", requestID,
			"asset_id", assetID,
			"event_type", req.Type,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ev)
}
