package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"assetcore/internal/ledger"
	"assetcore/internal/verification"
	dErrors "assetcore/pkg/domain-errors"
	"assetcore/pkg/platform/httputil"
	"assetcore/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the verification operations exposed over HTTP.
type Service interface {
	Verify(ctx context.Context, req verification.VerifyRequest) (*verification.RecordedDecision, error)
	Revoke(ctx context.Context, req verification.RevokeRequest) (*ledger.Event, error)
	Replay(ctx context.Context, eventID string) (*verification.ReplayReport, error)
	Policies() verification.PolicyCatalog
}

// Handler wires verification endpoints to the verification service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts verification endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/verify", h.HandleVerify)
	r.Post("/v1/assets/{assetID}/revocations", h.HandleRevoke)
	r.Get("/v1/events/{eventID}/replay", h.HandleReplay)
	r.Get("/v1/policies", h.HandlePolicies)
}

// HandleVerify handles POST /v1/verify.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	parsed := req.Parsed()

	rec, err := h.service.Verify(ctx, parsed)
	if err != nil {
		h.logger.ErrorContext(ctx, "verification failed",
			"request_id", requestID,
			"asset_id", parsed.AssetID,
			"policy_id", parsed.PolicyID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "asset verified",
		"request_id", requestID,
		"asset_id", rec.Result.AssetID,
		"decision", rec.Result.Decision,
		"ledger_event_id", rec.LedgerEventID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromRecorded(rec))
}

// HandleRevoke handles POST /v1/assets/{assetID}/revocations.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actorID := requestcontext.ActorID(ctx)
	if actorID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "X-Actor-ID header is required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[RevokeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	ev, err := h.service.Revoke(ctx, verification.RevokeRequest{
		AssetID:         chi.URLParam(r, "assetID"),
		DecisionEventID: req.DecisionEventID,
		Reason:          req.Reason,
		ActorID:         actorID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "revocation failed",
			"request_id", requestID,
			"decision_event_id", req.DecisionEventID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ev)
}

// HandleReplay handles GET /v1/events/{eventID}/replay.
func (h *Handler) HandleReplay(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Replay(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

// HandlePolicies handles GET /v1/policies.
func (h *Handler) HandlePolicies(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, FromCatalog(h.service.Policies()))
}
