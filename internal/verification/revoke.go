package verification

import (
	"context"
	"strings"

	"assetcore/internal/ledger"
	dErrors "assetcore/pkg/domain-errors"
	"assetcore/pkg/requestcontext"
)

const maxReasonLength = 512

// Revoke withdraws a recorded decision of the asset. A decision can be
// revoked once; the check runs atomically with the append.
func (s *Service) Revoke(ctx context.Context, req RevokeRequest) (*ledger.Event, error) {
	ctx, span := s.tracer.Start(ctx, "verification.Revoke")
	defer span.End()

	assetID, err := ledger.NormalizeAssetID(req.AssetID)
	if err != nil {
		return nil, err
	}
	var fields []dErrors.FieldError
	eventID := strings.TrimSpace(req.DecisionEventID)
	if eventID == "" {
		fields = append(fields, dErrors.FieldError{Field: "decisionEventId", Message: "is required"})
	}
	reason := strings.TrimSpace(req.Reason)
	switch {
	case reason == "":
		fields = append(fields, dErrors.FieldError{Field: "reason", Message: "is required"})
	case len(reason) > maxReasonLength:
		fields = append(fields, dErrors.FieldError{Field: "reason", Message: "must be at most 512 characters"})
	}
	if len(fields) > 0 {
		return nil, dErrors.NewValidation("Invalid revocation request", fields)
	}
	if strings.TrimSpace(req.ActorID) == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "actor id is required")
	}

	target, err := s.ledger.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if target.Type != ledger.EventDecisionRecorded || target.AssetID != assetID {
		return nil, dErrors.NewValidation("Event is not a decision of this asset", []dErrors.FieldError{
			{Field: "decisionEventId", Message: "must reference a DECISION_RECORDED event of the asset"},
		})
	}

	check := func(ctx context.Context, _ *ledger.Tip, history ledger.HistoryFunc) error {
		events, err := history(ctx)
		if err != nil {
			return err
		}
		if isRevoked(events, eventID) {
			return dErrors.New(dErrors.CodeConflict, "decision already revoked")
		}
		return nil
	}

	var ev *ledger.Event
	err = s.withRetry(ctx, ledger.EventDecisionRevoked, func() error {
		var err error
		ev, err = s.ledger.LogEventChecked(ctx, ledger.EventDecisionRevoked, assetID, req.ActorID,
			ledger.DecisionRevoked{RevokedEventID: eventID, Reason: reason}, check)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.metrics.IncrementRevocation()
	s.logger.InfoContext(ctx, "decision revoked",
		"request_id", requestcontext.RequestID(ctx),
		"asset_id", assetID,
		"revoked_event_id", eventID,
		"actor_id", req.ActorID,
		"ledger_event_id", ev.EventID,
	)
	return ev, nil
}

func isRevoked(history []ledger.Event, eventID string) bool {
	for _, ev := range history {
		if rev, ok := ev.Payload.(ledger.DecisionRevoked); ok && rev.RevokedEventID == eventID {
			return true
		}
	}
	return false
}
