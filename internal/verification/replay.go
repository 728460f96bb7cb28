package verification

import (
	"bytes"
	"context"
	"strings"

	"assetcore/internal/decision"
	"assetcore/internal/ledger"
	dErrors "assetcore/pkg/domain-errors"
	"assetcore/pkg/requestcontext"
)

// Replay re-runs the pipeline on a recorded decision's snapshot at its
// original computation time and reports whether the result is identical.
func (s *Service) Replay(ctx context.Context, eventID string) (*ReplayReport, error) {
	ctx, span := s.tracer.Start(ctx, "verification.Replay")
	defer span.End()

	ev, err := s.ledger.GetEvent(ctx, strings.TrimSpace(eventID))
	if err != nil {
		return nil, err
	}
	rec, ok := ev.Payload.(ledger.DecisionRecorded)
	if !ok {
		return nil, dErrors.NewValidation("Event is not a recorded decision", []dErrors.FieldError{
			{Field: "eventId", Message: "must reference a DECISION_RECORDED event"},
		})
	}

	replayed, err := s.safeEvaluate(ctx, rec.Analysis.AssetID, rec.Inputs, rec.Policy, rec.Analysis.Audit.ComputedAt)
	if err != nil {
		return nil, err
	}
	diffs, err := resultDifferences(rec.Analysis, replayed)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compare replayed decision")
	}
	history, err := s.ledger.GetAssetHistory(ctx, ev.AssetID)
	if err != nil {
		return nil, err
	}
	revoked := isRevoked(history, ev.EventID)

	report := &ReplayReport{
		EventID:     ev.EventID,
		AssetID:     ev.AssetID,
		Match:       len(diffs) == 0,
		Differences: diffs,
		Recorded:    rec.Analysis,
		Replayed:    replayed,
		Revoked:     revoked,
	}
	s.metrics.IncrementReplay(report.Match)
	if !report.Match {
		s.logger.WarnContext(ctx, "replayed decision differs from record",
			"request_id", requestcontext.RequestID(ctx),
			"event_id", ev.EventID,
			"differences", diffs,
		)
	}
	return report, nil
}

// resultDifferences names the top-level result fields whose canonical forms
// differ.
func resultDifferences(a, b decision.Result) ([]string, error) {
	fields := []struct {
		name string
		a, b any
	}{
		{"asset_id", a.AssetID, b.AssetID},
		{"policy_id", a.PolicyID, b.PolicyID},
		{"scores", a.Scores, b.Scores},
		{"decision", a.Decision, b.Decision},
		{"confidence_band", a.ConfidenceBand, b.ConfidenceBand},
		{"top_factors", a.TopFactors, b.TopFactors},
		{"required_actions", a.RequiredActions, b.RequiredActions},
		{"audit", a.Audit, b.Audit},
	}
	var diffs []string
	for _, f := range fields {
		ca, err := ledger.Canonicalize(f.a)
		if err != nil {
			return nil, err
		}
		cb, err := ledger.Canonicalize(f.b)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(ca, cb) {
			diffs = append(diffs, f.name)
		}
	}
	return diffs, nil
}
