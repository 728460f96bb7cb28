package decision

import (
	"math"
	"slices"
	"time"

	"assetcore/internal/policy"
)

// Evaluate runs the full pipeline for one asset. It is pure: identical
// (assetID, inputs, policy, now) always yield an identical Result.
func Evaluate(assetID string, in AssetInputs, p policy.Policy, now time.Time) Result {
	now = now.UTC()

	signals := NormalizeSignals(in, now)
	factors := ComputeFactors(signals)
	scores := ComputeScores(factors, p)
	gate := Gate(scores, p)
	decay := ApplyDecay(p, in, gate.Decision, now)
	actions, band := RequiredActions(gate, decay, scores)

	slices.SortStableFunc(factors, func(a, b FactorContribution) int {
		x, y := math.Abs(a.Contribution), math.Abs(b.Contribution)
		switch {
		case x > y:
			return -1
		case x < y:
			return 1
		default:
			return 0
		}
	})

	return Result{
		AssetID:         assetID,
		PolicyID:        p.ID,
		Scores:          scores,
		Decision:        decay.Decision,
		ConfidenceBand:  band,
		TopFactors:      factors,
		RequiredActions: actions,
		Audit: Audit{
			ScoreModelVersion: ScoreModelVersion,
			PolicyVersion:     p.Version,
			ComputedAt:        now,
		},
	}
}
