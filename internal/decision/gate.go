package decision

import (
	"fmt"

	"assetcore/internal/policy"
)

// mediumBandCeiling is the core confidence below which a passing decision is
// reported with a MEDIUM band.
const mediumBandCeiling = 0.85

// Breach describes the hard threshold that rejected a decision.
type Breach struct {
	Bucket    Bucket  `json:"bucket"`
	Score     float64 `json:"score"`
	Threshold float64 `json:"threshold"`
}

func (b Breach) String() string {
	if b.Bucket == BucketFraudRisk {
		return fmt.Sprintf("fraud_risk %.2f above %.2f", b.Score, b.Threshold)
	}
	return fmt.Sprintf("%s %.2f below %.2f", b.Bucket, b.Score, b.Threshold)
}

// GateOutcome is the pre-decay decision.
type GateOutcome struct {
	Decision Decision
	Band     ConfidenceBand
	Breach   *Breach
}

// Gate applies the policy's thresholds to the scores.
//
// Hard fails are checked in fixed order (identity, provenance, condition,
// liquidity, then fraud_risk against maxFraudRisk); the first breach rejects
// and no soft check runs. Otherwise a core confidence under the policy floor
// needs review with a LOW band, and one under 0.85 stays VERIFIED with a
// MEDIUM band.
func Gate(s Scores, p policy.Policy) GateOutcome {
	th := p.Thresholds
	floors := []struct {
		bucket    Bucket
		score     float64
		threshold float64
	}{
		{BucketIdentity, s.Identity, th.Identity},
		{BucketProvenance, s.Provenance, th.Provenance},
		{BucketCondition, s.Condition, th.Condition},
		{BucketLiquidity, s.Liquidity, th.Liquidity},
	}
	for _, f := range floors {
		if f.score < f.threshold {
			return rejected(Breach{Bucket: f.bucket, Score: f.score, Threshold: f.threshold})
		}
	}
	if s.FraudRisk > th.MaxFraudRisk {
		return rejected(Breach{Bucket: BucketFraudRisk, Score: s.FraudRisk, Threshold: th.MaxFraudRisk})
	}

	switch {
	case s.CoreConfidence < th.CoreConfidence:
		return GateOutcome{Decision: DecisionReviewRequired, Band: BandLow}
	case s.CoreConfidence < mediumBandCeiling:
		return GateOutcome{Decision: DecisionVerified, Band: BandMedium}
	default:
		return GateOutcome{Decision: DecisionVerified, Band: BandHigh}
	}
}

func rejected(b Breach) GateOutcome {
	return GateOutcome{Decision: DecisionRejected, Band: BandHigh, Breach: &b}
}
