package decision

import (
	"math"

	"assetcore/internal/policy"
)

// ComputeScores aggregates factors per bucket and computes the policy-weighted
// composite.
//
//   - Non-fraud bucket: sum(contribution*weight)/sum(weight), clamped; empty bucket is 0.
//   - fraud_risk: sum(|contribution|*weight)/sum(weight), clamped, forced to 1
//     when a tamper factor is present.
//   - core_confidence: weighted mean of the four buckets and 1-fraud_risk using
//     policy weights; 0 when the policy weights sum to 0.
func ComputeScores(factors []FactorContribution, p policy.Policy) Scores {
	type acc struct{ num, den float64 }
	buckets := make(map[Bucket]*acc, 5)
	tampered := false

	for _, f := range factors {
		a, ok := buckets[f.Bucket]
		if !ok {
			a = &acc{}
			buckets[f.Bucket] = a
		}
		c := f.Contribution
		if f.Bucket == BucketFraudRisk {
			c = math.Abs(c)
		}
		a.num += c * f.Weight
		a.den += f.Weight
		if f.FactorID == FactorTamperRisk {
			tampered = true
		}
	}

	score := func(b Bucket) float64 {
		a, ok := buckets[b]
		if !ok || a.den == 0 {
			return 0
		}
		return clamp01(a.num / a.den)
	}

	s := Scores{
		Identity:   score(BucketIdentity),
		Provenance: score(BucketProvenance),
		Condition:  score(BucketCondition),
		Liquidity:  score(BucketLiquidity),
		FraudRisk:  score(BucketFraudRisk),
	}
	if tampered {
		s.FraudRisk = 1.0
	}
	s.CoreConfidence = coreConfidence(s, p.Weights)
	return s
}

func coreConfidence(s Scores, w policy.Weights) float64 {
	total := w.Total()
	if total <= 0 {
		return 0
	}
	sum := s.Identity*w.Identity +
		s.Provenance*w.Provenance +
		s.Condition*w.Condition +
		s.Liquidity*w.Liquidity +
		(1-s.FraudRisk)*w.FraudSafety
	return clamp01(sum / total)
}
