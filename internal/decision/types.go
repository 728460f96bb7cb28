// Package decision is the deterministic evaluation pipeline:
// inputs -> signals -> factors -> scores -> gate -> decay -> actions.
//
// Everything here is pure. Callers supply the clock, and no function performs
// I/O or keeps state, so evaluations can run in parallel without locking.
package decision

import "time"

// ScoreModelVersion identifies the scoring model stamped into every audit block.
const ScoreModelVersion = "core.score.v2.1"

// Decision is the categorical verdict for an asset.
type Decision string

const (
	DecisionVerified               Decision = "VERIFIED"
	DecisionVerifiedWithDisclosure Decision = "VERIFIED_WITH_DISCLOSURE"
	DecisionReviewRequired         Decision = "REVIEW_REQUIRED"
	DecisionExpired                Decision = "EXPIRED"
	DecisionRejected               Decision = "REJECTED"
	DecisionRevoked                Decision = "REVOKED"
)

// ConfidenceBand summarizes composite confidence.
type ConfidenceBand string

const (
	BandLow    ConfidenceBand = "LOW"
	BandMedium ConfidenceBand = "MEDIUM"
	BandHigh   ConfidenceBand = "HIGH"
)

// Source identifies where an observation came from.
type Source string

const (
	SourceHomeApp    Source = "HOME_APP"
	SourceLocker     Source = "LOCKER"
	SourceSmartTag   Source = "SMARTTAG"
	SourceHuman      Source = "HUMAN"
	SourcePartnerAPI Source = "PARTNER_API"
)

// Bucket is a score dimension.
type Bucket string

const (
	BucketIdentity   Bucket = "identity"
	BucketProvenance Bucket = "provenance"
	BucketCondition  Bucket = "condition"
	BucketLiquidity  Bucket = "liquidity"
	BucketFraudRisk  Bucket = "fraud_risk"
)

// Signal is a normalized, confidence-weighted observation derived from one input field.
type Signal struct {
	ID           string    `json:"id"`
	Value        float64   `json:"value"`
	Confidence   float64   `json:"confidence"`
	Source       Source    `json:"source"`
	Timestamp    time.Time `json:"timestamp"`
	EvidenceRefs []string  `json:"evidence_refs"`
}

// FactorContribution is a weighted, bucket-tagged, signed contribution.
// Fraud factors carry a negative contribution whose magnitude is the risk.
type FactorContribution struct {
	FactorID     string   `json:"factor_id"`
	Title        string   `json:"title"`
	Bucket       Bucket   `json:"bucket"`
	Weight       float64  `json:"weight"`
	Contribution float64  `json:"contribution"`
	SignalsUsed  []string `json:"signals_used"`
	EvidenceRefs []string `json:"evidence_refs"`
}

// Scores holds every bucket score plus the composite. All values are in [0,1];
// FraudRisk of 1 is maximum risk.
type Scores struct {
	Identity       float64 `json:"identity"`
	Provenance     float64 `json:"provenance"`
	Condition      float64 `json:"condition"`
	Liquidity      float64 `json:"liquidity"`
	FraudRisk      float64 `json:"fraud_risk"`
	CoreConfidence float64 `json:"core_confidence"`
}

// RequiredAction is a remediation or disclosure step derived from a decision.
type RequiredAction struct {
	ActionID       string   `json:"action_id"`
	Label          string   `json:"label"`
	Reason         string   `json:"reason"`
	EvidenceNeeded []string `json:"evidence_needed,omitempty"`
}

// Audit records what produced a result.
type Audit struct {
	ScoreModelVersion string    `json:"score_model_version"`
	PolicyVersion     string    `json:"policy_version"`
	ComputedAt        time.Time `json:"computed_at"`
}

// Result is the immutable outcome of one evaluation.
type Result struct {
	AssetID         string               `json:"asset_id"`
	PolicyID        string               `json:"policy_id"`
	Scores          Scores               `json:"scores"`
	Decision        Decision             `json:"decision"`
	ConfidenceBand  ConfidenceBand       `json:"confidence_band"`
	TopFactors      []FactorContribution `json:"top_factors"`
	RequiredActions []RequiredAction     `json:"required_actions"`
	Audit           Audit                `json:"audit"`
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
