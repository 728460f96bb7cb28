package handler

import (
	"time"

	"assetcore/internal/decision"
	"assetcore/internal/policy"
	"assetcore/internal/verification"
)

// DecisionResponse is the HTTP response for POST /v1/verify.
type DecisionResponse struct {
	AssetID         string                        `json:"asset_id"`
	PolicyID        string                        `json:"policy_id"`
	Scores          decision.Scores               `json:"scores"`
	Decision        decision.Decision             `json:"decision"`
	ConfidenceBand  decision.ConfidenceBand       `json:"confidence_band"`
	TopFactors      []decision.FactorContribution `json:"top_factors"`
	RequiredActions []decision.RequiredAction     `json:"required_actions"`
	Audit           AuditResponse                 `json:"audit"`
}

type AuditResponse struct {
	ScoreModelVersion string    `json:"score_model_version"`
	PolicyVersion     string    `json:"policy_version"`
	ComputedAt        time.Time `json:"computed_at"`
	LedgerEventID     string    `json:"ledger_event_id"`
}

// FromRecorded converts a recorded decision to its HTTP response.
func FromRecorded(rec *verification.RecordedDecision) *DecisionResponse {
	res := rec.Result
	factors := res.TopFactors
	if factors == nil {
		factors = []decision.FactorContribution{}
	}
	actions := res.RequiredActions
	if actions == nil {
		actions = []decision.RequiredAction{}
	}
	return &DecisionResponse{
		AssetID:         res.AssetID,
		PolicyID:        res.PolicyID,
		Scores:          res.Scores,
		Decision:        res.Decision,
		ConfidenceBand:  res.ConfidenceBand,
		TopFactors:      factors,
		RequiredActions: actions,
		Audit: AuditResponse{
			ScoreModelVersion: res.Audit.ScoreModelVersion,
			PolicyVersion:     res.Audit.PolicyVersion,
			ComputedAt:        res.Audit.ComputedAt,
			LedgerEventID:     rec.LedgerEventID,
		},
	}
}

// PoliciesResponse is the HTTP response for GET /v1/policies.
type PoliciesResponse struct {
	DefaultPolicyID string            `json:"default_policy_id"`
	Policies        []policy.Policy   `json:"policies"`
	Aliases         map[string]string `json:"aliases"`
}

func FromCatalog(c verification.PolicyCatalog) *PoliciesResponse {
	aliases := c.Aliases
	if aliases == nil {
		aliases = map[string]string{}
	}
	return &PoliciesResponse{DefaultPolicyID: c.DefaultID, Policies: c.Policies, Aliases: aliases}
}
