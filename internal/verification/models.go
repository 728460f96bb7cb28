package verification

import (
	"assetcore/internal/decision"
	"assetcore/internal/policy"
)

// Actor ids used for events written by the core itself.
const (
	ActorGateway = "SYS:API_GATEWAY"
	ActorKernel  = "SYS:CORE_KERNEL"
)

// VerifyRequest is one evaluation request after transport decoding.
// PolicyID may be an id, an alias, or blank for the default policy.
type VerifyRequest struct {
	AssetID  string
	Inputs   decision.AssetInputs
	PolicyID string
}

// RecordedDecision pairs an evaluation result with the ledger event that
// durably recorded it. It only exists after a successful ledger write.
type RecordedDecision struct {
	Result        decision.Result
	LedgerEventID string
	AssetCreated  bool
}

// RevokeRequest revokes a previously recorded decision of an asset.
type RevokeRequest struct {
	AssetID         string
	DecisionEventID string
	Reason          string
	ActorID         string
}

// ReplayReport compares a recorded decision with a fresh evaluation of its
// snapshot at the original computation time.
type ReplayReport struct {
	EventID     string          `json:"event_id"`
	AssetID     string          `json:"asset_id"`
	Match       bool            `json:"match"`
	Differences []string        `json:"differences,omitempty"`
	Recorded    decision.Result `json:"recorded"`
	Replayed    decision.Result `json:"replayed"`
	Revoked     bool            `json:"revoked"`
}

// PolicyCatalog describes the policies a caller may select.
type PolicyCatalog struct {
	DefaultID string
	Policies  []policy.Policy
	Aliases   map[string]string
}
