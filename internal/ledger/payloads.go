package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"assetcore/internal/decision"
	"assetcore/internal/policy"
	pstrings "assetcore/pkg/platform/strings"
)

// ErrInvalidPayload is returned when a payload does not match its event type
// or fails its schema checks.
var ErrInvalidPayload = errors.New("invalid ledger payload")

// Payload is the tagged union of event bodies. Each variant names its event
// type and validates its own shape.
type Payload interface {
	EventType() EventType
	Validate() error
}

// AssetCreated opens an asset's chain.
type AssetCreated struct {
	Origin string `json:"origin,omitempty"`
	Note   string `json:"note,omitempty"`
}

func (AssetCreated) EventType() EventType { return EventAssetCreated }
func (AssetCreated) Validate() error      { return nil }

// ObservationAdded records raw evidence attached to an asset.
type ObservationAdded struct {
	Kind         string          `json:"kind"`
	Source       decision.Source `json:"source"`
	EvidenceRefs []string        `json:"evidence_refs"`
	Note         string          `json:"note,omitempty"`
}

// NewObservation builds an observation with trimmed, deduplicated evidence refs.
func NewObservation(kind string, source decision.Source, note string, refs ...string) ObservationAdded {
	cleaned := pstrings.DedupeAndTrim(refs)
	if cleaned == nil {
		cleaned = []string{}
	}
	return ObservationAdded{Kind: strings.TrimSpace(kind), Source: source, EvidenceRefs: cleaned, Note: note}
}

func (ObservationAdded) EventType() EventType { return EventObservationAdded }

func (p ObservationAdded) Validate() error {
	if strings.TrimSpace(p.Kind) == "" {
		return errors.New("kind is required")
	}
	switch p.Source {
	case decision.SourceHomeApp, decision.SourceLocker, decision.SourceSmartTag, decision.SourceHuman, decision.SourcePartnerAPI:
	default:
		return fmt.Errorf("unknown source %q", p.Source)
	}
	if len(p.EvidenceRefs) == 0 {
		return errors.New("at least one evidence ref is required")
	}
	return nil
}

// SignalsComputed traces the normalized signals of an evaluation.
type SignalsComputed struct {
	PolicyID string            `json:"policy_id"`
	Signals  []decision.Signal `json:"signals"`
}

func (SignalsComputed) EventType() EventType { return EventSignalsComputed }

func (p SignalsComputed) Validate() error {
	if p.PolicyID == "" {
		return errors.New("policy_id is required")
	}
	return nil
}

// ScoresComputed traces the bucket scores of an evaluation.
type ScoresComputed struct {
	PolicyID string          `json:"policy_id"`
	Scores   decision.Scores `json:"scores"`
}

func (ScoresComputed) EventType() EventType { return EventScoresComputed }

func (p ScoresComputed) Validate() error {
	if p.PolicyID == "" {
		return errors.New("policy_id is required")
	}
	return nil
}

// DecisionRecorded snapshots everything needed to replay a decision: the raw
// inputs, the exact policy, and the result.
type DecisionRecorded struct {
	Inputs      decision.AssetInputs `json:"inputs"`
	RequestedID string               `json:"requested_policy,omitempty"`
	Policy      policy.Policy        `json:"policy"`
	Analysis    decision.Result      `json:"analysis"`
}

func (DecisionRecorded) EventType() EventType { return EventDecisionRecorded }

func (p DecisionRecorded) Validate() error {
	if p.Analysis.AssetID == "" {
		return errors.New("analysis.asset_id is required")
	}
	if p.Analysis.PolicyID != p.Policy.ID {
		return fmt.Errorf("analysis.policy_id %q does not match policy %q", p.Analysis.PolicyID, p.Policy.ID)
	}
	if p.Analysis.Audit.PolicyVersion != p.Policy.Version {
		return fmt.Errorf("analysis.audit.policy_version %q does not match policy %q", p.Analysis.Audit.PolicyVersion, p.Policy.Version)
	}
	if p.Analysis.Decision == "" {
		return errors.New("analysis.decision is required")
	}
	if err := p.Policy.Validate(); err != nil {
		return err
	}
	return p.Inputs.Validate()
}

// DecisionRevoked withdraws a previously recorded decision.
type DecisionRevoked struct {
	RevokedEventID string `json:"revoked_event_id"`
	Reason         string `json:"reason"`
}

func (DecisionRevoked) EventType() EventType { return EventDecisionRevoked }

func (p DecisionRevoked) Validate() error {
	if p.RevokedEventID == "" {
		return errors.New("revoked_event_id is required")
	}
	if strings.TrimSpace(p.Reason) == "" {
		return errors.New("reason is required")
	}
	return nil
}

// TransferRecorded records a change of custody or ownership.
type TransferRecorded struct {
	FromOwner string `json:"from_owner"`
	ToOwner   string `json:"to_owner"`
	Reference string `json:"reference,omitempty"`
}

func (TransferRecorded) EventType() EventType { return EventTransferRecorded }

func (p TransferRecorded) Validate() error {
	if strings.TrimSpace(p.ToOwner) == "" {
		return errors.New("to_owner is required")
	}
	if p.FromOwner == p.ToOwner {
		return errors.New("from_owner and to_owner must differ")
	}
	return nil
}

// DecodePayload decodes raw into the variant for t and validates it.
func DecodePayload(t EventType, raw []byte) (Payload, error) {
	var p Payload
	var err error
	switch t {
	case EventAssetCreated:
		p, err = decodeInto[AssetCreated](raw)
	case EventObservationAdded:
		p, err = decodeInto[ObservationAdded](raw)
	case EventSignalsComputed:
		p, err = decodeInto[SignalsComputed](raw)
	case EventScoresComputed:
		p, err = decodeInto[ScoresComputed](raw)
	case EventDecisionRecorded:
		p, err = decodeInto[DecisionRecorded](raw)
	case EventDecisionRevoked:
		p, err = decodeInto[DecisionRevoked](raw)
	case EventTransferRecorded:
		p, err = decodeInto[TransferRecorded](raw)
	default:
		return nil, fmt.Errorf("%w: unknown event type %q", ErrInvalidPayload, t)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, t, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, t, err)
	}
	return p, nil
}

func decodeInto[T Payload](raw []byte) (Payload, error) {
	var v T
	if len(raw) == 0 || string(raw) == "null" {
		return nil, errors.New("payload is required")
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
