// Package ledger is the append-only, hash-chained, per-asset event log behind
// every recorded decision.
package ledger

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	dErrors "assetcore/pkg/domain-errors"
)

// EventType discriminates ledger events and their payload variants.
type EventType string

const (
	EventAssetCreated     EventType = "ASSET_CREATED"
	EventObservationAdded EventType = "OBSERVATION_ADDED"
	EventSignalsComputed  EventType = "SIGNALS_COMPUTED"
	EventScoresComputed   EventType = "SCORES_COMPUTED"
	EventDecisionRecorded EventType = "DECISION_RECORDED"
	EventDecisionRevoked  EventType = "DECISION_REVOKED"
	EventTransferRecorded EventType = "TRANSFER_RECORDED"
)

// ParseEventType validates a raw event type string.
func ParseEventType(s string) (EventType, error) {
	t := EventType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case EventAssetCreated, EventObservationAdded, EventSignalsComputed, EventScoresComputed,
		EventDecisionRecorded, EventDecisionRevoked, EventTransferRecorded:
		return t, nil
	}
	return "", fmt.Errorf("unknown event type %q", s)
}

// ActorKind classifies who caused an event.
type ActorKind string

const (
	ActorSystem  ActorKind = "SYSTEM"
	ActorUser    ActorKind = "USER"
	ActorDevice  ActorKind = "DEVICE"
	ActorPartner ActorKind = "PARTNER"
)

// Actor identifies who caused an event.
type Actor struct {
	Kind ActorKind `json:"kind"`
	ID   string    `json:"id"`
}

// ActorFromID derives the actor kind from the id prefix:
// "SYS" is a system component, "DEV:" a device, "PARTNER:" a partner,
// anything else a user.
func ActorFromID(id string) Actor {
	kind := ActorUser
	switch {
	case strings.HasPrefix(id, "SYS"):
		kind = ActorSystem
	case strings.HasPrefix(id, "DEV:"):
		kind = ActorDevice
	case strings.HasPrefix(id, "PARTNER:"):
		kind = ActorPartner
	}
	return Actor{Kind: kind, ID: id}
}

// Event is one immutable ledger record. PrevEventID links to the previous
// event of the same asset; EventHash covers the header, the payload hash and
// the previous event's hash.
type Event struct {
	EventID     string    `json:"event_id"`
	AssetID     string    `json:"asset_id"`
	Type        EventType `json:"type"`
	OccurredAt  time.Time `json:"occurred_at"`
	Actor       Actor     `json:"actor"`
	PrevEventID string    `json:"prev_event_id,omitempty"`
	PayloadHash string    `json:"payload_hash"`
	EventHash   string    `json:"event_hash"`
	Payload     Payload   `json:"payload"`
}

// UnmarshalJSON decodes the payload into the variant named by Type.
func (e *Event) UnmarshalJSON(data []byte) error {
	type header Event
	var raw struct {
		header
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	payload, err := DecodePayload(raw.Type, raw.Payload)
	if err != nil {
		return err
	}
	*e = Event(raw.header)
	e.Payload = payload
	return nil
}

// Tip is the newest event of an asset's chain. It outlives eviction of the
// event itself so later appends keep linking to the true predecessor.
type Tip struct {
	EventID   string `json:"event_id"`
	EventHash string `json:"event_hash"`
}

// MaxAssetIDLength bounds asset identifiers accepted at the API boundary.
const MaxAssetIDLength = 128

// NormalizeAssetID trims id and checks it is non-empty and bounded.
func NormalizeAssetID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", dErrors.NewValidation("assetId is required",
			[]dErrors.FieldError{{Field: "assetId", Message: "must be a non-empty string"}})
	}
	if len(id) > MaxAssetIDLength {
		return "", dErrors.NewValidation("assetId is too long",
			[]dErrors.FieldError{{Field: "assetId", Message: fmt.Sprintf("must be at most %d characters", MaxAssetIDLength)}})
	}
	return id, nil
}
