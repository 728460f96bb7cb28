package handler

import (
	"encoding/json"
	"strings"

	"assetcore/internal/ledger"
	dErrors "assetcore/pkg/domain-errors"
)

var callerEventTypes = map[ledger.EventType]bool{
	ledger.EventObservationAdded: true,
	ledger.EventTransferRecorded: true,
}

// AppendEventRequest is the body of POST /v1/assets/{assetID}/events.
type AppendEventRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`

	parsedType    ledger.EventType
	parsedPayload ledger.Payload
}

// Validate implements httputil.Validatable.
func (r *AppendEventRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	t, err := ledger.ParseEventType(strings.TrimSpace(r.Type))
	if err != nil || !callerEventTypes[t] {
		return dErrors.NewValidation("unsupported event type", []dErrors.FieldError{
			{Field: "type", Message: "must be OBSERVATION_ADDED or TRANSFER_RECORDED"},
		})
	}
	payload, err := ledger.DecodePayload(t, r.Payload)
	if err != nil {
		return dErrors.NewValidation("invalid payload", []dErrors.FieldError{
			{Field: "payload", Message: err.Error()},
		})
	}
	r.parsedType = t
	r.parsedPayload = payload
	return nil
}

func (r *AppendEventRequest) ParsedType() ledger.EventType { return r.parsedType }

func (r *AppendEventRequest) ParsedPayload() ledger.Payload { return r.parsedPayload }
