package handler

import (
	"bytes"
	"encoding/json"
	"maps"
	"math"
	"slices"
	"strings"
	"time"

	"assetcore/internal/decision"
	"assetcore/internal/verification"
	dErrors "assetcore/pkg/domain-errors"
)

// VerifyRequest is the body of POST /v1/verify. Fields are decoded one at a
// time so type errors are reported per field instead of as a malformed body.
type VerifyRequest struct {
	AssetID  json.RawMessage            `json:"assetId"`
	Inputs   map[string]json.RawMessage `json:"inputs"`
	PolicyID json.RawMessage            `json:"policyId"`

	parsed verification.VerifyRequest
}

// fieldErrors accumulates per-field problems.
type fieldErrors []dErrors.FieldError

func (f *fieldErrors) add(field, msg string) {
	*f = append(*f, dErrors.FieldError{Field: field, Message: msg})
}

// Validate implements httputil.Validatable. Range checks are left to the
// service so every caller shares them.
func (r *VerifyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	var errs fieldErrors

	assetID, ok := decodeString(r.AssetID)
	switch {
	case !ok:
		errs.add("assetId", "must be a string")
	case strings.TrimSpace(assetID) == "":
		errs.add("assetId", "must be a non-empty string")
	}
	policyID, ok := decodeString(r.PolicyID)
	if !ok {
		errs.add("policyId", "must be a string")
	}
	if r.Inputs == nil {
		errs.add("inputs", "must be an object")
	}
	inputs := parseInputs(r.Inputs, &errs)

	if len(errs) > 0 {
		return dErrors.NewValidation("Invalid verification request", errs)
	}
	r.parsed = verification.VerifyRequest{AssetID: assetID, Inputs: inputs, PolicyID: policyID}
	return nil
}

// Parsed returns the validated domain request.
func (r *VerifyRequest) Parsed() verification.VerifyRequest {
	return r.parsed
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// decodeString accepts a JSON string, null, or absence.
func decodeString(raw json.RawMessage) (string, bool) {
	if isNull(raw) {
		return "", true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// knownInputs lists the accepted keys under "inputs". Keys are case-sensitive.
var knownInputs = map[string]struct{}{
	"opticalMatch":        {},
	"serialMatch":         {},
	"custodyEvents":       {},
	"custodyGaps":         {},
	"marketVolume":        {},
	"conditionRating":     {},
	"conditionReportDate": {},
	"tamperEvents":        {},
	"geoMismatch":         {},
}

func parseInputs(raw map[string]json.RawMessage, errs *fieldErrors) decision.AssetInputs {
	var in decision.AssetInputs
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		if _, ok := knownInputs[key]; !ok {
			errs.add("inputs."+key, "is not a recognized input")
		}
	}
	number := func(key string) *float64 {
		v, present := raw[key]
		if !present || isNull(v) {
			return nil
		}
		var f float64
		if err := json.Unmarshal(v, &f); err != nil {
			errs.add("inputs."+key, "must be a number")
			return nil
		}
		return &f
	}
	boolean := func(key string) *bool {
		v, present := raw[key]
		if !present || isNull(v) {
			return nil
		}
		var b bool
		if err := json.Unmarshal(v, &b); err != nil {
			errs.add("inputs."+key, "must be a boolean")
			return nil
		}
		return &b
	}
	integer := func(key string) *int {
		f := number(key)
		if f == nil {
			return nil
		}
		if *f != math.Trunc(*f) {
			errs.add("inputs."+key, "must be an integer")
			return nil
		}
		if math.Abs(*f) > math.MaxInt32 {
			errs.add("inputs."+key, "must be between -2147483647 and 2147483647")
			return nil
		}
		n := int(*f)
		return &n
	}

	in.OpticalMatch = number("opticalMatch")
	in.SerialMatch = boolean("serialMatch")
	in.CustodyEvents = integer("custodyEvents")
	in.CustodyGaps = boolean("custodyGaps")
	in.MarketVolume = number("marketVolume")
	in.TamperEvents = integer("tamperEvents")
	in.GeoMismatch = boolean("geoMismatch")

	if v, present := raw["conditionRating"]; present && !isNull(v) {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			errs.add("inputs.conditionRating", "must be one of A, B, C, D, F")
		} else {
			rating := decision.ConditionRating(strings.ToUpper(strings.TrimSpace(s)))
			in.ConditionRating = &rating
		}
	}
	if v, present := raw["conditionReportDate"]; present && !isNull(v) {
		t, ok := parseDate(v)
		if !ok {
			errs.add("inputs.conditionReportDate", "must be an RFC 3339 timestamp, a YYYY-MM-DD date or epoch milliseconds")
		} else {
			in.ConditionReportDate = &t
		}
	}
	return in
}

// parseDate accepts RFC 3339 timestamps, calendar dates (UTC midnight) and
// epoch milliseconds.
func parseDate(raw json.RawMessage) (time.Time, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t.UTC(), true
		}
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			return t, true
		}
		return time.Time{}, false
	}
	var ms float64
	if err := json.Unmarshal(raw, &ms); err == nil && ms >= minEpochMillis && ms <= maxEpochMillis {
		return time.UnixMilli(int64(ms)).UTC(), true
	}
	return time.Time{}, false
}

// Epoch milliseconds bounding years 1 through 9999.
var (
	minEpochMillis = float64(time.Date(decision.MinReportYear, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli())
	maxEpochMillis = float64(time.Date(decision.MaxReportYear+1, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli() - 1)
)

// RevokeRequest is the body of POST /v1/assets/{assetID}/revocations.
type RevokeRequest struct {
	DecisionEventID string `json:"decisionEventId"`
	Reason          string `json:"reason"`
}

// Validate implements httputil.Validatable.
func (r *RevokeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	var errs fieldErrors
	r.DecisionEventID = strings.TrimSpace(r.DecisionEventID)
	if r.DecisionEventID == "" {
		errs.add("decisionEventId", "is required")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		errs.add("reason", "is required")
	}
	if len(errs) > 0 {
		return dErrors.NewValidation("Invalid revocation request", errs)
	}
	return nil
}
