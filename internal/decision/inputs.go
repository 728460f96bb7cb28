package decision

import (
	"math"
	"time"

	dErrors "assetcore/pkg/domain-errors"
)

// ConditionRating is a graded physical condition report.
type ConditionRating string

const (
	RatingA ConditionRating = "A"
	RatingB ConditionRating = "B"
	RatingC ConditionRating = "C"
	RatingD ConditionRating = "D"
	RatingF ConditionRating = "F"
)

var ratingValues = map[ConditionRating]float64{
	RatingA: 1.0,
	RatingB: 0.85,
	RatingC: 0.70,
	RatingD: 0.50,
	RatingF: 0.0,
}

func (r ConditionRating) IsValid() bool {
	_, ok := ratingValues[r]
	return ok
}

// AssetInputs are the raw observations for one evaluation. Every field is
// optional; a nil field produces no signal rather than a failing one.
type AssetInputs struct {
	OpticalMatch        *float64         `json:"opticalMatch,omitempty"`
	SerialMatch         *bool            `json:"serialMatch,omitempty"`
	CustodyEvents       *int             `json:"custodyEvents,omitempty"`
	CustodyGaps         *bool            `json:"custodyGaps,omitempty"`
	MarketVolume        *float64         `json:"marketVolume,omitempty"`
	ConditionRating     *ConditionRating `json:"conditionRating,omitempty"`
	TamperEvents        *int             `json:"tamperEvents,omitempty"`
	GeoMismatch         *bool            `json:"geoMismatch,omitempty"`
	ConditionReportDate *time.Time       `json:"conditionReportDate,omitempty"`
}

// Report dates must fit RFC 3339's four-digit years so they can be hashed
// into the ledger.
const (
	MinReportYear = 1
	MaxReportYear = 9999
)

// Validate range-checks the inputs and reports every offending field.
// Field names are prefixed with "inputs." to match the request shape.
func (in AssetInputs) Validate() error {
	var fields []dErrors.FieldError
	add := func(field, msg string) {
		fields = append(fields, dErrors.FieldError{Field: "inputs." + field, Message: msg})
	}

	if in.OpticalMatch != nil && !inRange01(*in.OpticalMatch) {
		add("opticalMatch", "must be a number between 0 and 1")
	}
	if in.CustodyEvents != nil && *in.CustodyEvents < 0 {
		add("custodyEvents", "must be a non-negative integer")
	}
	if in.MarketVolume != nil && !nonNegativeFinite(*in.MarketVolume) {
		add("marketVolume", "must be a non-negative number")
	}
	if in.ConditionRating != nil && !in.ConditionRating.IsValid() {
		add("conditionRating", "must be one of A, B, C, D, F")
	}
	if in.TamperEvents != nil && *in.TamperEvents < 0 {
		add("tamperEvents", "must be a non-negative integer")
	}
	if d := in.ConditionReportDate; d != nil {
		switch {
		case d.IsZero():
			add("conditionReportDate", "must be a valid date")
		case d.Year() < MinReportYear || d.Year() > MaxReportYear:
			add("conditionReportDate", "year must be between 1 and 9999")
		}
	}

	if len(fields) > 0 {
		return dErrors.NewValidation("Invalid inputs", fields)
	}
	return nil
}

func inRange01(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

func nonNegativeFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
