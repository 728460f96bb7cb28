// Package policy defines the versioned risk/trust policies decisions are
// evaluated against, and the read-only registry that resolves them.
package policy

import (
	"errors"
	"fmt"
	"math"
)

// Disclosure controls how much of a decision's reasoning a policy's audience sees.
type Disclosure string

const (
	DisclosureNone    Disclosure = "NONE"
	DisclosureSummary Disclosure = "SUMMARY"
	DisclosureFull    Disclosure = "FULL"
)

func (d Disclosure) IsValid() bool {
	switch d {
	case DisclosureNone, DisclosureSummary, DisclosureFull:
		return true
	}
	return false
}

// StaleAction is the demotion applied once evidence is older than StaleAfterDays.
type StaleAction string

const (
	// StaleActionExpire demotes VERIFIED and REVIEW_REQUIRED to EXPIRED.
	StaleActionExpire StaleAction = "expire"
	// StaleActionReview demotes VERIFIED to REVIEW_REQUIRED.
	StaleActionReview StaleAction = "review"
	// StaleActionDisclose demotes VERIFIED to VERIFIED_WITH_DISCLOSURE.
	StaleActionDisclose StaleAction = "disclose"
)

func (a StaleAction) IsValid() bool {
	switch a {
	case StaleActionExpire, StaleActionReview, StaleActionDisclose:
		return true
	}
	return false
}

// Weights are the per-bucket weights of the composite core confidence.
type Weights struct {
	Identity    float64 `json:"identity" yaml:"identity"`
	Provenance  float64 `json:"provenance" yaml:"provenance"`
	Condition   float64 `json:"condition" yaml:"condition"`
	Liquidity   float64 `json:"liquidity" yaml:"liquidity"`
	FraudSafety float64 `json:"fraudSafety" yaml:"fraudSafety"`
}

// Total returns the sum of all weights.
func (w Weights) Total() float64 {
	return w.Identity + w.Provenance + w.Condition + w.Liquidity + w.FraudSafety
}

// Thresholds are the hard-fail floors (and fraud ceiling) plus the soft
// core-confidence floor below which a decision needs review.
type Thresholds struct {
	Identity       float64 `json:"identity" yaml:"identity"`
	Provenance     float64 `json:"provenance" yaml:"provenance"`
	Condition      float64 `json:"condition" yaml:"condition"`
	Liquidity      float64 `json:"liquidity" yaml:"liquidity"`
	MaxFraudRisk   float64 `json:"maxFraudRisk" yaml:"maxFraudRisk"`
	CoreConfidence float64 `json:"coreConfidence" yaml:"coreConfidence"`
}

// DecayRules are the evidence-age windows of a policy. A zero day count
// disables that window.
type DecayRules struct {
	StaleAfterDays  int         `json:"staleAfterDays" yaml:"staleAfterDays"`
	StaleAction     StaleAction `json:"staleAction" yaml:"staleAction"`
	ExpireAfterDays int         `json:"expireAfterDays" yaml:"expireAfterDays"`
}

// Policy is an immutable, versioned evaluation policy identified by (ID, Version).
type Policy struct {
	ID         string     `json:"id" yaml:"id"`
	Version    string     `json:"version" yaml:"version"`
	Disclosure Disclosure `json:"disclosure" yaml:"disclosure"`
	Weights    Weights    `json:"weights" yaml:"weights"`
	Thresholds Thresholds `json:"thresholds" yaml:"thresholds"`
	Decay      DecayRules `json:"decay" yaml:"decay"`
}

// Validate checks the structural invariants the decision pipeline relies on.
// MaxFraudRisk must stay below 1 so tamper evidence always rejects.
func (p Policy) Validate() error {
	var errs []error
	if p.ID == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if p.Version == "" {
		errs = append(errs, errors.New("version is required"))
	}
	if !p.Disclosure.IsValid() {
		errs = append(errs, fmt.Errorf("disclosure %q is not one of NONE, SUMMARY, FULL", p.Disclosure))
	}

	for name, w := range map[string]float64{
		"identity":    p.Weights.Identity,
		"provenance":  p.Weights.Provenance,
		"condition":   p.Weights.Condition,
		"liquidity":   p.Weights.Liquidity,
		"fraudSafety": p.Weights.FraudSafety,
	} {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			errs = append(errs, fmt.Errorf("weights.%s must be a non-negative number", name))
		}
	}

	for name, th := range map[string]float64{
		"identity":       p.Thresholds.Identity,
		"provenance":     p.Thresholds.Provenance,
		"condition":      p.Thresholds.Condition,
		"liquidity":      p.Thresholds.Liquidity,
		"maxFraudRisk":   p.Thresholds.MaxFraudRisk,
		"coreConfidence": p.Thresholds.CoreConfidence,
	} {
		if math.IsNaN(th) || th < 0 || th > 1 {
			errs = append(errs, fmt.Errorf("thresholds.%s must be within [0, 1]", name))
		}
	}
	if p.Thresholds.MaxFraudRisk >= 1 {
		errs = append(errs, errors.New("thresholds.maxFraudRisk must be below 1"))
	}

	d := p.Decay
	if d.StaleAfterDays < 0 || d.ExpireAfterDays < 0 {
		errs = append(errs, errors.New("decay windows must not be negative"))
	}
	if d.StaleAfterDays > 0 && !d.StaleAction.IsValid() {
		errs = append(errs, fmt.Errorf("decay.staleAction %q is not one of expire, review, disclose", d.StaleAction))
	}
	if d.StaleAfterDays > 0 && d.ExpireAfterDays > 0 && d.StaleAfterDays > d.ExpireAfterDays {
		errs = append(errs, errors.New("decay.staleAfterDays must not exceed decay.expireAfterDays"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("policy %q: %w", p.ID, errors.Join(errs...))
	}
	return nil
}
