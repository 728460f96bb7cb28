package decision

import (
	"fmt"
	"math"
	"time"

	"assetcore/internal/policy"
)

// DecayOutcome is the decision after time-based demotion.
type DecayOutcome struct {
	Decision Decision `json:"decayed_decision"`
	IsStale  bool     `json:"is_stale"`
	Reason   string   `json:"decay_reason,omitempty"`
	AgeDays  int      `json:"age_days"`
}

// EvidenceAgeDays returns the whole days, rounded up, between the condition
// report and now. A missing or future report date counts as fresh.
func EvidenceAgeDays(in AssetInputs, now time.Time) int {
	if in.ConditionReportDate == nil {
		return 0
	}
	elapsed := now.Sub(*in.ConditionReportDate)
	if elapsed <= 0 {
		return 0
	}
	return int(math.Ceil(elapsed.Hours() / 24))
}

// ApplyDecay demotes a decision whose evidence is older than the policy allows.
//
// REJECTED, REVOKED and EXPIRED never change. Past ExpireAfterDays, VERIFIED
// and REVIEW_REQUIRED expire. Otherwise, past StaleAfterDays, the policy's
// StaleAction applies. At most one path fires, and a path that would leave the
// decision unchanged does not fire.
func ApplyDecay(p policy.Policy, in AssetInputs, d Decision, now time.Time) DecayOutcome {
	age := EvidenceAgeDays(in, now)
	out := DecayOutcome{Decision: d, AgeDays: age}

	switch d {
	case DecisionRejected, DecisionRevoked, DecisionExpired:
		return out
	}

	rules := p.Decay
	demote := func(to Decision, reason string) DecayOutcome {
		if to == d {
			return out
		}
		return DecayOutcome{Decision: to, IsStale: true, Reason: reason, AgeDays: age}
	}

	if rules.ExpireAfterDays > 0 && age > rules.ExpireAfterDays {
		if d == DecisionVerified || d == DecisionReviewRequired {
			return demote(DecisionExpired, fmt.Sprintf(
				"Verification age (%dd) exceeds expiration limit (%dd).", age, rules.ExpireAfterDays))
		}
		return out
	}

	if rules.StaleAfterDays <= 0 || age <= rules.StaleAfterDays {
		return out
	}

	switch rules.StaleAction {
	case policy.StaleActionExpire:
		if d == DecisionVerified || d == DecisionReviewRequired {
			return demote(DecisionExpired, fmt.Sprintf(
				"Verification age (%dd) exceeds freshness window (%dd). Evidence expired.", age, rules.StaleAfterDays))
		}
	case policy.StaleActionReview:
		if d == DecisionVerified {
			return demote(DecisionReviewRequired, fmt.Sprintf(
				"Verification age (%dd) exceeds review threshold (%dd).", age, rules.StaleAfterDays))
		}
	case policy.StaleActionDisclose:
		if d == DecisionVerified {
			return demote(DecisionVerifiedWithDisclosure, fmt.Sprintf(
				"Asset verification aged (%dd). Disclosure applied.", age))
		}
	}
	return out
}
