package decision

import "fmt"

// Action identifiers.
const (
	ActionRenewScan       = "act_renew_scan"
	ActionStaleData       = "act_stale_data"
	ActionDisclosure      = "act_disclosure"
	ActionQuarantine      = "act_quarantine"
	ActionManualAudit     = "act_manual_audit"
	ActionIDVerify        = "act_id_verify"
	ActionConditionReport = "act_condition_report"
	ActionMarketComps     = "act_market_comps"
)

// Drill-down floors for a review that was not caused by staleness.
const (
	identityDrillFloor  = 0.9
	conditionDrillFloor = 0.7
	liquidityDrillFloor = 0.6
)

// RequiredActions derives the ordered action list from the gate and decay
// outcomes, and returns the final confidence band. Order:
//  1. the staleness demotion, if one fired (a disclosure also lowers the band)
//  2. quarantine for a rejection, naming the breached threshold
//  3. manual audit plus targeted drills for a review not caused by staleness
func RequiredActions(gate GateOutcome, decay DecayOutcome, s Scores) ([]RequiredAction, ConfidenceBand) {
	actions := []RequiredAction{}
	band := gate.Band

	if decay.IsStale {
		switch decay.Decision {
		case DecisionExpired:
			actions = append(actions, RequiredAction{
				ActionID:       ActionRenewScan,
				Label:          "Renew Verification",
				Reason:         decay.Reason,
				EvidenceNeeded: []string{"doc:condition_report"},
			})
		case DecisionReviewRequired:
			actions = append(actions, RequiredAction{
				ActionID: ActionStaleData,
				Label:    "Data Refresh Required",
				Reason:   decay.Reason,
			})
		case DecisionVerifiedWithDisclosure:
			actions = append(actions, RequiredAction{
				ActionID: ActionDisclosure,
				Label:    "Notice to Buyer",
				Reason:   decay.Reason,
			})
			band = BandLow
		}
	}

	if decay.Decision == DecisionRejected {
		reason := "Critical Policy Failure"
		if gate.Breach != nil {
			reason = fmt.Sprintf("Critical Policy Failure (%s)", gate.Breach)
		}
		actions = append(actions, RequiredAction{
			ActionID: ActionQuarantine,
			Label:    "Immediate Quarantine",
			Reason:   reason,
		})
	}

	if decay.Decision == DecisionReviewRequired && !decay.IsStale {
		actions = append(actions, RequiredAction{
			ActionID: ActionManualAudit,
			Label:    "Manual Inspection",
			Reason:   fmt.Sprintf("Confidence (%.0f%%) below policy threshold", s.CoreConfidence*100),
		})
		if s.Identity < identityDrillFloor {
			actions = append(actions, RequiredAction{
				ActionID:       ActionIDVerify,
				Label:          "Re-verify Identity",
				Reason:         "Identity score weak",
				EvidenceNeeded: []string{"obs:img:optical_scan"},
			})
		}
		if s.Condition < conditionDrillFloor {
			actions = append(actions, RequiredAction{
				ActionID:       ActionConditionReport,
				Label:          "New Condition Report",
				Reason:         "Physical grade low",
				EvidenceNeeded: []string{"doc:condition_report"},
			})
		}
		if s.Liquidity < liquidityDrillFloor {
			actions = append(actions, RequiredAction{
				ActionID: ActionMarketComps,
				Label:    "Refresh Market Comps",
				Reason:   "Liquidity score weak",
			})
		}
	}

	return actions, band
}
