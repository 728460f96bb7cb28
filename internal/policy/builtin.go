package policy

// Builtin policy identifiers.
const (
	InsurerV1     = "insurer_policy_v1"
	LenderV1      = "lender_policy_v1"
	MarketplaceV1 = "marketplace_policy_v1"

	// DefaultPolicyID is the conservative policy used when a request names none.
	DefaultPolicyID = InsurerV1
)

// Builtin returns the policies that ship with the service.
//
// Insurer: stale evidence invalidates cover, so it expires at 90 days.
// Lender: stale collateral data needs a refresh at 180 days and expires at 365.
// Marketplace: stale listings stay sellable with a buyer notice until 730 days.
func Builtin() []Policy {
	return []Policy{
		{
			ID:         InsurerV1,
			Version:    "1.0.0",
			Disclosure: DisclosureNone,
			Weights: Weights{
				Identity: 0.30, Provenance: 0.30, Condition: 0.20, Liquidity: 0, FraudSafety: 0.20,
			},
			Thresholds: Thresholds{
				Identity: 0.80, Provenance: 0.70, Condition: 0.60, Liquidity: 0,
				MaxFraudRisk: 0.30, CoreConfidence: 0.75,
			},
			Decay: DecayRules{StaleAfterDays: 90, StaleAction: StaleActionExpire, ExpireAfterDays: 180},
		},
		{
			ID:         LenderV1,
			Version:    "1.0.0",
			Disclosure: DisclosureSummary,
			Weights: Weights{
				Identity: 0.20, Provenance: 0.20, Condition: 0.10, Liquidity: 0.30, FraudSafety: 0.20,
			},
			Thresholds: Thresholds{
				Identity: 0.70, Provenance: 0.55, Condition: 0.60, Liquidity: 0.65,
				MaxFraudRisk: 0.40, CoreConfidence: 0.70,
			},
			Decay: DecayRules{StaleAfterDays: 180, StaleAction: StaleActionReview, ExpireAfterDays: 365},
		},
		{
			ID:         MarketplaceV1,
			Version:    "1.0.0",
			Disclosure: DisclosureFull,
			Weights: Weights{
				Identity: 0.30, Provenance: 0.10, Condition: 0.30, Liquidity: 0.10, FraudSafety: 0.20,
			},
			Thresholds: Thresholds{
				Identity: 0.65, Provenance: 0.40, Condition: 0.50, Liquidity: 0,
				MaxFraudRisk: 0.55, CoreConfidence: 0.60,
			},
			Decay: DecayRules{StaleAfterDays: 365, StaleAction: StaleActionDisclose, ExpireAfterDays: 730},
		},
	}
}

// BuiltinAliases maps short audience names onto builtin policy ids.
func BuiltinAliases() map[string]string {
	return map[string]string{
		"insurer":     InsurerV1,
		"lender":      LenderV1,
		"marketplace": MarketplaceV1,
	}
}
