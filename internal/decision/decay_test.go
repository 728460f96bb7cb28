package decision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"assetcore/internal/policy"
)

func inputsAged(days float64) AssetInputs {
	reported := evalTime.Add(-time.Duration(days * float64(24*time.Hour)))
	return AssetInputs{ConditionReportDate: &reported}
}

func TestEvidenceAgeDays(t *testing.T) {
	assert.Equal(t, 0, EvidenceAgeDays(AssetInputs{}, evalTime))
	assert.Equal(t, 0, EvidenceAgeDays(inputsAged(-3), evalTime))
	assert.Equal(t, 0, EvidenceAgeDays(inputsAged(0), evalTime))
	assert.Equal(t, 1, EvidenceAgeDays(inputsAged(0.2), evalTime))
	assert.Equal(t, 90, EvidenceAgeDays(inputsAged(90), evalTime))
	assert.Equal(t, 91, EvidenceAgeDays(inputsAged(90.01), evalTime))
}

func TestApplyDecay(t *testing.T) {
	insurer := mustPolicy(t, policy.InsurerV1)
	lender := mustPolicy(t, policy.LenderV1)
	marketplace := mustPolicy(t, policy.MarketplaceV1)

	cases := []struct {
		name    string
		policy  policy.Policy
		age     float64
		in      Decision
		want    Decision
		stale   bool
		snippet string
	}{
		{name: "insurer fresh", policy: insurer, age: 90, in: DecisionVerified, want: DecisionVerified},
		{name: "insurer stale expires", policy: insurer, age: 91, in: DecisionVerified, want: DecisionExpired, stale: true, snippet: "freshness window (90d)"},
		{name: "insurer stale expires review", policy: insurer, age: 120, in: DecisionReviewRequired, want: DecisionExpired, stale: true},
		{name: "insurer past expiry", policy: insurer, age: 200, in: DecisionVerified, want: DecisionExpired, stale: true, snippet: "expiration limit (180d)"},
		{name: "lender stale needs review", policy: lender, age: 181, in: DecisionVerified, want: DecisionReviewRequired, stale: true, snippet: "review threshold (180d)"},
		{name: "lender stale review does not fire on review", policy: lender, age: 181, in: DecisionReviewRequired, want: DecisionReviewRequired},
		{name: "lender past expiry", policy: lender, age: 366, in: DecisionReviewRequired, want: DecisionExpired, stale: true},
		{name: "marketplace stale discloses", policy: marketplace, age: 400, in: DecisionVerified, want: DecisionVerifiedWithDisclosure, stale: true, snippet: "Disclosure applied"},
		{name: "marketplace past expiry", policy: marketplace, age: 731, in: DecisionVerified, want: DecisionExpired, stale: true},
		{name: "rejected never decays", policy: insurer, age: 1000, in: DecisionRejected, want: DecisionRejected},
		{name: "revoked never decays", policy: marketplace, age: 1000, in: DecisionRevoked, want: DecisionRevoked},
		{name: "expired stays expired", policy: lender, age: 1000, in: DecisionExpired, want: DecisionExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := ApplyDecay(tc.policy, inputsAged(tc.age), tc.in, evalTime)

			assert.Equal(t, tc.want, out.Decision)
			assert.Equal(t, tc.stale, out.IsStale)
			if tc.stale {
				assert.Contains(t, out.Reason, tc.snippet)
			} else {
				assert.Empty(t, out.Reason)
			}
		})
	}

	t.Run("missing report date is fresh", func(t *testing.T) {
		out := ApplyDecay(insurer, AssetInputs{}, DecisionVerified, evalTime)
		assert.False(t, out.IsStale)
		assert.Zero(t, out.AgeDays)
	})

	t.Run("disabled windows never fire", func(t *testing.T) {
		p := insurer
		p.Decay = policy.DecayRules{}
		out := ApplyDecay(p, inputsAged(5000), DecisionVerified, evalTime)
		assert.Equal(t, DecisionVerified, out.Decision)
		assert.Equal(t, 5000, out.AgeDays)
	})
}

func TestRequiredActionsForStaleness(t *testing.T) {
	gate := GateOutcome{Decision: DecisionVerified, Band: BandHigh}
	scores := Scores{Identity: 0.2, Condition: 0.2, Liquidity: 0.2}

	t.Run("disclosure lowers the band", func(t *testing.T) {
		actions, band := RequiredActions(gate, DecayOutcome{Decision: DecisionVerifiedWithDisclosure, IsStale: true, Reason: "aged"}, scores)
		assert.Equal(t, []string{ActionDisclosure}, actionIDs(actions))
		assert.Equal(t, BandLow, band)
	})

	t.Run("stale review has no drills", func(t *testing.T) {
		actions, band := RequiredActions(gate, DecayOutcome{Decision: DecisionReviewRequired, IsStale: true, Reason: "aged"}, scores)
		assert.Equal(t, []string{ActionStaleData}, actionIDs(actions))
		assert.Equal(t, BandHigh, band)
	})

	t.Run("renewal names evidence", func(t *testing.T) {
		actions, _ := RequiredActions(gate, DecayOutcome{Decision: DecisionExpired, IsStale: true, Reason: "aged"}, scores)
		assert.Equal(t, []string{ActionRenewScan}, actionIDs(actions))
		assert.Equal(t, []string{"doc:condition_report"}, actions[0].EvidenceNeeded)
	})
}
