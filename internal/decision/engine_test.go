package decision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetcore/internal/policy"
	"assetcore/pkg/testutil"
)

var evalTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

// pristine returns Scenario A inputs with a condition report ageDays old.
func pristine(ageDays int) AssetInputs {
	rating := RatingA
	reported := evalTime.Add(-time.Duration(ageDays) * 24 * time.Hour)
	return AssetInputs{
		OpticalMatch:        ptr(0.99),
		SerialMatch:         ptr(true),
		CustodyGaps:         ptr(false),
		ConditionRating:     &rating,
		MarketVolume:        ptr(50_000.0),
		TamperEvents:        ptr(0),
		GeoMismatch:         ptr(false),
		ConditionReportDate: &reported,
	}
}

func mustPolicy(t *testing.T, id string) policy.Policy {
	t.Helper()
	p, err := policy.NewBuiltinRegistry().Resolve(id)
	require.NoError(t, err)
	return p
}

func actionIDs(actions []RequiredAction) []string {
	ids := make([]string, 0, len(actions))
	for _, a := range actions {
		ids = append(ids, a.ActionID)
	}
	return ids
}

func TestEvaluateScenarios(t *testing.T) {
	testutil.Given(t, "pristine inputs with a fresh condition report", func(t *testing.T) {
		for _, id := range []string{policy.InsurerV1, policy.LenderV1, policy.MarketplaceV1} {
			testutil.When(t, "evaluated under "+id, func(t *testing.T) {
				res := Evaluate("asset-a", pristine(1), mustPolicy(t, id), evalTime)

				testutil.Then(t, "the asset is verified with high confidence and no actions", func(t *testing.T) {
					assert.Equal(t, DecisionVerified, res.Decision)
					assert.Equal(t, BandHigh, res.ConfidenceBand)
					assert.Empty(t, res.RequiredActions)
					assert.NotNil(t, res.RequiredActions)
				})
			})
		}
	})

	testutil.Given(t, "a condition report 100 days old", func(t *testing.T) {
		testutil.When(t, "evaluated under the insurer policy", func(t *testing.T) {
			res := Evaluate("asset-b", pristine(100), mustPolicy(t, policy.InsurerV1), evalTime)

			testutil.Then(t, "the decision expires and asks for renewal", func(t *testing.T) {
				assert.Equal(t, DecisionExpired, res.Decision)
				require.NotEmpty(t, res.RequiredActions)
				assert.Equal(t, ActionRenewScan, res.RequiredActions[0].ActionID)
				assert.Equal(t, "Renew Verification", res.RequiredActions[0].Label)
				assert.Contains(t, res.RequiredActions[0].Reason, "100d")
			})
		})
	})

	testutil.Given(t, "a thin market of 500 units", func(t *testing.T) {
		in := pristine(1)
		in.MarketVolume = ptr(500.0)

		testutil.When(t, "evaluated under the lender policy", func(t *testing.T) {
			res := Evaluate("asset-c", in, mustPolicy(t, policy.LenderV1), evalTime)

			testutil.Then(t, "liquidity breaches and the asset is quarantined", func(t *testing.T) {
				assert.Equal(t, 0.0, res.Scores.Liquidity)
				assert.Equal(t, DecisionRejected, res.Decision)
				assert.Equal(t, []string{ActionQuarantine}, actionIDs(res.RequiredActions))
				assert.Contains(t, res.RequiredActions[0].Reason, "liquidity")
			})
		})
	})

	testutil.Given(t, "a single tamper event on otherwise pristine inputs", func(t *testing.T) {
		in := pristine(1)
		in.TamperEvents = ptr(1)

		for _, p := range policy.Builtin() {
			testutil.When(t, "evaluated under "+p.ID, func(t *testing.T) {
				res := Evaluate("asset-d", in, p, evalTime)

				testutil.Then(t, "fraud risk is maximal and the asset is rejected", func(t *testing.T) {
					assert.Equal(t, 1.0, res.Scores.FraudRisk)
					assert.Equal(t, 1.0, res.Scores.Provenance)
					assert.Equal(t, 1.0, res.Scores.Condition)
					assert.Equal(t, DecisionRejected, res.Decision)
					assert.Contains(t, actionIDs(res.RequiredActions), ActionQuarantine)
					assert.Contains(t, res.RequiredActions[0].Reason, "fraud_risk")
				})
			})
		}
	})
}

func TestEvaluateStampsAudit(t *testing.T) {
	p := mustPolicy(t, policy.LenderV1)
	local := evalTime.In(time.FixedZone("EST", -5*3600))

	res := Evaluate("asset-1", pristine(1), p, local)

	assert.Equal(t, "asset-1", res.AssetID)
	assert.Equal(t, p.ID, res.PolicyID)
	assert.Equal(t, ScoreModelVersion, res.Audit.ScoreModelVersion)
	assert.Equal(t, p.Version, res.Audit.PolicyVersion)
	assert.True(t, res.Audit.ComputedAt.Equal(evalTime))
	assert.Equal(t, time.UTC, res.Audit.ComputedAt.Location())
}

func TestEvaluateIsDeterministic(t *testing.T) {
	p := mustPolicy(t, policy.MarketplaceV1)
	in := pristine(400)
	in.GeoMismatch = ptr(true)

	first := Evaluate("asset-r", in, p, evalTime)
	second := Evaluate("asset-r", in, p, evalTime)

	assert.Equal(t, first, second)
}

func TestEvaluateSortsTopFactorsByMagnitude(t *testing.T) {
	in := pristine(1)
	in.TamperEvents = ptr(3)

	res := Evaluate("asset-s", in, mustPolicy(t, policy.InsurerV1), evalTime)

	ids := make([]string, 0, len(res.TopFactors))
	for _, f := range res.TopFactors {
		ids = append(ids, f.FactorID)
	}
	assert.Equal(t, []string{
		FactorIdentitySerial,
		FactorCustodyChain,
		FactorConditionRating,
		FactorTamperRisk,
		FactorIdentityOptical,
		FactorMarketVolume,
	}, ids)
}

func TestEvaluateReviewDrills(t *testing.T) {
	rating := RatingD
	in := AssetInputs{
		OpticalMatch:    ptr(0.7),
		CustodyGaps:     ptr(false),
		ConditionRating: &rating,
		MarketVolume:    ptr(500.0),
		GeoMismatch:     ptr(true),
	}

	res := Evaluate("asset-rv", in, mustPolicy(t, policy.MarketplaceV1), evalTime)

	assert.Equal(t, DecisionReviewRequired, res.Decision)
	assert.Equal(t, BandLow, res.ConfidenceBand)
	assert.InDelta(t, 0.56, res.Scores.CoreConfidence, 1e-9)
	assert.Equal(t, []string{
		ActionManualAudit,
		ActionIDVerify,
		ActionConditionReport,
		ActionMarketComps,
	}, actionIDs(res.RequiredActions))
	assert.Equal(t, "Confidence (56%) below policy threshold", res.RequiredActions[0].Reason)
}

func TestEvaluateEmptyInputs(t *testing.T) {
	res := Evaluate("asset-empty", AssetInputs{}, mustPolicy(t, policy.InsurerV1), evalTime)

	assert.Empty(t, res.TopFactors)
	assert.Zero(t, res.Scores.Identity)
	assert.Zero(t, res.Scores.FraudRisk)
	assert.InDelta(t, 0.2, res.Scores.CoreConfidence, 1e-9)
	assert.Equal(t, DecisionRejected, res.Decision)
}
