package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetcore/internal/policy"
)

func TestGate(t *testing.T) {
	p := policy.Builtin()[0] // insurer: 0.80 / 0.70 / 0.60 / 0, fraud 0.30, core 0.75
	perfect := Scores{Identity: 1, Provenance: 1, Condition: 1, Liquidity: 1, CoreConfidence: 1}

	cases := []struct {
		name       string
		mutate     func(s *Scores)
		decision   Decision
		band       ConfidenceBand
		breachedOn Bucket
	}{
		{name: "all clear", mutate: func(*Scores) {}, decision: DecisionVerified, band: BandHigh},
		{name: "identity breach", mutate: func(s *Scores) { s.Identity = 0.5 }, decision: DecisionRejected, band: BandHigh, breachedOn: BucketIdentity},
		{
			name:       "first breach wins",
			mutate:     func(s *Scores) { s.Provenance = 0.1; s.Condition = 0.1; s.FraudRisk = 0.9 },
			decision:   DecisionRejected,
			band:       BandHigh,
			breachedOn: BucketProvenance,
		},
		{name: "fraud above ceiling", mutate: func(s *Scores) { s.FraudRisk = 0.31 }, decision: DecisionRejected, band: BandHigh, breachedOn: BucketFraudRisk},
		{name: "fraud at ceiling passes", mutate: func(s *Scores) { s.FraudRisk = 0.30 }, decision: DecisionVerified, band: BandHigh},
		{name: "threshold equality passes", mutate: func(s *Scores) { s.Identity = 0.80 }, decision: DecisionVerified, band: BandHigh},
		{name: "core below floor", mutate: func(s *Scores) { s.CoreConfidence = 0.74 }, decision: DecisionReviewRequired, band: BandLow},
		{name: "core below medium ceiling", mutate: func(s *Scores) { s.CoreConfidence = 0.84 }, decision: DecisionVerified, band: BandMedium},
		{name: "core at medium ceiling", mutate: func(s *Scores) { s.CoreConfidence = 0.85 }, decision: DecisionVerified, band: BandHigh},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := perfect
			tc.mutate(&s)

			out := Gate(s, p)

			assert.Equal(t, tc.decision, out.Decision)
			assert.Equal(t, tc.band, out.Band)
			if tc.breachedOn == "" {
				assert.Nil(t, out.Breach)
				return
			}
			require.NotNil(t, out.Breach)
			assert.Equal(t, tc.breachedOn, out.Breach.Bucket)
		})
	}
}

func TestBreachString(t *testing.T) {
	assert.Equal(t, "identity 0.50 below 0.80", Breach{Bucket: BucketIdentity, Score: 0.5, Threshold: 0.8}.String())
	assert.Equal(t, "fraud_risk 1.00 above 0.30", Breach{Bucket: BucketFraudRisk, Score: 1, Threshold: 0.3}.String())
}
