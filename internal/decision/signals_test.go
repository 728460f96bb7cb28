package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSignals(t *testing.T) {
	t.Run("absent fields produce no signals", func(t *testing.T) {
		assert.Empty(t, NormalizeSignals(AssetInputs{CustodyEvents: ptr(4), TamperEvents: ptr(0), GeoMismatch: ptr(false)}, evalTime))
	})

	t.Run("mapping table", func(t *testing.T) {
		rating := RatingB
		in := AssetInputs{
			OpticalMatch:    ptr(1.4),
			SerialMatch:     ptr(false),
			CustodyGaps:     ptr(true),
			MarketVolume:    ptr(10_001.0),
			ConditionRating: &rating,
			TamperEvents:    ptr(5),
			GeoMismatch:     ptr(true),
		}

		signals := NormalizeSignals(in, evalTime)
		require.Len(t, signals, 7)

		byID := make(map[string]Signal, len(signals))
		for _, s := range signals {
			byID[s.ID] = s
			assert.True(t, s.Timestamp.Equal(evalTime))
			assert.NotNil(t, s.EvidenceRefs)
		}

		assert.Equal(t, 1.0, byID[SignalOpticalMatch].Value)
		assert.Equal(t, 0.95, byID[SignalOpticalMatch].Confidence)
		assert.Equal(t, SourceHomeApp, byID[SignalOpticalMatch].Source)
		assert.Equal(t, []string{"obs:img:optical_scan_01"}, byID[SignalOpticalMatch].EvidenceRefs)
		assert.Equal(t, 0.0, byID[SignalSerialMatch].Value)
		assert.Equal(t, 0.0, byID[SignalCustodyIntegrity].Value)
		assert.Equal(t, 0.7, byID[SignalMarketDepth].Value)
		assert.Equal(t, 0.8, byID[SignalMarketDepth].Confidence)
		assert.Equal(t, 0.85, byID[SignalConditionReport].Value)
		assert.Equal(t, 1.0, byID[SignalTamperDetected].Value)
		assert.Equal(t, SourceLocker, byID[SignalTamperDetected].Source)
		assert.Equal(t, 0.9, byID[SignalGeoMismatch].Confidence)
		assert.Equal(t, SourceSmartTag, byID[SignalGeoMismatch].Source)
	})

	t.Run("market depth bands", func(t *testing.T) {
		cases := map[float64]float64{
			0: 0, 1_000: 0, 1_001: 0.4, 10_000: 0.4, 10_001: 0.7, 100_000: 0.7, 100_001: 1.0,
		}
		for volume, want := range cases {
			assert.Equal(t, want, marketDepth(volume), "volume %v", volume)
		}
	})
}

func TestComputeFactors(t *testing.T) {
	factors := ComputeFactors(NormalizeSignals(AssetInputs{
		SerialMatch:  ptr(true),
		TamperEvents: ptr(1),
		GeoMismatch:  ptr(true),
	}, evalTime))
	require.Len(t, factors, 3)

	assert.Equal(t, FactorIdentitySerial, factors[0].FactorID)
	assert.Equal(t, 0.5, factors[0].Weight)
	assert.Equal(t, 1.0, factors[0].Contribution)

	assert.Equal(t, FactorTamperRisk, factors[1].FactorID)
	assert.Equal(t, BucketFraudRisk, factors[1].Bucket)
	assert.Equal(t, -1.0, factors[1].Contribution)
	assert.Equal(t, []string{SignalTamperDetected}, factors[1].SignalsUsed)

	assert.Equal(t, FactorGeoRisk, factors[2].FactorID)
	assert.Equal(t, -0.5, factors[2].Contribution)
	assert.Equal(t, 0.5, factors[2].Weight)

	assert.Empty(t, ComputeFactors([]Signal{{ID: "unknown_signal", Value: 1}}))
}
