package decision

import "time"

// Signal identifiers.
const (
	SignalOpticalMatch     = "optical_match"
	SignalSerialMatch      = "serial_match"
	SignalCustodyIntegrity = "custody_integrity"
	SignalMarketDepth      = "market_depth"
	SignalConditionReport  = "condition_report"
	SignalTamperDetected   = "tamper_detected"
	SignalGeoMismatch      = "geo_mismatch"
)

// NormalizeSignals converts raw inputs into signals, in a fixed order.
// Absent fields produce no signal. custodyEvents is recorded only and never
// produces one.
func NormalizeSignals(in AssetInputs, now time.Time) []Signal {
	signals := make([]Signal, 0, 7)
	emit := func(id string, value, confidence float64, source Source, evidence ...string) {
		refs := evidence
		if refs == nil {
			refs = []string{}
		}
		signals = append(signals, Signal{
			ID:           id,
			Value:        value,
			Confidence:   confidence,
			Source:       source,
			Timestamp:    now,
			EvidenceRefs: refs,
		})
	}

	if in.OpticalMatch != nil {
		emit(SignalOpticalMatch, clamp01(*in.OpticalMatch), 0.95, SourceHomeApp, "obs:img:optical_scan_01")
	}
	if in.SerialMatch != nil {
		emit(SignalSerialMatch, boolValue(*in.SerialMatch), 1.0, SourceHuman)
	}
	if in.CustodyGaps != nil {
		emit(SignalCustodyIntegrity, boolValue(!*in.CustodyGaps), 1.0, SourcePartnerAPI)
	}
	if in.MarketVolume != nil {
		emit(SignalMarketDepth, marketDepth(*in.MarketVolume), 0.8, SourcePartnerAPI)
	}
	if in.ConditionRating != nil {
		emit(SignalConditionReport, ratingValues[*in.ConditionRating], 0.9, SourceHuman, "doc:condition_report_v1")
	}
	if in.TamperEvents != nil && *in.TamperEvents > 0 {
		emit(SignalTamperDetected, 1.0, 1.0, SourceLocker, "evt:sensor_alert_01")
	}
	if in.GeoMismatch != nil && *in.GeoMismatch {
		emit(SignalGeoMismatch, 1.0, 0.9, SourceSmartTag, "obs:gps_01")
	}

	return signals
}

// marketDepth bands traded volume into a liquidity signal.
func marketDepth(volume float64) float64 {
	switch {
	case volume > 100_000:
		return 1.0
	case volume > 10_000:
		return 0.7
	case volume > 1_000:
		return 0.4
	default:
		return 0
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
