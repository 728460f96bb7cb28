package decision

// Factor identifiers.
const (
	FactorIdentityOptical = "identity_optical"
	FactorIdentitySerial  = "identity_serial"
	FactorCustodyChain    = "custody_chain"
	FactorConditionRating = "condition_rating"
	FactorMarketVolume    = "market_volume"
	FactorTamperRisk      = "tamper_risk"
	FactorGeoRisk         = "geo_risk"
)

type factorSpec struct {
	id     string
	title  string
	bucket Bucket
	weight float64
	// risk is the contribution magnitude of a fraud factor; zero for
	// factors that pass the signal value through.
	risk float64
}

// factorSpecs maps each signal to exactly one factor.
var factorSpecs = map[string]factorSpec{
	SignalOpticalMatch:     {id: FactorIdentityOptical, title: "Optical Fingerprint", bucket: BucketIdentity, weight: 1.0},
	SignalSerialMatch:      {id: FactorIdentitySerial, title: "Serial Verification", bucket: BucketIdentity, weight: 0.5},
	SignalCustodyIntegrity: {id: FactorCustodyChain, title: "Custody Continuity", bucket: BucketProvenance, weight: 1.0},
	SignalConditionReport:  {id: FactorConditionRating, title: "Physical Grade", bucket: BucketCondition, weight: 1.0},
	SignalMarketDepth:      {id: FactorMarketVolume, title: "Market Depth", bucket: BucketLiquidity, weight: 1.0},
	SignalTamperDetected:   {id: FactorTamperRisk, title: "Tamper Event", bucket: BucketFraudRisk, weight: 1.0, risk: 1.0},
	SignalGeoMismatch:      {id: FactorGeoRisk, title: "Geolocation Mismatch", bucket: BucketFraudRisk, weight: 0.5, risk: 0.5},
}

// ComputeFactors maps recognized signals to factor contributions in signal order.
// Unknown signals are ignored.
func ComputeFactors(signals []Signal) []FactorContribution {
	factors := make([]FactorContribution, 0, len(signals))
	for _, sig := range signals {
		spec, ok := factorSpecs[sig.ID]
		if !ok {
			continue
		}
		contribution := sig.Value
		if spec.bucket == BucketFraudRisk {
			contribution = -spec.risk * sig.Value
		}
		factors = append(factors, FactorContribution{
			FactorID:     spec.id,
			Title:        spec.title,
			Bucket:       spec.bucket,
			Weight:       spec.weight,
			Contribution: contribution,
			SignalsUsed:  []string{sig.ID},
			EvidenceRefs: append([]string{}, sig.EvidenceRefs...),
		})
	}
	return factors
}
