package policy

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk policy pack format:
//
//	default: lender_policy_v1
//	aliases:
//	  bank: lender_policy_v2
//	policies:
//	  - id: lender_policy_v2
//	    version: 2.0.0
//	    disclosure: SUMMARY
//	    weights: {identity: 0.2, provenance: 0.2, condition: 0.1, liquidity: 0.3, fraudSafety: 0.2}
//	    thresholds: {identity: 0.7, provenance: 0.55, condition: 0.6, liquidity: 0.65, maxFraudRisk: 0.4, coreConfidence: 0.7}
//	    decay: {staleAfterDays: 120, staleAction: review, expireAfterDays: 365}
type File struct {
	Default  string            `yaml:"default"`
	Aliases  map[string]string `yaml:"aliases"`
	Policies []Policy          `yaml:"policies"`
}

// ParseFile decodes a policy pack, rejecting unknown keys.
func ParseFile(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode policy file: %w", err)
	}
	return &f, nil
}

// LoadRegistry builds a registry from the builtin policies plus the pack at
// path. An empty path yields the builtin registry. defaultID overrides the
// pack's default when non-empty.
func LoadRegistry(path, defaultID string) (*Registry, error) {
	policies := Builtin()
	aliases := BuiltinAliases()
	def := DefaultPolicyID

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read policy file: %w", err)
		}
		f, err := ParseFile(data)
		if err != nil {
			return nil, err
		}
		policies = append(policies, f.Policies...)
		for alias, target := range f.Aliases {
			aliases[alias] = target
		}
		if f.Default != "" {
			def = f.Default
		}
	}
	if defaultID != "" {
		def = defaultID
	}

	return NewRegistry(def, policies, aliases)
}
