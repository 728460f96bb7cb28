package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RegistrySuite struct {
	suite.Suite
	registry *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.registry = NewBuiltinRegistry()
}

func (s *RegistrySuite) TestResolve() {
	s.Run("blank key resolves to conservative default", func() {
		p, err := s.registry.Resolve("  ")
		s.Require().NoError(err)
		s.Equal(InsurerV1, p.ID)
	})

	s.Run("policy id", func() {
		p, err := s.registry.Resolve(LenderV1)
		s.Require().NoError(err)
		s.Equal(LenderV1, p.ID)
		s.Equal(StaleActionReview, p.Decay.StaleAction)
	})

	s.Run("alias is case insensitive", func() {
		p, err := s.registry.Resolve("Marketplace")
		s.Require().NoError(err)
		s.Equal(MarketplaceV1, p.ID)
	})

	s.Run("unknown key", func() {
		_, err := s.registry.Resolve("pawnshop_policy_v9")
		s.ErrorIs(err, ErrUnknownPolicy)
	})
}

func (s *RegistrySuite) TestListIsSortedAndIsolated() {
	list := s.registry.List()
	s.Require().Len(list, 3)
	s.Equal([]string{InsurerV1, LenderV1, MarketplaceV1}, []string{list[0].ID, list[1].ID, list[2].ID})

	list[0].Thresholds.Identity = 0
	again, err := s.registry.Resolve(InsurerV1)
	s.Require().NoError(err)
	s.Equal(0.80, again.Thresholds.Identity)
}

func (s *RegistrySuite) TestNewRegistryRejectsBadInput() {
	s.Run("duplicate id", func() {
		_, err := NewRegistry(InsurerV1, append(Builtin(), Builtin()[0]), nil)
		s.ErrorContains(err, "registered twice")
	})

	s.Run("alias to missing policy", func() {
		_, err := NewRegistry(InsurerV1, Builtin(), map[string]string{"bank": "bank_policy_v1"})
		s.ErrorIs(err, ErrUnknownPolicy)
	})

	s.Run("unknown default", func() {
		_, err := NewRegistry("nope", Builtin(), nil)
		s.ErrorIs(err, ErrUnknownPolicy)
	})
}

const packYAML = `
default: lender_policy_v2
aliases:
  bank: lender_policy_v2
policies:
  - id: lender_policy_v2
    version: 2.0.0
    disclosure: SUMMARY
    weights: {identity: 0.2, provenance: 0.2, condition: 0.1, liquidity: 0.3, fraudSafety: 0.2}
    thresholds: {identity: 0.7, provenance: 0.55, condition: 0.6, liquidity: 0.65, maxFraudRisk: 0.4, coreConfidence: 0.7}
    decay: {staleAfterDays: 120, staleAction: review, expireAfterDays: 365}
`

func TestLoadRegistry(t *testing.T) {
	t.Run("empty path is builtin", func(t *testing.T) {
		r, err := LoadRegistry("", "")
		require.NoError(t, err)
		assert.Equal(t, DefaultPolicyID, r.DefaultID())
	})

	t.Run("pack adds policies and aliases", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policies.yaml")
		require.NoError(t, os.WriteFile(path, []byte(packYAML), 0o600))

		r, err := LoadRegistry(path, "")
		require.NoError(t, err)
		assert.Equal(t, "lender_policy_v2", r.DefaultID())

		p, err := r.Resolve("BANK")
		require.NoError(t, err)
		assert.Equal(t, "2.0.0", p.Version)
		assert.Equal(t, 120, p.Decay.StaleAfterDays)

		_, err = r.Resolve("insurer")
		assert.NoError(t, err)
	})

	t.Run("explicit default wins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policies.yaml")
		require.NoError(t, os.WriteFile(path, []byte(packYAML), 0o600))

		r, err := LoadRegistry(path, MarketplaceV1)
		require.NoError(t, err)
		assert.Equal(t, MarketplaceV1, r.DefaultID())
	})

	t.Run("unknown keys rejected", func(t *testing.T) {
		_, err := ParseFile([]byte("policies:\n  - id: x\n    colour: red\n"))
		assert.Error(t, err)
	})

	t.Run("invalid policy rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policies.yaml")
		bad := "policies:\n  - id: broken\n    version: 1\n    disclosure: NONE\n    thresholds: {maxFraudRisk: 1}\n"
		require.NoError(t, os.WriteFile(path, []byte(bad), 0o600))

		_, err := LoadRegistry(path, "")
		assert.ErrorContains(t, err, "maxFraudRisk")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRegistry(filepath.Join(t.TempDir(), "absent.yaml"), "")
		assert.Error(t, err)
	})
}
