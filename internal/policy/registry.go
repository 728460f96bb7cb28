package policy

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	pstrings "assetcore/pkg/platform/strings"
)

// ErrUnknownPolicy is returned when a key resolves to no registered policy.
var ErrUnknownPolicy = errors.New("unknown policy")

// Registry resolves policy keys (ids or aliases) to policies. It is built once
// at startup and read-only afterwards, so it needs no locking.
type Registry struct {
	policies  map[string]Policy
	aliases   map[string]string
	defaultID string
}

// NewRegistry validates policies and aliases and builds a registry. Policy ids
// are case-sensitive; aliases are matched case-insensitively.
func NewRegistry(defaultID string, policies []Policy, aliases map[string]string) (*Registry, error) {
	r := &Registry{
		policies: make(map[string]Policy, len(policies)),
		aliases:  make(map[string]string, len(aliases)),
	}
	for _, p := range policies {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.policies[p.ID]; dup {
			return nil, fmt.Errorf("policy %q registered twice", p.ID)
		}
		r.policies[p.ID] = p
	}
	for alias, target := range aliases {
		key := pstrings.NormalizeKey(alias)
		if key == "" {
			return nil, errors.New("policy alias must not be blank")
		}
		if _, ok := r.policies[target]; !ok {
			return nil, fmt.Errorf("alias %q targets %w %q", alias, ErrUnknownPolicy, target)
		}
		r.aliases[key] = target
	}
	if _, ok := r.policies[defaultID]; !ok {
		return nil, fmt.Errorf("default %w %q", ErrUnknownPolicy, defaultID)
	}
	r.defaultID = defaultID
	return r, nil
}

// NewBuiltinRegistry returns a registry with the builtin policies and aliases.
func NewBuiltinRegistry() *Registry {
	r, err := NewRegistry(DefaultPolicyID, Builtin(), BuiltinAliases())
	if err != nil {
		panic(fmt.Sprintf("builtin policies are invalid: %v", err))
	}
	return r
}

// Resolve returns the policy for key, which may be a policy id or an alias.
// A blank key resolves to the default policy.
func (r *Registry) Resolve(key string) (Policy, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return r.policies[r.defaultID], nil
	}
	if p, ok := r.policies[key]; ok {
		return p, nil
	}
	if id, ok := r.aliases[pstrings.NormalizeKey(key)]; ok {
		return r.policies[id], nil
	}
	return Policy{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, key)
}

// DefaultID returns the id used when a request names no policy.
func (r *Registry) DefaultID() string {
	return r.defaultID
}

// List returns all registered policies ordered by id.
func (r *Registry) List() []Policy {
	out := make([]Policy, 0, len(r.policies))
	for _, p := range r.policies {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b Policy) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// Aliases returns a copy of the alias table.
func (r *Registry) Aliases() map[string]string {
	out := make(map[string]string, len(r.aliases))
	for k, v := range r.aliases {
		out[k] = v
	}
	return out
}
