// Package registry holds the process-wide table of LLM provider capability
// profiles consulted by the compatibility checker.
//
// The registry is an explicit, constructed service object: it is passed to
// call sites rather than accessed through a hidden global. Updates replace
// whole profiles atomically, so concurrent readers always observe either the
// old or the new profile, never a mix.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotInitialized is returned when a nil registry is used. Callers are
// expected to construct a registry with New (or NewEmpty) before first use.
var ErrNotInitialized = errors.New("capability registry not initialized")

// CapabilityProfile describes the limits and features one LLM provider
// exposes. Profiles are replaced wholesale on update, never merged
// field by field.
type CapabilityProfile struct {
	ProviderID             string   `yaml:"provider_id" json:"provider_id"`
	SupportsSystemMessages bool     `yaml:"supports_system_messages" json:"supports_system_messages"`
	MaxContextLength       int      `yaml:"max_context_length" json:"max_context_length"`
	SupportedRoles         []string `yaml:"supported_roles" json:"supported_roles"`
	SupportsStreaming      bool     `yaml:"supports_streaming" json:"supports_streaming"`
	SupportsTools          bool     `yaml:"supports_tools" json:"supports_tools"`

	// VariableSyntax is the placeholder dialect the provider's tooling
	// expects, e.g. "double-brace" or "single-brace".
	VariableSyntax string `yaml:"variable_syntax" json:"variable_syntax"`

	// ReservedKeywords are identifiers the provider reserves; templates may
	// not use them as placeholder names.
	ReservedKeywords []string `yaml:"reserved_keywords" json:"reserved_keywords"`
}

// SupportsRole reports whether the profile lists the given role.
func (p *CapabilityProfile) SupportsRole(role string) bool {
	for _, r := range p.SupportedRoles {
		if r == role {
			return true
		}
	}
	return false
}

// clone returns a deep copy so callers can never observe a partially
// updated profile.
func (p *CapabilityProfile) clone() *CapabilityProfile {
	cp := *p
	cp.SupportedRoles = append([]string(nil), p.SupportedRoles...)
	cp.ReservedKeywords = append([]string(nil), p.ReservedKeywords...)
	return &cp
}

// builtinProfiles returns the capability profiles seeded at construction.
func builtinProfiles() []*CapabilityProfile {
	return []*CapabilityProfile{
		{
			ProviderID:             "openai",
			SupportsSystemMessages: true,
			MaxContextLength:       128000,
			SupportedRoles:         []string{"system", "user", "assistant", "tool"},
			SupportsStreaming:      true,
			SupportsTools:          true,
			VariableSyntax:         "double-brace",
			ReservedKeywords:       []string{"function", "tool_call"},
		},
		{
			ProviderID:             "anthropic",
			SupportsSystemMessages: true,
			MaxContextLength:       200000,
			SupportedRoles:         []string{"user", "assistant"},
			SupportsStreaming:      true,
			SupportsTools:          true,
			VariableSyntax:         "double-brace",
			ReservedKeywords:       []string{"human", "assistant"},
		},
		{
			ProviderID:             "meta",
			SupportsSystemMessages: true,
			MaxContextLength:       8192,
			SupportedRoles:         []string{"system", "user", "assistant"},
			SupportsStreaming:      true,
			SupportsTools:          false,
			VariableSyntax:         "double-brace",
			ReservedKeywords:       []string{"inst", "sys"},
		},
		{
			ProviderID:             "aws-bedrock",
			SupportsSystemMessages: false,
			MaxContextLength:       100000,
			SupportedRoles:         []string{"user", "assistant"},
			SupportsStreaming:      true,
			SupportsTools:          false,
			VariableSyntax:         "single-brace",
			ReservedKeywords:       []string{"bedrock"},
		},
		{
			ProviderID:             "azure-openai",
			SupportsSystemMessages: true,
			MaxContextLength:       128000,
			SupportedRoles:         []string{"system", "user", "assistant", "tool"},
			SupportsStreaming:      true,
			SupportsTools:          true,
			VariableSyntax:         "double-brace",
			ReservedKeywords:       []string{"function", "tool_call"},
		},
	}
}

// Registry is a thread-safe table of provider capability profiles.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]*CapabilityProfile
}

// New creates a registry seeded with the built-in provider profiles.
func New() *Registry {
	r := NewEmpty()
	for _, p := range builtinProfiles() {
		r.profiles[p.ProviderID] = p
	}
	return r
}

// NewEmpty creates a registry with no profiles.
func NewEmpty() *Registry {
	return &Registry{profiles: make(map[string]*CapabilityProfile)}
}

// Get returns a copy of the profile for the given provider id.
// The second return value is false when no profile is registered.
func (r *Registry) Get(providerID string) (*CapabilityProfile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[providerID]
	if !ok {
		return nil, false
	}
	return p.clone(), true
}

// Update atomically replaces the whole profile for a provider id.
// There is no partial-field merge: the stored profile becomes exactly the
// given value. An empty provider id is rejected.
func (r *Registry) Update(providerID string, profile CapabilityProfile) error {
	if providerID == "" {
		return fmt.Errorf("provider id cannot be empty")
	}
	profile.ProviderID = providerID

	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[providerID] = profile.clone()
	return nil
}

// ProviderIDs returns the registered provider ids in sorted order.
func (r *Registry) ProviderIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot returns a copy of every registered profile, keyed by provider id.
func (r *Registry) Snapshot() map[string]*CapabilityProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*CapabilityProfile, len(r.profiles))
	for id, p := range r.profiles {
		out[id] = p.clone()
	}
	return out
}

// Len returns the number of registered profiles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.profiles)
}
