package validation

import (
	"fmt"
	"regexp"
	"strings"

	"promptforge/callisto/pkg/registry"
)

// engineDialect is the placeholder dialect this engine validates.
const engineDialect = "double-brace"

// contextLengthBonusThreshold is the profile context length above which the
// compatibility score earns its capacity bonus.
const contextLengthBonusThreshold = 50000

// roleMarkerPattern matches literal role markers ("system:", "user:", ...)
// in raw template text.
var roleMarkerPattern = regexp.MustCompile(`(?i)\b(system|user|assistant|tool)\s*:`)

// CompatibilityChecker validates a template against a provider's capability
// profile and derives the 0-100 compatibility score used to rank providers.
type CompatibilityChecker struct {
	registry *registry.Registry
	allowed  []string
	enabled  bool
}

// NewCompatibilityChecker creates a compatibility checker backed by the
// given registry. When enabled is false every check returns a valid result
// immediately.
func NewCompatibilityChecker(reg *registry.Registry, allowedProviders []string, enabled bool) *CompatibilityChecker {
	return &CompatibilityChecker{
		registry: reg,
		allowed:  allowedProviders,
		enabled:  enabled,
	}
}

// Validate checks a template and provider pair against the capability
// registry.
//
// A provider outside the allowed set is a hard error. A provider with no
// registered profile yields only a warning: an unknown profile is not a
// rejection.
func (c *CompatibilityChecker) Validate(template, providerID string) ValidationResult {
	b := newResultBuilder()
	if !c.enabled {
		return b.result()
	}

	if !c.isAllowed(providerID) {
		b.addError(KindInvalidVariable,
			fmt.Sprintf("provider %q is not allowed; allowed providers: %s", providerID, strings.Join(c.allowed, ", ")))
		return b.result()
	}

	profile, ok := c.registry.Get(providerID)
	if !ok {
		b.addWarning(KindInvalidVariable,
			fmt.Sprintf("no capability profile registered for provider %q; compatibility cannot be fully validated", providerID))
		return b.result()
	}

	if len(template) > profile.MaxContextLength {
		b.addError(KindInvalidVariable,
			fmt.Sprintf("template length %d exceeds provider %q context length %d", len(template), providerID, profile.MaxContextLength))
	}

	c.checkReservedKeywords(template, profile, b)

	if profile.VariableSyntax != engineDialect {
		b.addWarning(KindInvalidVariable,
			fmt.Sprintf("provider %q expects %s variable syntax; this template uses %s placeholders", providerID, profile.VariableSyntax, engineDialect))
	}

	c.checkRoleMarkers(template, profile, b)

	return b.result()
}

// Score computes the 0-100 compatibility score for a template and provider.
// probeFailed applies the fixed penalty for a failed or timed-out provider
// probe.
func (c *CompatibilityChecker) Score(template, providerID string, probeFailed bool) int {
	return c.scoreResult(c.Validate(template, providerID), providerID, probeFailed)
}

// scoreResult derives the score from an already-computed compatibility
// result: 100, minus 20 per error and 5 per warning, minus 30 for a failed
// probe, plus capability bonuses, clamped to [0,100].
func (c *CompatibilityChecker) scoreResult(res ValidationResult, providerID string, probeFailed bool) int {
	score := 100 - 20*len(res.Errors) - 5*len(res.Warnings)

	if probeFailed {
		score -= 30
	}

	if profile, ok := c.registry.Get(providerID); ok {
		if profile.SupportsSystemMessages {
			score += 5
		}
		if profile.SupportsStreaming {
			score += 5
		}
		if profile.SupportsTools {
			score += 5
		}
		if profile.MaxContextLength > contextLengthBonusThreshold {
			score += 10
		}
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// isAllowed reports whether the provider id is in the allowed set.
func (c *CompatibilityChecker) isAllowed(providerID string) bool {
	for _, p := range c.allowed {
		if p == providerID {
			return true
		}
	}
	return false
}

// checkReservedKeywords reports every provider-reserved keyword used as a
// placeholder name, case-insensitively, with its location.
func (c *CompatibilityChecker) checkReservedKeywords(template string, profile *registry.CapabilityProfile, b *resultBuilder) {
	for _, keyword := range profile.ReservedKeywords {
		pattern := regexp.MustCompile(`(?i)\{\{\s*` + regexp.QuoteMeta(keyword) + `\s*\}\}`)
		for _, loc := range pattern.FindAllStringIndex(template, -1) {
			b.addErrorAt(KindInvalidVariable,
				fmt.Sprintf("provider %q reserves the keyword %q; it cannot be used as a variable name", profile.ProviderID, keyword),
				positionAt(template, loc[0]))
		}
	}
}

// checkRoleMarkers scans raw text for literal role markers and warns for
// each marker whose role the provider does not support.
func (c *CompatibilityChecker) checkRoleMarkers(template string, profile *registry.CapabilityProfile, b *resultBuilder) {
	for _, m := range roleMarkerPattern.FindAllStringSubmatchIndex(template, -1) {
		role := strings.ToLower(template[m[2]:m[3]])
		if !profile.SupportsRole(role) {
			b.addWarningAt(KindInvalidVariable,
				fmt.Sprintf("template contains a %q role marker but provider %q does not support the %s role", role, profile.ProviderID, role),
				positionAt(template, m[0]))
		}
	}
}
