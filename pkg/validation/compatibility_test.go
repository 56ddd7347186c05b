package validation

import (
	"strings"
	"testing"

	"promptforge/callisto/pkg/config"
	"promptforge/callisto/pkg/registry"
)

func newTestChecker() *CompatibilityChecker {
	return NewCompatibilityChecker(registry.New(), config.DefaultAllowedProviders(), true)
}

// TestCompatibilityChecker_Disabled tests the disabled short circuit.
func TestCompatibilityChecker_Disabled(t *testing.T) {
	checker := NewCompatibilityChecker(registry.New(), nil, false)
	result := checker.Validate("anything {{at}} all", "nonexistent")

	if !result.IsValid || len(result.Warnings) != 0 {
		t.Errorf("disabled checker reported findings: errors=%v warnings=%v", result.Errors, result.Warnings)
	}
}

// TestCompatibilityChecker_DisallowedProvider tests the allowed-set gate.
func TestCompatibilityChecker_DisallowedProvider(t *testing.T) {
	checker := newTestChecker()
	result := checker.Validate("Hello {{name}}", "unknown-provider")

	if result.IsValid {
		t.Fatal("disallowed provider must be an error")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(result.Errors), result.Errors)
	}
	e := result.Errors[0]
	if e.Kind != KindInvalidVariable {
		t.Errorf("kind = %s, want %s", e.Kind, KindInvalidVariable)
	}
	if !strings.Contains(e.Message, `"unknown-provider"`) {
		t.Errorf("message = %q, want it to name the provider", e.Message)
	}
	for _, id := range config.DefaultAllowedProviders() {
		if !strings.Contains(e.Message, id) {
			t.Errorf("message = %q, want it to list allowed provider %s", e.Message, id)
		}
	}
}

// TestCompatibilityChecker_NoProfile tests an allowed provider with no
// registered profile.
func TestCompatibilityChecker_NoProfile(t *testing.T) {
	checker := NewCompatibilityChecker(registry.NewEmpty(), []string{"openai"}, true)
	result := checker.Validate("Hello {{name}}", "openai")

	if !result.IsValid {
		t.Fatalf("unknown profile is not a rejection, errors: %v", result.Errors)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(result.Warnings), result.Warnings)
	}
	if !strings.Contains(result.Warnings[0].Message, "no capability profile registered") {
		t.Errorf("warning = %q", result.Warnings[0].Message)
	}
}

// TestCompatibilityChecker_ContextLength tests the context length cap.
func TestCompatibilityChecker_ContextLength(t *testing.T) {
	reg := registry.NewEmpty()
	reg.Update("tiny", registry.CapabilityProfile{
		MaxContextLength: 10,
		SupportedRoles:   []string{"user"},
		VariableSyntax:   "double-brace",
	})

	checker := NewCompatibilityChecker(reg, []string{"tiny"}, true)
	result := checker.Validate("this template is longer than ten characters", "tiny")

	found := false
	for _, e := range result.Errors {
		if strings.Contains(e.Message, "exceeds provider") && strings.Contains(e.Message, "context length 10") {
			found = true
		}
	}
	if !found {
		t.Errorf("errors = %v, want context length error", result.Errors)
	}
}

// TestCompatibilityChecker_ReservedKeywords tests provider keyword
// collisions, case-insensitively.
func TestCompatibilityChecker_ReservedKeywords(t *testing.T) {
	checker := newTestChecker()

	result := checker.Validate("call {{function}} with args", "openai")
	if result.IsValid {
		t.Fatal("reserved keyword placeholder must be an error")
	}
	if !strings.Contains(result.Errors[0].Message, `reserves the keyword "function"`) {
		t.Errorf("message = %q", result.Errors[0].Message)
	}

	// Case-insensitive, with inner whitespace
	result = checker.Validate("call {{ Function }} now", "openai")
	if result.IsValid {
		t.Error("reserved keyword match must be case-insensitive")
	}
}

// TestCompatibilityChecker_DialectWarning tests the variable syntax dialect
// mismatch warning.
func TestCompatibilityChecker_DialectWarning(t *testing.T) {
	checker := newTestChecker()
	result := checker.Validate("Hello {{name}}", "aws-bedrock")

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w.Message, "single-brace variable syntax") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want dialect mismatch warning", result.Warnings)
	}
}

// TestCompatibilityChecker_RoleMarkers tests unsupported role marker
// warnings.
func TestCompatibilityChecker_RoleMarkers(t *testing.T) {
	checker := newTestChecker()

	// anthropic's profile supports only user and assistant roles.
	result := checker.Validate("system: {{x}}", "anthropic")
	if !result.IsValid {
		t.Fatalf("role marker is a warning, errors: %v", result.Errors)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(result.Warnings), result.Warnings)
	}
	w := result.Warnings[0]
	if !strings.Contains(w.Message, `"system" role marker`) {
		t.Errorf("warning = %q", w.Message)
	}
	if w.Line != 1 || w.Column != 1 {
		t.Errorf("position = %d:%d, want 1:1", w.Line, w.Column)
	}

	// Supported markers produce nothing.
	result = checker.Validate("user: {{x}}", "anthropic")
	if len(result.Warnings) != 0 {
		t.Errorf("supported role produced warnings: %v", result.Warnings)
	}
}

// TestCompatibilityChecker_Score tests the scoring formula.
func TestCompatibilityChecker_Score(t *testing.T) {
	checker := newTestChecker()

	t.Run("clean template on openai", func(t *testing.T) {
		// openai: all three capability bonuses plus the context bonus,
		// clamped to 100.
		score := checker.Score("Hello {{name}}", "openai", false)
		if score != 100 {
			t.Errorf("score = %d, want 100", score)
		}
	})

	t.Run("probe failure penalty", func(t *testing.T) {
		with := checker.Score("Hello {{name}}", "openai", false)
		without := checker.Score("Hello {{name}}", "openai", true)
		if without >= with {
			t.Errorf("probe failure should lower the score: %d vs %d", without, with)
		}
	})

	t.Run("meta has no tool or context bonus", func(t *testing.T) {
		// meta: 100 + system 5 + streaming 5 = 110, clamped to 100.
		score := checker.Score("Hello {{name}}", "meta", false)
		if score != 100 {
			t.Errorf("score = %d, want 100", score)
		}
		// A probe failure is not absorbed by clamping here.
		score = checker.Score("Hello {{name}}", "meta", true)
		if score != 80 {
			t.Errorf("score with failed probe = %d, want 80", score)
		}
	})

	t.Run("never below zero", func(t *testing.T) {
		reg := registry.NewEmpty()
		reg.Update("tiny", registry.CapabilityProfile{
			MaxContextLength: 1,
			SupportedRoles:   []string{"user"},
			VariableSyntax:   "single-brace",
			ReservedKeywords: []string{"a", "b", "c", "d", "e"},
		})
		c := NewCompatibilityChecker(reg, []string{"tiny"}, true)
		score := c.Score("{{a}} {{b}} {{c}} {{d}} {{e}} padding", "tiny", true)
		if score < 0 || score > 100 {
			t.Errorf("score = %d, want within [0,100]", score)
		}
		if score != 0 {
			t.Errorf("score = %d, want 0 after heavy deductions", score)
		}
	})
}

// TestCompatibilityChecker_ScoreBounds tests the clamp across providers.
func TestCompatibilityChecker_ScoreBounds(t *testing.T) {
	checker := newTestChecker()
	templates := []string{
		"Hello {{name}}",
		"eval(x) {{function}} system: broken {",
		strings.Repeat("{{v}} ", 200),
	}

	for _, template := range templates {
		for _, id := range config.DefaultAllowedProviders() {
			for _, probeFailed := range []bool{false, true} {
				score := checker.Score(template, id, probeFailed)
				if score < 0 || score > 100 {
					t.Errorf("Score(%q, %s, %t) = %d, outside [0,100]", template, id, probeFailed, score)
				}
			}
		}
	}
}
