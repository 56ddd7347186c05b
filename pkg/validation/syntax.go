package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// maxLineLength is the line length above which a performance warning
	// is emitted.
	maxLineLength = 1000

	// maxPlaceholdersPerLine is the per-line placeholder count above which
	// a performance warning is emitted.
	maxPlaceholdersPerLine = 10
)

var (
	// identifierPattern matches a valid variable identifier.
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	// nestedPlaceholderPattern detects a complete placeholder opened inside
	// another placeholder, e.g. "{{ outer {{inner}} }}".
	nestedPlaceholderPattern = regexp.MustCompile(`\{\{[^{}]*\{\{[^{}]*\}\}[^{}]*\}\}`)

	// malformedBracePatterns are structural brace mixes that can never form
	// a valid placeholder. Each match produces a dedicated error.
	malformedBracePatterns = []struct {
		pattern *regexp.Regexp
		message string
	}{
		{regexp.MustCompile(`(?:^|[^{])\{[^{}\n]*\}(?:[^}]|$)`), "single braces found; variables require double braces"},
		{regexp.MustCompile(`\{\{[^{}]*\{[^{}]*\}\}`), "stray single brace inside variable placeholder"},
		{regexp.MustCompile(`(?:^|[^{])\{[^{}]*\}\}`), "single opening brace paired with double closing braces"},
		{regexp.MustCompile(`\{\{[^{}]*\}(?:[^}]|$)`), "double opening braces paired with single closing brace"},
	}

	// reservedWords are control keywords that cannot be used as variable
	// names. Matched case-insensitively.
	reservedWords = map[string]bool{
		"if":       true,
		"else":     true,
		"endif":    true,
		"for":      true,
		"endfor":   true,
		"while":    true,
		"endwhile": true,
	}
)

// placeholder is one {{...}} span found by scanPlaceholders.
type placeholder struct {
	// start is the byte offset of the opening "{{".
	start int
	// innerStart is the byte offset of the first byte after "{{".
	innerStart int
	// inner is the raw text between the braces, untrimmed.
	inner string
}

// scanPlaceholders finds every {{...}} span whose inner text is brace-free,
// with a single linear pass. Hitting another brace inside a span re-anchors
// the scan there, so "{{ {{name}}" yields only the inner span; the stray
// opening is left to the brace-balance check.
func scanPlaceholders(s string) []placeholder {
	var spans []placeholder
	for i := 0; i+1 < len(s); {
		if s[i] != '{' || s[i+1] != '{' {
			i++
			continue
		}
		j := i + 2
		for j < len(s) && s[j] != '{' && s[j] != '}' {
			j++
		}
		if j+1 < len(s) && s[j] == '}' && s[j+1] == '}' {
			spans = append(spans, placeholder{
				start:      i,
				innerStart: i + 2,
				inner:      s[i+2 : j],
			})
			i = j + 2
			continue
		}
		if j < len(s) && s[j] == '{' {
			i = j
			continue
		}
		i = j + 1
	}
	return spans
}

// SyntaxAnalyzer validates placeholder well-formedness: brace balance,
// identifier shape, reserved words, nesting, malformed brace mixes, and
// size heuristics.
type SyntaxAnalyzer struct {
	maxTemplateLength int
}

// NewSyntaxAnalyzer creates a syntax analyzer with the given template
// length cap.
func NewSyntaxAnalyzer(maxTemplateLength int) *SyntaxAnalyzer {
	return &SyntaxAnalyzer{maxTemplateLength: maxTemplateLength}
}

// Validate analyzes a template for syntax problems.
// The length cap is enforced before any scan runs.
func (a *SyntaxAnalyzer) Validate(template string) ValidationResult {
	b := newResultBuilder()

	if len(template) > a.maxTemplateLength {
		b.addError(KindSyntaxError, fmt.Sprintf("template exceeds maximum length of %d characters", a.maxTemplateLength))
		return b.result()
	}

	if strings.TrimSpace(template) == "" {
		b.addError(KindSyntaxError, "template cannot be empty")
		return b.result()
	}

	a.checkPlaceholders(template, b)
	a.checkBraceBalance(template, b)
	a.checkNesting(template, b)
	a.checkMalformedBraces(template, b)
	a.checkPerformance(template, b)

	return b.result()
}

// checkPlaceholders validates the inner text of every placeholder span.
func (a *SyntaxAnalyzer) checkPlaceholders(template string, b *resultBuilder) {
	for _, ph := range scanPlaceholders(template) {
		name := strings.TrimSpace(ph.inner)
		pos := positionAt(template, ph.start)

		if name == "" {
			b.addErrorAt(KindSyntaxError, "empty variable placeholder found", pos)
			continue
		}

		if !identifierPattern.MatchString(name) {
			b.addErrorWithSuggestion(KindSyntaxError,
				fmt.Sprintf("invalid variable name: %q", name),
				pos,
				"variable names must start with a letter or underscore and contain only letters, digits and underscores")
			continue
		}

		if reservedWords[strings.ToLower(name)] {
			b.addErrorAt(KindSyntaxError,
				fmt.Sprintf("reserved word used as variable name: %s", name),
				pos)
		}
	}
}

// checkBraceBalance runs a linear scan maintaining a signed depth counter.
// "{{" increments, "}}" decrements, single braces are ignored.
//
// When the depth goes negative the error is reported at that position and
// the counter is reset to zero. The reset can hide genuine later mismatches
// in the same template; the behavior is kept for a stable single report per
// stray closing run.
func (a *SyntaxAnalyzer) checkBraceBalance(template string, b *resultBuilder) {
	depth := 0
	for i := 0; i < len(template); {
		if i+1 < len(template) && template[i] == '{' && template[i+1] == '{' {
			depth++
			i += 2
			continue
		}
		if i+1 < len(template) && template[i] == '}' && template[i+1] == '}' {
			depth--
			if depth < 0 {
				b.addErrorAt(KindSyntaxError, "unmatched closing braces found", positionAt(template, i))
				depth = 0
			}
			i += 2
			continue
		}
		i++
	}

	if depth > 0 {
		// No position: it is ambiguous which opening is unmatched.
		b.addError(KindSyntaxError, fmt.Sprintf("%d unmatched opening brace(s) found", depth))
	}
}

// checkNesting detects placeholders opened inside other placeholders.
func (a *SyntaxAnalyzer) checkNesting(template string, b *resultBuilder) {
	for _, loc := range nestedPlaceholderPattern.FindAllStringIndex(template, -1) {
		b.addErrorAt(KindSyntaxError, "nested variables are not supported", positionAt(template, loc[0]))
	}
}

// checkMalformedBraces reports structural brace mixes that can never form a
// valid placeholder.
func (a *SyntaxAnalyzer) checkMalformedBraces(template string, b *resultBuilder) {
	for _, mp := range malformedBracePatterns {
		for _, loc := range mp.pattern.FindAllStringIndex(template, -1) {
			b.addErrorAt(KindSyntaxError, mp.message, positionAt(template, loc[0]))
		}
	}
}

// checkPerformance emits warnings for very long lines and for lines packed
// with placeholders.
func (a *SyntaxAnalyzer) checkPerformance(template string, b *resultBuilder) {
	for i, line := range strings.Split(template, "\n") {
		if len(line) > maxLineLength {
			b.warnings = append(b.warnings, Finding{
				Kind:    KindPerformanceConcern,
				Message: fmt.Sprintf("line %d exceeds %d characters; consider splitting it", i+1, maxLineLength),
				Line:    i + 1,
			})
		}
		if n := len(scanPlaceholders(line)); n > maxPlaceholdersPerLine {
			b.warnings = append(b.warnings, Finding{
				Kind:    KindPerformanceConcern,
				Message: fmt.Sprintf("line %d contains %d placeholders; consider splitting it", i+1, n),
				Line:    i + 1,
			})
		}
	}
}
