package validation

import (
	"fmt"
	"regexp"
)

// securityPattern is one detection rule in the scanner's pattern table.
// Severity is fixed per pattern; the configured security level only decides
// how unsafe-pattern findings are classified.
type securityPattern struct {
	pattern     *regexp.Regexp
	description string
	severity    Severity
}

// codeInjectionPatterns detect executable content smuggled into templates.
// Critical and high severities are promoted to errors, medium to warnings.
var codeInjectionPatterns = []securityPattern{
	{regexp.MustCompile(`(?i)\beval\s*\(`), "eval() call", SeverityCritical},
	{regexp.MustCompile(`(?i)<script[^>]*>`), "script tag", SeverityCritical},
	{regexp.MustCompile(`(?i)\bfunction\s+\w+\s*\(`), "function declaration", SeverityHigh},
	{regexp.MustCompile(`(?i)javascript:`), "javascript: scheme", SeverityHigh},
	{regexp.MustCompile(`(?i)\bon\w+\s*=`), "inline event handler attribute", SeverityHigh},
	{regexp.MustCompile(`\$\{[^}]*\}`), "template literal interpolation", SeverityMedium},
	{regexp.MustCompile(`(?i)\bdocument\.\w+`), "document object access", SeverityMedium},
	{regexp.MustCompile(`(?i)\bwindow\.\w+`), "window object access", SeverityMedium},
	{regexp.MustCompile(`(?i)\bimport\s+[\w{"']`), "import statement", SeverityMedium},
	{regexp.MustCompile(`(?i)\brequire\s*\(`), "require statement", SeverityMedium},
}

// sensitiveDataPatterns detect credentials and personal data embedded in
// template text. Always medium severity, always surfaced as warnings.
var sensitiveDataPatterns = []securityPattern{
	{regexp.MustCompile(`(?i)\bpassword\b`), "password mention", SeverityMedium},
	{regexp.MustCompile(`(?i)\bsecret\b`), "secret mention", SeverityMedium},
	{regexp.MustCompile(`(?i)\btoken\b`), "token mention", SeverityMedium},
	{regexp.MustCompile(`(?i)\bapi[_-]?key\b`), "API key mention", SeverityMedium},
	{regexp.MustCompile(`(?i)\bcredential\b`), "credential mention", SeverityMedium},
	{regexp.MustCompile(`(?i)\bprivate[_-]?key\b`), "private key mention", SeverityMedium},
	{regexp.MustCompile(`\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`), "credit-card-like number", SeverityMedium},
	{regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), "SSN-like number", SeverityMedium},
}

// unsafePatterns detect content that is risky in downstream contexts.
// Always low severity; errors only under the strict security level.
var unsafePatterns = []securityPattern{
	{regexp.MustCompile(`\.\./`), "path traversal sequence", SeverityLow},
	{regexp.MustCompile(`(?i)file://`), "file:// URL", SeverityLow},
	{regexp.MustCompile(`(?i)\bdata:`), "data: URL", SeverityLow},
	{regexp.MustCompile(`(?i)vbscript:`), "vbscript: scheme", SeverityLow},
	{regexp.MustCompile(`<!--`), "HTML comment", SeverityLow},
	{regexp.MustCompile(`<\?`), "processing instruction", SeverityLow},
}

// SecurityScanner detects injection patterns, sensitive-data patterns and
// unsafe patterns in template text. The configured security level decides
// whether unsafe-pattern findings become errors or warnings.
type SecurityScanner struct {
	enabled bool
	level   SecurityLevel
}

// NewSecurityScanner creates a security scanner. When enabled is false the
// scanner short-circuits and always returns a valid result.
func NewSecurityScanner(enabled bool, level SecurityLevel) *SecurityScanner {
	return &SecurityScanner{enabled: enabled, level: level}
}

// Validate scans a template and classifies each violation per the
// configured policy. A single span may match several families; every match
// is reported independently.
func (s *SecurityScanner) Validate(template string) ValidationResult {
	b := newResultBuilder()
	if !s.enabled {
		return b.result()
	}

	for _, v := range s.Scan(template) {
		s.classify(v, b)
	}

	return b.result()
}

// Scan returns the raw violations found in a template, in pattern-table
// order, before any error/warning classification.
func (s *SecurityScanner) Scan(template string) []SecurityViolation {
	var violations []SecurityViolation

	collect := func(patterns []securityPattern, kind Kind, family string) {
		for _, p := range patterns {
			for _, loc := range p.pattern.FindAllStringIndex(template, -1) {
				violations = append(violations, SecurityViolation{
					Kind:     kind,
					Message:  fmt.Sprintf("%s detected: %s", family, p.description),
					Severity: p.severity,
					Position: positionAt(template, loc[0]),
				})
			}
		}
	}

	collect(codeInjectionPatterns, KindSecurityViolation, "potential code injection")
	collect(sensitiveDataPatterns, KindSecurityConcern, "sensitive data pattern")
	collect(unsafePatterns, KindSecurityConcern, "unsafe pattern")

	return violations
}

// classify maps one violation to an error or warning.
//
// Code injection: critical and high are errors, medium is a warning.
// Sensitive data: always a warning, regardless of level.
// Unsafe pattern: an error only under the strict level.
func (s *SecurityScanner) classify(v SecurityViolation, b *resultBuilder) {
	switch v.Kind {
	case KindSecurityViolation:
		if v.Severity == SeverityCritical || v.Severity == SeverityHigh {
			b.addErrorAt(KindSecurityViolation, v.Message, v.Position)
		} else {
			b.addWarningAt(KindSecurityConcern, v.Message, v.Position)
		}
	default:
		if v.Severity == SeverityLow && s.level == LevelStrict {
			b.addErrorAt(KindSecurityViolation, v.Message, v.Position)
		} else {
			b.addWarningAt(KindSecurityConcern, v.Message, v.Position)
		}
	}
}
