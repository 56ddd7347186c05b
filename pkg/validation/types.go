package validation

// Kind categorizes a validation finding. Error-class kinds appear in
// ValidationResult.Errors, warning-class kinds in ValidationResult.Warnings.
type Kind string

const (
	// KindSyntaxError indicates malformed placeholder syntax in a template.
	KindSyntaxError Kind = "SYNTAX_ERROR"

	// KindInvalidVariable indicates an invalid variable definition,
	// validation rule, or provider argument.
	KindInvalidVariable Kind = "INVALID_VARIABLE"

	// KindMissingVariable indicates a template references a variable that
	// was not declared.
	KindMissingVariable Kind = "MISSING_VARIABLE"

	// KindUnusedVariable indicates a declared variable is never referenced.
	// Warning-only.
	KindUnusedVariable Kind = "UNUSED_VARIABLE"

	// KindSecurityViolation indicates a security finding severe enough to
	// reject the template.
	KindSecurityViolation Kind = "SECURITY_VIOLATION"

	// KindSecurityConcern indicates a security finding surfaced as a warning.
	KindSecurityConcern Kind = "SECURITY_CONCERN"

	// KindPerformanceConcern indicates a pattern likely to degrade
	// performance (very long lines, dense placeholder usage). Warning-only.
	KindPerformanceConcern Kind = "PERFORMANCE_CONCERN"
)

// Severity ranks a security finding. It decides whether a finding is
// promoted to an error or surfaced as a warning.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// SecurityLevel is the engine-wide policy controlling how unsafe-pattern
// findings are classified.
type SecurityLevel string

const (
	// LevelStrict promotes unsafe-pattern findings to errors.
	LevelStrict SecurityLevel = "strict"
	// LevelModerate surfaces unsafe-pattern findings as warnings.
	LevelModerate SecurityLevel = "moderate"
	// LevelPermissive surfaces unsafe-pattern findings as warnings.
	LevelPermissive SecurityLevel = "permissive"
)

// VarType is the declared type of a template variable.
type VarType string

const (
	TypeString  VarType = "string"
	TypeNumber  VarType = "number"
	TypeBoolean VarType = "boolean"
	TypeArray   VarType = "array"
	TypeObject  VarType = "object"
)

// validTypes is the closed set of variable types accepted by the binder.
var validTypes = map[VarType]bool{
	TypeString:  true,
	TypeNumber:  true,
	TypeBoolean: true,
	TypeArray:   true,
	TypeObject:  true,
}

// RuleKind identifies a variable validation rule.
type RuleKind string

const (
	RuleMinLength RuleKind = "minLength"
	RuleMaxLength RuleKind = "maxLength"
	RulePattern   RuleKind = "pattern"
	RuleMin       RuleKind = "min"
	RuleMax       RuleKind = "max"
	RuleEnum      RuleKind = "enum"
)

// Rule is a single validation constraint attached to a variable.
// MinLength, MaxLength and Pattern apply only to string-typed variables;
// Min and Max apply only to number-typed variables; Enum applies to any type.
//
// Use the constructor functions (MinLength, Pattern, ...) to build rules
// programmatically; rules decoded from YAML are re-checked by the binder.
type Rule struct {
	Kind  RuleKind `yaml:"kind" json:"kind"`
	Value any      `yaml:"value" json:"value"`
}

// MinLength builds a minimum-length rule for string variables.
func MinLength(n int) Rule { return Rule{Kind: RuleMinLength, Value: n} }

// MaxLength builds a maximum-length rule for string variables.
func MaxLength(n int) Rule { return Rule{Kind: RuleMaxLength, Value: n} }

// Pattern builds a regular-expression rule for string variables.
func Pattern(expr string) Rule { return Rule{Kind: RulePattern, Value: expr} }

// Min builds a minimum-value rule for number variables.
func Min(n float64) Rule { return Rule{Kind: RuleMin, Value: n} }

// Max builds a maximum-value rule for number variables.
func Max(n float64) Rule { return Rule{Kind: RuleMax, Value: n} }

// Enum builds an allowed-values rule. Enum rules apply to any variable type.
func Enum(values ...string) Rule { return Rule{Kind: RuleEnum, Value: values} }

// Variable is a declared template variable. Variables are supplied by the
// caller per validation call; the engine does not persist them.
type Variable struct {
	Name         string  `yaml:"name" json:"name"`
	Type         VarType `yaml:"type" json:"type"`
	Description  string  `yaml:"description" json:"description"`
	Required     bool    `yaml:"required" json:"required"`
	DefaultValue any     `yaml:"default" json:"default,omitempty"`
	Rules        []Rule  `yaml:"rules" json:"rules,omitempty"`
}

// Position is a 1-based line and column in a template.
// The zero value means the location is unknown.
type Position struct {
	Line   int `json:"line,omitempty"`
	Column int `json:"column,omitempty"`
}

// IsValid reports whether the position carries a real location.
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0
}

// Finding is a single error or warning discovered by an analyzer.
// Findings are append-only, ordered by discovery, and never deduplicated.
type Finding struct {
	Kind       Kind   `json:"kind"`
	Message    string `json:"message"`
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ValidationResult is the verdict of one analyzer or of the aggregate
// Validate call. It is constructed fresh per call and never mutated after
// return. IsValid is true exactly when Errors is empty.
type ValidationResult struct {
	IsValid  bool      `json:"is_valid"`
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
}

// SecurityViolation is an internal finding of the security scanner before
// it is translated into an error or warning by the configured policy.
type SecurityViolation struct {
	Kind     Kind
	Message  string
	Severity Severity
	Position Position
}

// resultBuilder accumulates findings during a single analyzer pass.
type resultBuilder struct {
	errors   []Finding
	warnings []Finding
}

func newResultBuilder() *resultBuilder {
	return &resultBuilder{
		errors:   make([]Finding, 0),
		warnings: make([]Finding, 0),
	}
}

func (b *resultBuilder) addError(kind Kind, message string) {
	b.errors = append(b.errors, Finding{Kind: kind, Message: message})
}

func (b *resultBuilder) addErrorAt(kind Kind, message string, pos Position) {
	b.errors = append(b.errors, Finding{Kind: kind, Message: message, Line: pos.Line, Column: pos.Column})
}

func (b *resultBuilder) addErrorWithSuggestion(kind Kind, message string, pos Position, suggestion string) {
	b.errors = append(b.errors, Finding{Kind: kind, Message: message, Line: pos.Line, Column: pos.Column, Suggestion: suggestion})
}

func (b *resultBuilder) addWarning(kind Kind, message string) {
	b.warnings = append(b.warnings, Finding{Kind: kind, Message: message})
}

func (b *resultBuilder) addWarningAt(kind Kind, message string, pos Position) {
	b.warnings = append(b.warnings, Finding{Kind: kind, Message: message, Line: pos.Line, Column: pos.Column})
}

// result finalizes the pass into an immutable ValidationResult.
func (b *resultBuilder) result() ValidationResult {
	return ValidationResult{
		IsValid:  len(b.errors) == 0,
		Errors:   b.errors,
		Warnings: b.warnings,
	}
}

// internalFailure is the single-error result produced when an analyzer
// panics. The failure is contained at the engine boundary and logged; it
// never propagates to the caller.
func internalFailure(kind Kind) ValidationResult {
	return ValidationResult{
		IsValid:  false,
		Errors:   []Finding{{Kind: kind, Message: "internal validation error occurred"}},
		Warnings: []Finding{},
	}
}
