package validation

import (
	"fmt"
	"regexp"
)

// usagePattern matches a simple {{identifier}} reference with no internal
// whitespace. Deliberately tighter than the syntax analyzer's scan: only
// exact references participate in the usage cross-check.
var usagePattern = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*)\}\}`)

// VariableBinder cross-checks declared variable metadata against template
// usage: definitions, duplicates, usage/definition mismatch, and type-aware
// rule compatibility.
type VariableBinder struct {
	maxVariableCount int
}

// NewVariableBinder creates a variable binder with the given variable
// count cap.
func NewVariableBinder(maxVariableCount int) *VariableBinder {
	return &VariableBinder{maxVariableCount: maxVariableCount}
}

// Validate checks the declared variables and their usage in the template.
func (vb *VariableBinder) Validate(template string, variables []Variable) ValidationResult {
	b := newResultBuilder()

	if len(variables) > vb.maxVariableCount {
		b.addError(KindInvalidVariable,
			fmt.Sprintf("too many variables: %d declared, maximum is %d", len(variables), vb.maxVariableCount))
	}

	seen := make(map[string]bool, len(variables))
	for _, v := range variables {
		vb.checkDefinition(v, b)

		if v.Name == "" {
			continue
		}
		if seen[v.Name] {
			b.addError(KindInvalidVariable, fmt.Sprintf("duplicate variable name: %s", v.Name))
			continue
		}
		seen[v.Name] = true
	}

	vb.checkUsage(template, variables, b)

	return b.result()
}

// checkDefinition validates a single variable declaration.
func (vb *VariableBinder) checkDefinition(v Variable, b *resultBuilder) {
	if v.Name == "" {
		b.addError(KindInvalidVariable, "variable name cannot be empty")
	} else if !identifierPattern.MatchString(v.Name) {
		b.addError(KindInvalidVariable, fmt.Sprintf("invalid variable name: %q", v.Name))
	}

	if !validTypes[v.Type] {
		b.addError(KindInvalidVariable,
			fmt.Sprintf("variable %q has invalid type %q; valid types are string, number, boolean, array, object", v.Name, v.Type))
	}

	if v.Description == "" {
		b.addError(KindInvalidVariable, fmt.Sprintf("variable %q must have a description", v.Name))
	}

	if v.DefaultValue != nil {
		if actual := runtimeType(v.DefaultValue); validTypes[v.Type] && actual != v.Type {
			b.addError(KindInvalidVariable,
				fmt.Sprintf("variable %q default value has type %s, declared type is %s", v.Name, actual, v.Type))
		}
	}

	for _, r := range v.Rules {
		vb.checkRule(v, r, b)
	}
}

// checkRule validates one rule against the variable's declared type.
// MinLength, MaxLength and Pattern apply only to string variables; Min and
// Max apply only to number variables; Enum applies to any type.
func (vb *VariableBinder) checkRule(v Variable, r Rule, b *resultBuilder) {
	if r.Kind == "" || r.Value == nil {
		b.addError(KindInvalidVariable,
			fmt.Sprintf("variable %q has an invalid validation rule: both kind and value are required", v.Name))
		return
	}

	switch r.Kind {
	case RuleMinLength, RuleMaxLength, RulePattern:
		if v.Type != TypeString {
			b.addError(KindInvalidVariable,
				fmt.Sprintf("rule %s on variable %q requires type string, got %s", r.Kind, v.Name, v.Type))
		}
	case RuleMin, RuleMax:
		if v.Type != TypeNumber {
			b.addError(KindInvalidVariable,
				fmt.Sprintf("rule %s on variable %q requires type number, got %s", r.Kind, v.Name, v.Type))
		}
	case RuleEnum:
		// Enum applies to any type.
	default:
		b.addError(KindInvalidVariable,
			fmt.Sprintf("variable %q has unknown rule kind %q", v.Name, r.Kind))
	}
}

// checkUsage extracts every simple {{identifier}} reference and cross-checks
// it against the declared set. References to undeclared names are errors
// with a location; declared variables never referenced are warnings without
// one.
func (vb *VariableBinder) checkUsage(template string, variables []Variable, b *resultBuilder) {
	declared := make(map[string]bool, len(variables))
	for _, v := range variables {
		if v.Name != "" {
			declared[v.Name] = true
		}
	}

	used := make(map[string]bool)
	for _, m := range usagePattern.FindAllStringSubmatchIndex(template, -1) {
		name := template[m[2]:m[3]]
		used[name] = true
		if !declared[name] {
			b.addErrorAt(KindMissingVariable,
				fmt.Sprintf("variable %q is used in the template but not defined", name),
				positionAt(template, m[0]))
		}
	}

	for _, v := range variables {
		if v.Name != "" && !used[v.Name] {
			b.addWarning(KindUnusedVariable,
				fmt.Sprintf("variable %q is defined but never used", v.Name))
		}
	}
}

// runtimeType classifies a Go value into the variable type system.
// Integers and floats both map to number; unrecognized values report as an
// empty type so they never silently pass the declared-type check.
func runtimeType(value any) VarType {
	switch value.(type) {
	case string:
		return TypeString
	case bool:
		return TypeBoolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return TypeNumber
	case []any, []string, []int, []float64:
		return TypeArray
	case map[string]any, map[any]any:
		return TypeObject
	default:
		return VarType("")
	}
}
