// Callisto is a validation and compatibility scoring engine for prompt
// templates.
//
// It validates prompt templates using {{variable}} placeholder syntax,
// providing:
//   - Placeholder syntax validation (brace balance, nesting, naming)
//   - Variable definition and usage checking
//   - Security scanning (injection, sensitive data, unsafe content)
//   - Provider compatibility checking and scoring
//   - Multi-provider comparison and ranking
//
// Usage:
//
//	# Validate a template file
//	callisto validate template.txt
//
//	# Validate against a provider with declared variables
//	callisto validate template.txt --variables vars.yaml --provider openai
//
//	# Rank providers for a template
//	callisto compare template.txt --providers openai,anthropic,meta
//
//	# List registered provider profiles
//	callisto providers list
//
//	# Show version information
//	callisto version
package main

func main() {
	Execute()
}
