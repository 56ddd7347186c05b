// Package validation implements template validation and provider
// compatibility scoring for prompt templates using {{variable}}
// placeholder syntax.
//
// # Architecture
//
// Validation is split across four independent analyzers plus an
// orchestrator:
//
//  1. Syntax Analyzer - placeholder well-formedness, brace balance,
//     nesting, performance heuristics
//  2. Variable Binder - declared variables vs. template usage
//  3. Security Scanner - injection, sensitive-data, and unsafe-content
//     pattern detection
//  4. Compatibility Checker - provider capability profiles and scoring
//
// Each analyzer can be invoked on its own through the Engine, or all
// together via Engine.Validate which concatenates findings in analyzer
// order.
//
// # Findings
//
// Analyzers report findings, never abort. A finding is either an error
// (the template must not ship) or a warning (advisory). Findings are
// append-only and never deduplicated: the same underlying defect may be
// reported by more than one analyzer, and the orchestrator preserves
// every occurrence. A result is valid exactly when it carries zero
// errors; warnings do not affect validity.
//
// # Fault Containment
//
// A panic inside any analyzer is contained by the orchestrator and
// converted into a single internal-error finding, so one misbehaving
// analyzer cannot take down a batch validation pass.
//
// # Basic Usage
//
//	reg := registry.New()
//	engine, err := validation.New(config.Default(), reg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result := engine.Validate(template, variables, "openai")
//	for _, f := range result.Errors {
//	    fmt.Println(f.Message)
//	}
//
// # Provider Comparison
//
//	rankings, err := engine.CompareProviders(ctx, template,
//	    []string{"openai", "anthropic", "meta"}, prober)
//
// CompareProviders validates and probes every candidate concurrently and
// returns a ranking sorted by score descending. Probes run under a
// per-probe timeout; a failed or timed-out probe lowers the provider's
// score but never fails the comparison.
//
// # Thread Safety
//
// Engine values are immutable after construction and safe for concurrent
// use. The capability registry handles its own synchronization.
package validation
