package validation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"promptforge/callisto/pkg/config"
	"promptforge/callisto/pkg/registry"
	"promptforge/callisto/pkg/telemetry/metrics"
)

// ProbeResult is the outcome of probing one provider. Probes are supplied
// by the caller; the engine never performs network calls itself.
type ProbeResult struct {
	Success  bool          `json:"success"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// Prober probes a provider's availability on behalf of CompareProviders.
// Implementations must honor context cancellation; a probe that outlives
// its context is treated as failed.
type Prober interface {
	Probe(ctx context.Context, providerID string) ProbeResult
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, providerID string) ProbeResult

// Probe implements Prober.
func (f ProberFunc) Probe(ctx context.Context, providerID string) ProbeResult {
	return f(ctx, providerID)
}

// ProviderRanking is one entry in the ranked output of CompareProviders.
type ProviderRanking struct {
	ProviderID string           `json:"provider_id"`
	Score      int              `json:"score"`
	Result     ValidationResult `json:"result"`
	Probe      ProbeResult      `json:"probe"`
}

// Engine runs the four analyzers per the configured policy and aggregates
// their findings. All single-template operations are pure, synchronous
// computations over their inputs, the immutable config, and the current
// registry snapshot; Engine values are safe for concurrent use.
type Engine struct {
	cfg       config.ValidationConfig
	syntax    *SyntaxAnalyzer
	variables *VariableBinder
	security  *SecurityScanner
	compat    *CompatibilityChecker
	logger    *slog.Logger
	metrics   *metrics.Collector
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for contained analyzer failures.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics sets the metrics collector. A nil collector records nothing.
func WithMetrics(collector *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = collector }
}

// New creates a validation engine. cfg may be nil, in which case the
// default configuration is used. The registry must be constructed before
// the engine when provider validation is enabled; a nil registry reports
// registry.ErrNotInitialized.
func New(cfg *config.Config, reg *registry.Registry, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	config.ApplyDefaults(cfg)
	vc := cfg.Validation

	if vc.EnableProviderValidation && reg == nil {
		return nil, registry.ErrNotInitialized
	}

	level := SecurityLevel(vc.SecurityLevel)
	switch level {
	case LevelStrict, LevelModerate, LevelPermissive:
	default:
		return nil, fmt.Errorf("invalid security level %q", vc.SecurityLevel)
	}

	e := &Engine{
		cfg:       vc,
		syntax:    NewSyntaxAnalyzer(vc.MaxTemplateLength),
		variables: NewVariableBinder(vc.MaxVariableCount),
		security:  NewSecurityScanner(vc.EnableSecurityValidation, level),
		compat:    NewCompatibilityChecker(reg, vc.AllowedProviders, vc.EnableProviderValidation),
		logger:    slog.Default().With("component", "validation.engine"),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// ValidateSyntax validates placeholder syntax only.
func (e *Engine) ValidateSyntax(template string) ValidationResult {
	return e.run("syntax", KindSyntaxError, func() ValidationResult {
		return e.syntax.Validate(template)
	})
}

// ValidateVariables validates declared variables against template usage.
func (e *Engine) ValidateVariables(template string, variables []Variable) ValidationResult {
	return e.run("variables", KindInvalidVariable, func() ValidationResult {
		return e.variables.Validate(template, variables)
	})
}

// ValidateSecurity scans the template for security findings.
func (e *Engine) ValidateSecurity(template string) ValidationResult {
	return e.run("security", KindSecurityViolation, func() ValidationResult {
		return e.security.Validate(template)
	})
}

// ValidateCompatibility validates the template against one provider's
// capability profile.
func (e *Engine) ValidateCompatibility(template, providerID string) ValidationResult {
	return e.run("compatibility", KindInvalidVariable, func() ValidationResult {
		return e.compat.Validate(template, providerID)
	})
}

// Validate runs every analyzer and aggregates their findings. The syntax,
// variable, and security analyzers always run; the compatibility checker
// runs only when providerID is non-empty. Findings are concatenated in
// analyzer order (syntax, variables, security, compatibility), each
// analyzer's internal order preserved.
func (e *Engine) Validate(template string, variables []Variable, providerID string) ValidationResult {
	results := []ValidationResult{
		e.ValidateSyntax(template),
		e.ValidateVariables(template, variables),
		e.ValidateSecurity(template),
	}
	if providerID != "" {
		results = append(results, e.ValidateCompatibility(template, providerID))
	}

	combined := newResultBuilder()
	for _, r := range results {
		combined.errors = append(combined.errors, r.Errors...)
		combined.warnings = append(combined.warnings, r.Warnings...)
	}
	return combined.result()
}

// Score computes the compatibility score of a template for one provider
// without probing. The score maps to [0, 100].
func (e *Engine) Score(template, providerID string) int {
	return e.compat.scoreResult(e.ValidateCompatibility(template, providerID), providerID, false)
}

// CompareProviders ranks candidate providers for a template. It fans out
// one compatibility check plus one probe per candidate as independent
// concurrent tasks, joins them, and sorts by score descending; ties keep
// input order.
//
// Each probe runs under a per-probe timeout (config probe_timeout); a probe
// that does not complete within the bound is treated as failed and
// contributes the fixed score penalty. A nil prober skips probing with no
// penalty. If ctx is cancelled the comparison is abandoned: in-flight
// probes are released and no partial ranking is returned.
func (e *Engine) CompareProviders(ctx context.Context, template string, providerIDs []string, prober Prober) ([]ProviderRanking, error) {
	if !e.cfg.EnableProviderValidation {
		return nil, fmt.Errorf("provider validation is disabled")
	}

	start := time.Now()
	rankings := make([]ProviderRanking, len(providerIDs))

	var wg sync.WaitGroup
	for i, id := range providerIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()

			result := e.ValidateCompatibility(template, id)
			probe := e.runProbe(ctx, id, prober)

			rankings[i] = ProviderRanking{
				ProviderID: id,
				Score:      e.compat.scoreResult(result, id, !probe.Success),
				Result:     result,
				Probe:      probe,
			}
		}(i, id)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].Score > rankings[j].Score
	})

	for _, r := range rankings {
		e.metrics.RecordScore(r.ProviderID, r.Score)
	}
	e.metrics.RecordComparison(time.Since(start))

	return rankings, nil
}

// runProbe executes one provider probe under the configured timeout.
// The probe runs in its own goroutine so a prober that ignores its context
// cannot stall the comparison past the bound.
func (e *Engine) runProbe(ctx context.Context, providerID string, prober Prober) ProbeResult {
	if prober == nil {
		return ProbeResult{Success: true}
	}

	timeout := e.cfg.ProbeTimeout
	if timeout <= 0 {
		timeout = config.DefaultProbeTimeout
	}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	done := make(chan ProbeResult, 1)
	go func() {
		done <- prober.Probe(probeCtx, providerID)
	}()

	var result ProbeResult
	select {
	case result = <-done:
	case <-probeCtx.Done():
		result = ProbeResult{
			Success:  false,
			Duration: time.Since(start),
			Error:    probeCtx.Err().Error(),
		}
	}

	e.metrics.RecordProbe(providerID, result.Success, result.Duration)
	return result
}

// run executes one analyzer pass with fault containment: a panic inside an
// analyzer is logged and converted into a single internal-error result
// carrying the analyzer's default finding kind. It never propagates.
func (e *Engine) run(analyzer string, defaultKind Kind, fn func() ValidationResult) (result ValidationResult) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("analyzer failure contained",
				"analyzer", analyzer,
				"panic", fmt.Sprint(r),
			)
			e.metrics.RecordInternalFailure(analyzer)
			result = internalFailure(defaultKind)
		}

		e.metrics.RecordValidation(analyzer, result.IsValid, time.Since(start))
		for _, f := range result.Errors {
			e.metrics.RecordFinding(string(f.Kind))
		}
		for _, f := range result.Warnings {
			e.metrics.RecordFinding(string(f.Kind))
		}
	}()

	return fn()
}
