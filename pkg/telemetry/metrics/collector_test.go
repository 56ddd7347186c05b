package metrics

import (
	"testing"
	"time"

	"promptforge/callisto/pkg/config"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	return NewCollector(config.MetricsConfig{Enabled: true}, nil)
}

func TestCollector_Snapshot(t *testing.T) {
	c := newTestCollector(t)

	c.RecordValidation("syntax", true, time.Millisecond)
	c.RecordValidation("syntax", false, time.Millisecond)
	c.RecordValidation("variables", true, time.Millisecond)
	c.RecordFinding("SYNTAX_ERROR")
	c.RecordFinding("SYNTAX_ERROR")
	c.RecordInternalFailure("security")
	c.RecordScore("openai", 95)
	c.RecordProbe("openai", true, 10*time.Millisecond)
	c.RecordComparison(20 * time.Millisecond)

	totals := c.Snapshot()

	want := map[string]float64{
		"promptforge_callisto_validations_total":           3,
		"promptforge_callisto_validation_duration_seconds": 3,
		"promptforge_callisto_findings_total":              2,
		"promptforge_callisto_internal_failures_total":     1,
		"promptforge_callisto_compatibility_score":         1,
		"promptforge_callisto_probe_duration_seconds":      1,
		"promptforge_callisto_comparison_duration_seconds": 1,
	}
	for name, expected := range want {
		if got := totals[name]; got != expected {
			t.Errorf("%s = %g, want %g", name, got, expected)
		}
	}
}

func TestCollector_NilIsSafe(t *testing.T) {
	var c *Collector

	// None of these may panic on a nil collector.
	c.RecordValidation("syntax", true, time.Millisecond)
	c.RecordFinding("SYNTAX_ERROR")
	c.RecordScore("openai", 100)
	c.RecordComparison(time.Millisecond)

	if c.Snapshot() != nil {
		t.Error("Snapshot on nil collector should return nil")
	}
	if c.Registry() != nil {
		t.Error("Registry on nil collector should return nil")
	}
}

func TestCollector_DisabledRecordsNothing(t *testing.T) {
	c := NewCollector(config.MetricsConfig{Enabled: false}, nil)

	c.RecordValidation("syntax", true, time.Millisecond)
	c.RecordFinding("SYNTAX_ERROR")

	totals := c.Snapshot()
	if totals["promptforge_callisto_validations_total"] != 0 {
		t.Errorf("validations_total = %g with metrics disabled, want 0",
			totals["promptforge_callisto_validations_total"])
	}
	if totals["promptforge_callisto_findings_total"] != 0 {
		t.Errorf("findings_total = %g with metrics disabled, want 0",
			totals["promptforge_callisto_findings_total"])
	}
}
