package recorder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"promptforge/callisto/pkg/audit"
	"promptforge/callisto/pkg/audit/storage"
	"promptforge/callisto/pkg/validation"
)

func TestHashTemplate(t *testing.T) {
	h := HashTemplate("Hello {{name}}")
	if len(h) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(h))
	}
	if h != HashTemplate("Hello {{name}}") {
		t.Error("hashing is not deterministic")
	}
	if h == HashTemplate("Hello {{other}}") {
		t.Error("distinct templates hashed identically")
	}
	if HashTemplate("") != "" {
		t.Error("empty template should hash to empty string")
	}
	if !strings.EqualFold(h, strings.ToLower(h)) {
		t.Error("hash should be lowercase hex")
	}
}

func TestHashTemplate_TruncatesLargeInput(t *testing.T) {
	base := strings.Repeat("a", MaxHashSize)
	if HashTemplate(base+"tail") != HashTemplate(base+"different") {
		t.Error("bytes past the cap should not affect the hash")
	}
	if HashTemplate(base) == HashTemplate(base[:MaxHashSize-1]) {
		t.Error("bytes inside the cap must affect the hash")
	}
}

func invalidResult() validation.ValidationResult {
	return validation.ValidationResult{
		IsValid: false,
		Errors: []validation.Finding{
			{Kind: validation.KindSyntaxError, Message: "empty variable placeholder found", Line: 1, Column: 1},
		},
		Warnings: []validation.Finding{
			{Kind: validation.KindUnusedVariable, Message: "declared variable is never used: x"},
		},
	}
}

func TestRecorder_RecordAndClose(t *testing.T) {
	mem := storage.NewMemoryStorage()
	r := NewRecorder(mem, DefaultConfig())

	if err := r.Record("{{}}", "openai", invalidResult(), 80); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	records, err := mem.Query(context.Background(), &audit.Query{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records after drain, want 1", len(records))
	}

	rec := records[0]
	if rec.ID == "" {
		t.Error("record has no id")
	}
	if rec.TemplateHash != HashTemplate("{{}}") {
		t.Errorf("TemplateHash = %q", rec.TemplateHash)
	}
	if rec.Provider != "openai" || rec.Valid || rec.Score != 80 {
		t.Errorf("record = %+v", rec)
	}
	if rec.ErrorCount != 1 || rec.WarningCount != 1 {
		t.Errorf("counts = %d/%d, want 1/1", rec.ErrorCount, rec.WarningCount)
	}

	// Findings carry errors first, then warnings.
	if len(rec.Findings) != 2 {
		t.Fatalf("got %d findings, want 2", len(rec.Findings))
	}
	if rec.Findings[0].Kind != validation.KindSyntaxError {
		t.Errorf("first finding = %+v", rec.Findings[0])
	}
	if rec.Findings[1].Kind != validation.KindUnusedVariable {
		t.Errorf("second finding = %+v", rec.Findings[1])
	}
}

func TestRecorder_Disabled(t *testing.T) {
	mem := storage.NewMemoryStorage()
	r := NewRecorder(mem, &Config{Enabled: false})

	if err := r.Record("x", "", validation.ValidationResult{IsValid: true}, -1); err != nil {
		t.Fatalf("Record on disabled recorder failed: %v", err)
	}
	r.Close()

	count, _ := mem.Count(context.Background(), &audit.Query{})
	if count != 0 {
		t.Errorf("disabled recorder stored %d records", count)
	}
}

// blockingStorage blocks every Store call until released and signals each
// entry, so tests can back the recorder's buffer up deterministically.
type blockingStorage struct {
	*storage.MemoryStorage
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStorage) Store(ctx context.Context, record *audit.Record) error {
	b.entered <- struct{}{}
	<-b.release
	return b.MemoryStorage.Store(ctx, record)
}

func TestRecorder_DropsWhenBufferFull(t *testing.T) {
	blocked := &blockingStorage{
		MemoryStorage: storage.NewMemoryStorage(),
		entered:       make(chan struct{}, 4),
		release:       make(chan struct{}),
	}
	r := NewRecorder(blocked, &Config{Enabled: true, AsyncBuffer: 1, WriteTimeout: time.Second})

	result := validation.ValidationResult{IsValid: true}

	// First record: picked up by the worker, which blocks in Store.
	if err := r.Record("one", "", result, -1); err != nil {
		t.Fatalf("first Record failed: %v", err)
	}
	select {
	case <-blocked.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never dequeued the first record")
	}

	// Second record fills the now-empty buffer.
	if err := r.Record("two", "", result, -1); err != nil {
		t.Fatalf("second Record failed: %v", err)
	}

	// Buffer now holds one record and the worker is blocked, so the next
	// enqueue must drop.
	err := r.Record("three", "", result, -1)
	if err == nil {
		t.Fatal("expected a drop error on a full buffer")
	}
	var recErr *audit.RecorderError
	if !errors.As(err, &recErr) {
		t.Errorf("error type = %T, want *audit.RecorderError", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want it to wrap context.DeadlineExceeded", err)
	}
	if r.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", r.Dropped())
	}

	close(blocked.release)
	if err := r.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	// Both surviving records land after the drain.
	count, _ := blocked.MemoryStorage.Count(context.Background(), &audit.Query{})
	if count != 2 {
		t.Errorf("stored %d records, want 2", count)
	}
}

func TestRecorder_NilConfigUsesDefaults(t *testing.T) {
	r := NewRecorder(storage.NewMemoryStorage(), nil)
	defer r.Close()

	if r.config.AsyncBuffer != 1000 || r.config.WriteTimeout != 5*time.Second {
		t.Errorf("config = %+v", r.config)
	}
	if !r.config.Enabled {
		t.Error("default config should be enabled")
	}
}
