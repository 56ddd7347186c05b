package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"promptforge/callisto/pkg/audit"
	"promptforge/callisto/pkg/validation"
)

func newTestSQLiteStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	cfg := DefaultSQLiteConfig()
	cfg.Path = filepath.Join(t.TempDir(), "audit.db")

	s, err := NewSQLiteStorage(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteStorage failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStorage_StoreAndQuery(t *testing.T) {
	s := newTestSQLiteStorage(t)
	ctx := context.Background()

	rec := &audit.Record{
		ID:           "rec-1",
		Timestamp:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		TemplateHash: "abc123",
		Provider:     "openai",
		Valid:        false,
		ErrorCount:   1,
		WarningCount: 1,
		Score:        75,
		Findings: []validation.Finding{
			{Kind: validation.KindSyntaxError, Message: "empty variable placeholder found", Line: 1, Column: 1},
			{Kind: validation.KindUnusedVariable, Message: "declared variable is never used: x"},
		},
	}
	if err := s.Store(ctx, rec); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	records, err := s.Query(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	got := records[0]
	if got.ID != "rec-1" || got.TemplateHash != "abc123" || got.Provider != "openai" {
		t.Errorf("record = %+v", got)
	}
	if got.Valid || got.ErrorCount != 1 || got.WarningCount != 1 || got.Score != 75 {
		t.Errorf("record = %+v", got)
	}
	if len(got.Findings) != 2 {
		t.Fatalf("got %d findings, want 2", len(got.Findings))
	}
	if got.Findings[0].Kind != validation.KindSyntaxError || got.Findings[0].Line != 1 {
		t.Errorf("first finding = %+v", got.Findings[0])
	}
}

// TestSQLiteStorage_EmptyProvider tests the NULL round trip for records
// validated without a provider.
func TestSQLiteStorage_EmptyProvider(t *testing.T) {
	s := newTestSQLiteStorage(t)
	ctx := context.Background()

	rec := &audit.Record{ID: "rec-1", Timestamp: time.Now().UTC(), TemplateHash: "h", Valid: true, Score: -1}
	if err := s.Store(ctx, rec); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	records, err := s.Query(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if records[0].Provider != "" {
		t.Errorf("Provider = %q, want empty", records[0].Provider)
	}
	if records[0].Score != -1 {
		t.Errorf("Score = %d, want -1", records[0].Score)
	}
}

func TestSQLiteStorage_QueryFilters(t *testing.T) {
	s := newTestSQLiteStorage(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	seedRecords(t, s, 6, base)

	t.Run("provider", func(t *testing.T) {
		records, err := s.Query(ctx, &audit.Query{Provider: "openai"})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(records) != 3 {
			t.Errorf("got %d records, want 3", len(records))
		}
	})

	t.Run("valid flag", func(t *testing.T) {
		valid := true
		records, err := s.Query(ctx, &audit.Query{Valid: &valid})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(records) != 3 {
			t.Errorf("got %d records, want 3", len(records))
		}
	})

	t.Run("time range newest first", func(t *testing.T) {
		start := base.Add(2 * time.Minute)
		records, err := s.Query(ctx, &audit.Query{StartTime: &start})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(records) != 4 {
			t.Fatalf("got %d records, want 4", len(records))
		}
		if records[0].ID != "rec-5" {
			t.Errorf("first record = %s, want rec-5", records[0].ID)
		}
	})

	t.Run("limit and offset", func(t *testing.T) {
		records, err := s.Query(ctx, &audit.Query{Limit: 2, Offset: 2})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(records) != 2 || records[0].ID != "rec-3" {
			t.Errorf("got %d records starting at %s, want 2 starting at rec-3", len(records), records[0].ID)
		}
	})

	t.Run("id set", func(t *testing.T) {
		records, err := s.Query(ctx, &audit.Query{IDs: []string{"rec-0", "rec-5"}})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("got %d records, want 2", len(records))
		}
		if records[0].ID != "rec-5" || records[1].ID != "rec-0" {
			t.Errorf("records = %s, %s, want rec-5, rec-0", records[0].ID, records[1].ID)
		}
	})
}

func TestSQLiteStorage_DeleteByIDs(t *testing.T) {
	s := newTestSQLiteStorage(t)
	ctx := context.Background()
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// All three records share one timestamp.
	for _, id := range []string{"a", "b", "c"} {
		rec := &audit.Record{ID: id, Timestamp: ts, TemplateHash: "h", Valid: true, Score: -1}
		if err := s.Store(ctx, rec); err != nil {
			t.Fatalf("Store failed: %v", err)
		}
	}

	deleted, err := s.Delete(ctx, &audit.Query{IDs: []string{"a", "c"}})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted %d records, want 2", deleted)
	}

	remaining, _ := s.Query(ctx, &audit.Query{})
	if len(remaining) != 1 || remaining[0].ID != "b" {
		t.Errorf("got %d remaining records, want only record b", len(remaining))
	}
}

func TestSQLiteStorage_CountAndDelete(t *testing.T) {
	s := newTestSQLiteStorage(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedRecords(t, s, 6, base)

	count, err := s.Count(ctx, &audit.Query{})
	if err != nil || count != 6 {
		t.Fatalf("Count = %d, %v, want 6", count, err)
	}

	cutoff := base.Add(2 * time.Minute)
	deleted, err := s.Delete(ctx, &audit.Query{EndTime: &cutoff})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("deleted %d records, want 3", deleted)
	}

	count, _ = s.Count(ctx, &audit.Query{})
	if count != 3 {
		t.Errorf("Count after delete = %d, want 3", count)
	}
}

// TestSQLiteStorage_Reopen tests that records survive a close and reopen
// of the same database file.
func TestSQLiteStorage_Reopen(t *testing.T) {
	cfg := DefaultSQLiteConfig()
	cfg.Path = filepath.Join(t.TempDir(), "audit.db")
	ctx := context.Background()

	s, err := NewSQLiteStorage(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteStorage failed: %v", err)
	}
	rec := &audit.Record{ID: "persist", Timestamp: time.Now().UTC(), TemplateHash: "h", Valid: true, Score: -1}
	if err := s.Store(ctx, rec); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s2, err := NewSQLiteStorage(cfg)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()

	count, err := s2.Count(ctx, &audit.Query{})
	if err != nil || count != 1 {
		t.Errorf("Count after reopen = %d, %v, want 1", count, err)
	}
}
