package storage

import (
	"context"
	"strconv"
	"testing"
	"time"

	"promptforge/callisto/pkg/audit"
)

// seedRecords stores n records one minute apart, oldest first. IDs are
// "rec-0" (oldest) through "rec-n-1" (newest).
func seedRecords(t *testing.T, s audit.Storage, n int, base time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		rec := &audit.Record{
			ID:           "rec-" + strconv.Itoa(i),
			Timestamp:    base.Add(time.Duration(i) * time.Minute),
			TemplateHash: "hash-" + strconv.Itoa(i%2),
			Provider:     []string{"openai", "anthropic"}[i%2],
			Valid:        i%2 == 0,
			Score:        -1,
		}
		if err := s.Store(context.Background(), rec); err != nil {
			t.Fatalf("Store failed: %v", err)
		}
	}
}

func TestMemoryStorage_QueryOrdering(t *testing.T) {
	s := NewMemoryStorage()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedRecords(t, s, 5, base)

	records, err := s.Query(context.Background(), &audit.Query{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("got %d records, want 5", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.After(records[i-1].Timestamp) {
			t.Fatal("records are not newest first")
		}
	}
	if records[0].ID != "rec-4" {
		t.Errorf("newest record = %s, want rec-4", records[0].ID)
	}
}

func TestMemoryStorage_QueryFilters(t *testing.T) {
	s := NewMemoryStorage()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedRecords(t, s, 6, base)
	ctx := context.Background()

	t.Run("provider", func(t *testing.T) {
		records, _ := s.Query(ctx, &audit.Query{Provider: "anthropic"})
		if len(records) != 3 {
			t.Fatalf("got %d records, want 3", len(records))
		}
		for _, r := range records {
			if r.Provider != "anthropic" {
				t.Errorf("record %s has provider %q", r.ID, r.Provider)
			}
		}
	})

	t.Run("template hash", func(t *testing.T) {
		records, _ := s.Query(ctx, &audit.Query{TemplateHash: "hash-0"})
		if len(records) != 3 {
			t.Errorf("got %d records, want 3", len(records))
		}
	})

	t.Run("valid flag", func(t *testing.T) {
		valid := false
		records, _ := s.Query(ctx, &audit.Query{Valid: &valid})
		if len(records) != 3 {
			t.Fatalf("got %d records, want 3", len(records))
		}
		for _, r := range records {
			if r.Valid {
				t.Errorf("record %s is valid", r.ID)
			}
		}
	})

	t.Run("time range", func(t *testing.T) {
		start := base.Add(1 * time.Minute)
		end := base.Add(3 * time.Minute)
		records, _ := s.Query(ctx, &audit.Query{StartTime: &start, EndTime: &end})
		if len(records) != 3 {
			t.Errorf("got %d records, want 3 (inclusive bounds)", len(records))
		}
	})

	t.Run("combined", func(t *testing.T) {
		records, _ := s.Query(ctx, &audit.Query{Provider: "openai", TemplateHash: "hash-1"})
		if len(records) != 0 {
			t.Errorf("got %d records, want 0 (filters conjoin)", len(records))
		}
	})

	t.Run("id set", func(t *testing.T) {
		records, _ := s.Query(ctx, &audit.Query{IDs: []string{"rec-1", "rec-4", "no-such-id"}})
		if len(records) != 2 {
			t.Fatalf("got %d records, want 2", len(records))
		}
		for _, r := range records {
			if r.ID != "rec-1" && r.ID != "rec-4" {
				t.Errorf("unexpected record %s", r.ID)
			}
		}
	})
}

// TestMemoryStorage_DeleteByIDs tests that ID-set deletion leaves records
// sharing a timestamp with the deleted ones untouched.
func TestMemoryStorage_DeleteByIDs(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for _, id := range []string{"a", "b", "c"} {
		s.Store(ctx, &audit.Record{ID: id, Timestamp: ts, Score: -1})
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
		t.Errorf("remaining = %v, want only record b", remaining)
	}
}

func TestMemoryStorage_LimitOffset(t *testing.T) {
	s := NewMemoryStorage()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedRecords(t, s, 10, base)
	ctx := context.Background()

	records, _ := s.Query(ctx, &audit.Query{Limit: 3})
	if len(records) != 3 || records[0].ID != "rec-9" {
		t.Errorf("limited query = %d records starting at %s", len(records), records[0].ID)
	}

	records, _ = s.Query(ctx, &audit.Query{Limit: 3, Offset: 3})
	if len(records) != 3 || records[0].ID != "rec-6" {
		t.Errorf("offset query = %d records starting at %s", len(records), records[0].ID)
	}

	records, _ = s.Query(ctx, &audit.Query{Offset: 99})
	if len(records) != 0 {
		t.Errorf("past-the-end offset returned %d records", len(records))
	}
}

func TestMemoryStorage_CountAndDelete(t *testing.T) {
	s := NewMemoryStorage()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedRecords(t, s, 6, base)
	ctx := context.Background()

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

// TestMemoryStorage_StoreCopies tests that callers cannot mutate stored
// records after the fact.
func TestMemoryStorage_StoreCopies(t *testing.T) {
	s := NewMemoryStorage()
	rec := &audit.Record{ID: "a", Timestamp: time.Now(), Provider: "openai"}
	s.Store(context.Background(), rec)

	rec.Provider = "mutated"

	got, _ := s.Query(context.Background(), &audit.Query{})
	if got[0].Provider != "openai" {
		t.Errorf("stored record provider = %q, caller mutation leaked", got[0].Provider)
	}
}

func TestMemoryStorage_Close(t *testing.T) {
	s := NewMemoryStorage()
	seedRecords(t, s, 3, time.Now())

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	count, _ := s.Count(context.Background(), &audit.Query{})
	if count != 0 {
		t.Errorf("Count after Close = %d, want 0", count)
	}
}
