package storage

import (
	"context"
	"sort"
	"sync"

	"promptforge/callisto/pkg/audit"
)

// MemoryStorage implements the audit.Storage interface using an in-memory
// map. Intended for testing only.
type MemoryStorage struct {
	records map[string]*audit.Record
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*audit.Record),
	}
}

// Store persists an audit record to memory.
func (s *MemoryStorage) Store(ctx context.Context, record *audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy to avoid mutation
	recordCopy := *record
	s.records[record.ID] = &recordCopy

	return nil
}

// Query retrieves audit records matching the query filters, newest first.
func (s *MemoryStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []*audit.Record{}
	for _, record := range s.records {
		if s.matches(record, query) {
			recordCopy := *record
			matched = append(matched, &recordCopy)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	if query.Offset > 0 {
		if query.Offset >= len(matched) {
			return []*audit.Record{}, nil
		}
		matched = matched[query.Offset:]
	}

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

// Count returns the number of audit records matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if s.matches(record, query) {
			count++
		}
	}

	return count, nil
}

// Delete removes audit records matching the query filters.
// Returns the number of records deleted.
func (s *MemoryStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, record := range s.records {
		if s.matches(record, query) {
			delete(s.records, id)
			deleted++
		}
	}

	return deleted, nil
}

// Close releases resources held by the storage backend.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*audit.Record)
	return nil
}

// matches reports whether a record passes the query filters.
func (s *MemoryStorage) matches(record *audit.Record, query *audit.Query) bool {
	if len(query.IDs) > 0 {
		found := false
		for _, id := range query.IDs {
			if id == record.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if query.StartTime != nil && record.Timestamp.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && record.Timestamp.After(*query.EndTime) {
		return false
	}
	if query.Provider != "" && record.Provider != query.Provider {
		return false
	}
	if query.TemplateHash != "" && record.TemplateHash != query.TemplateHash {
		return false
	}
	if query.Valid != nil && record.Valid != *query.Valid {
		return false
	}
	return true
}
