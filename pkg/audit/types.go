package audit

import (
	"context"
	"time"

	"promptforge/callisto/pkg/validation"
)

// Record is an immutable audit record describing one validation verdict.
// Records never store the template text itself, only its SHA-256 hash,
// so audit databases can be retained without retaining prompt content.
type Record struct {
	// ID is a UUID assigned at recording time.
	ID string `json:"id"`

	// Timestamp is when the validation completed.
	Timestamp time.Time `json:"timestamp"`

	// TemplateHash is the hex-encoded SHA-256 hash of the template text.
	TemplateHash string `json:"template_hash"`

	// Provider is the provider the template was validated against.
	// Empty when no provider validation was requested.
	Provider string `json:"provider,omitempty"`

	// Valid reports whether the validation produced zero errors.
	Valid bool `json:"valid"`

	// ErrorCount is the number of error findings.
	ErrorCount int `json:"error_count"`

	// WarningCount is the number of warning findings.
	WarningCount int `json:"warning_count"`

	// Score is the compatibility score, or -1 when no provider
	// validation was requested.
	Score int `json:"score"`

	// Findings holds every error and warning finding, errors first.
	Findings []validation.Finding `json:"findings,omitempty"`
}

// Query filters audit records for retrieval and deletion.
type Query struct {
	// IDs restricts the query to an explicit set of record IDs.
	IDs []string

	// StartTime filters records at or after this time.
	StartTime *time.Time

	// EndTime filters records at or before this time.
	EndTime *time.Time

	// Provider filters records by provider ID.
	Provider string

	// TemplateHash filters records for one template.
	TemplateHash string

	// Valid filters by verdict when non-nil.
	Valid *bool

	// Limit caps the number of records returned. Default: 100.
	Limit int

	// Offset skips the first N matching records.
	Offset int
}

// Storage persists audit records. Implementations must be safe for
// concurrent use.
type Storage interface {
	// Store persists a single record.
	Store(ctx context.Context, record *Record) error

	// Query retrieves records matching the filters, newest first.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes records matching the filters and returns the
	// number deleted.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases resources held by the backend.
	Close() error
}
