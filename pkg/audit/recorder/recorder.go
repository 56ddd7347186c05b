package recorder

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"promptforge/callisto/pkg/audit"
	"promptforge/callisto/pkg/validation"
)

// Config contains configuration for the audit recorder.
type Config struct {
	// Enabled enables audit recording.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder records validation verdicts as audit records. Records are
// written asynchronously so recording never blocks validation calls;
// when the buffer is full the record is dropped and counted.
type Recorder struct {
	storage    audit.Storage
	config     *Config
	recordChan chan *audit.Record
	wg         sync.WaitGroup
	done       chan struct{}
	dropped    atomic.Int64
	logger     *slog.Logger
}

// NewRecorder creates a new audit recorder with the provided storage
// backend and configuration.
func NewRecorder(storage audit.Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.AsyncBuffer <= 0 {
		config.AsyncBuffer = DefaultConfig().AsyncBuffer
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultConfig().WriteTimeout
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *audit.Record, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "audit.recorder"),
	}

	// Start background worker to drain channel
	r.wg.Add(1)
	go r.worker()

	r.logger.Info("audit recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// Record builds an audit record from a validation result and enqueues it
// for async writing. score is the compatibility score, or -1 when no
// provider validation was requested.
//
// This method returns immediately and does not block on storage writes.
func (r *Recorder) Record(template, provider string, result validation.ValidationResult, score int) error {
	if !r.config.Enabled {
		return nil
	}

	record := r.buildRecord(template, provider, result, score)

	select {
	case r.recordChan <- record:
		r.logger.Debug("audit record enqueued",
			"record_id", record.ID,
			"template_hash", record.TemplateHash,
			"valid", record.Valid,
		)
	case <-r.done:
		r.logger.Warn("recorder shutting down, dropping record",
			"record_id", record.ID,
		)
		return audit.NewRecorderError(record.ID, context.Canceled)
	default:
		dropped := r.dropped.Add(1)
		r.logger.Error("audit record channel full, dropping record",
			"record_id", record.ID,
			"channel_capacity", r.config.AsyncBuffer,
			"dropped_total", dropped,
		)
		return audit.NewRecorderError(record.ID, context.DeadlineExceeded)
	}

	return nil
}

// Dropped returns the total number of records dropped due to a full
// buffer since the recorder was created.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close gracefully shuts down the recorder by draining the async channel
// and waiting for all pending writes to complete.
func (r *Recorder) Close() error {
	r.logger.Info("shutting down audit recorder")

	close(r.done)
	r.wg.Wait()

	if dropped := r.dropped.Load(); dropped > 0 {
		r.logger.Warn("audit recorder shut down with dropped records",
			"dropped_total", dropped,
		)
	} else {
		r.logger.Info("audit recorder shut down complete")
	}
	return nil
}

// worker is the background goroutine that drains the record channel and
// writes records to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			// Drain remaining records from channel before exit
			r.logger.Info("draining audit channel before shutdown",
				"pending_count", len(r.recordChan),
			)

			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					r.logger.Info("audit channel drained")
					return
				}
			}
		}
	}
}

// writeRecord writes a single audit record to storage.
func (r *Recorder) writeRecord(record *audit.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store audit record",
			"record_id", record.ID,
			"error", err,
		)
		return
	}

	duration := time.Since(start)

	r.logger.Debug("audit record written",
		"record_id", record.ID,
		"valid", record.Valid,
		"duration_ms", duration.Milliseconds(),
	)

	// Warn if write was slow
	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow audit write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}

// buildRecord constructs an audit record from a validation result.
func (r *Recorder) buildRecord(template, provider string, result validation.ValidationResult, score int) *audit.Record {
	findings := make([]validation.Finding, 0, len(result.Errors)+len(result.Warnings))
	findings = append(findings, result.Errors...)
	findings = append(findings, result.Warnings...)

	return &audit.Record{
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		TemplateHash: HashTemplate(template),
		Provider:     provider,
		Valid:        result.IsValid,
		ErrorCount:   len(result.Errors),
		WarningCount: len(result.Warnings),
		Score:        score,
		Findings:     findings,
	}
}
