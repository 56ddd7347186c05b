// Package audit records validation verdicts as immutable audit records
// for later review.
//
// # Architecture
//
// The audit system consists of three layers:
//
//  1. Recorder - builds records from validation results and enqueues them
//  2. Storage Backend - persists records (SQLite, in-memory)
//  3. Retention - prunes records past the retention period on a schedule
//
// # Records
//
// Each record captures the verdict of one validation pass: the SHA-256
// hash of the template (never the template text), the provider validated
// against, validity, error and warning counts, the compatibility score,
// and the full finding list as JSON.
//
// # Recording Flow
//
// Records are written asynchronously so recording never blocks a
// validation call:
//
//	Validation Result
//	     ↓
//	Recorder (async channel)
//	     ↓
//	Background Worker
//	     ↓
//	Storage Backend (SQLite, WAL mode)
//
// When the channel is full the record is dropped and counted rather than
// blocking the caller.
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	rec := recorder.NewRecorder(store, nil)
//	defer rec.Close()
//
//	rec.Record(template, "openai", result, score)
//
// # Retention
//
// Old records can be pruned automatically:
//
//	pruner := retention.NewPruner(store, &retention.Config{
//	    RetentionDays: 90,
//	    PruneSchedule: "0 3 * * *",
//	})
//	pruner.Start(ctx)
//	defer pruner.Stop()
//
// # Thread Safety
//
// All audit types are safe for concurrent use.
package audit
