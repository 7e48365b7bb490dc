package fxrates

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fxrates/internal/interfaces"
)

// ProgressTracker persists job lifecycle state and per-currency retry
// counters in the shared key/value cache, so multiple orchestrator
// processes (or goroutines) observe a consistent view of in-flight work.
type ProgressTracker struct {
	storage interfaces.KeyValueStorage
	logger  arbor.ILogger
}

// NewProgressTracker creates a tracker backed by the given KV storage.
func NewProgressTracker(storage interfaces.KeyValueStorage, logger arbor.ILogger) *ProgressTracker {
	return &ProgressTracker{storage: storage, logger: logger}
}

func jobKey(jobID string) string { return "job:" + jobID }

func retryKey(jobID, code string) string { return "retry:" + jobID + ":" + code }

// StartJob records a new job in the "started" state.
func (t *ProgressTracker) StartJob(ctx context.Context, jobID string) error {
	record := &JobRecord{
		JobID:     jobID,
		Status:    JobStatusStarted,
		StartTime: time.Now().UTC(),
	}
	return t.saveJob(ctx, record)
}

// MarkRunning transitions a job to the "running" state.
func (t *ProgressTracker) MarkRunning(ctx context.Context, jobID string) error {
	record, err := t.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	record.Status = JobStatusRunning
	return t.saveJob(ctx, record)
}

// RecordCompleted appends a successfully-scraped currency code to the job.
// Idempotent: re-recording a code already marked complete (e.g. a retry
// landing in the same job) is a no-op.
func (t *ProgressTracker) RecordCompleted(ctx context.Context, jobID, code string) error {
	record, err := t.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if containsCode(record.Completed, code) {
		return nil
	}
	record.Completed = append(record.Completed, code)
	return t.saveJob(ctx, record)
}

// RecordFailed appends a failed currency code to the job. Idempotent, same
// as RecordCompleted.
func (t *ProgressTracker) RecordFailed(ctx context.Context, jobID, code string) error {
	record, err := t.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if containsCode(record.Failed, code) {
		return nil
	}
	record.Failed = append(record.Failed, code)
	return t.saveJob(ctx, record)
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

// FinishJob transitions a job to its terminal state and stamps duration.
func (t *ProgressTracker) FinishJob(ctx context.Context, jobID string, failed bool) error {
	record, err := t.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	record.EndTime = time.Now().UTC()
	record.DurationSeconds = record.EndTime.Sub(record.StartTime).Seconds()
	if failed {
		record.Status = JobStatusFailed
	} else {
		record.Status = JobStatusCompleted
	}
	return t.saveJob(ctx, record)
}

// GetJob retrieves the current job record.
func (t *ProgressTracker) GetJob(ctx context.Context, jobID string) (*JobRecord, error) {
	value, err := t.storage.Get(ctx, jobKey(jobID))
	if err != nil {
		return nil, fmt.Errorf("failed to get job %s: %w", jobID, err)
	}
	var record JobRecord
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		return nil, fmt.Errorf("failed to decode job record %s: %w", jobID, err)
	}
	return &record, nil
}

func (t *ProgressTracker) saveJob(ctx context.Context, record *JobRecord) error {
	encoded, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode job record %s: %w", record.JobID, err)
	}
	if err := t.storage.Set(ctx, jobKey(record.JobID), string(encoded), "scraping job progress"); err != nil {
		return fmt.Errorf("failed to persist job record %s: %w", record.JobID, err)
	}
	return nil
}

// MaxSingleCurrencyRetries bounds how many times a single currency may be
// retried under the same job before the orchestrator gives up on it.
const MaxSingleCurrencyRetries = 3

// ShouldRetryCurrency atomically increments the retry counter for
// (jobID, code) and reports whether another retry is still allowed. This
// replaces a non-atomic read-then-write with a single bounded increment
// transaction, so two goroutines racing to retry the same currency under
// the same job can't both observe "under the limit" and both proceed.
func (t *ProgressTracker) ShouldRetryCurrency(ctx context.Context, jobID, code string) (bool, error) {
	allowed, _, err := t.storage.IncrementBounded(ctx, retryKey(jobID, code), MaxSingleCurrencyRetries)
	if err != nil {
		return false, fmt.Errorf("failed to check retry eligibility for %s/%s: %w", jobID, code, err)
	}
	return allowed, nil
}

// RecordRetryIncrement mirrors the retry count onto the job record for
// observability; ShouldRetryCurrency is the source of truth for the limit.
func (t *ProgressTracker) RecordRetryIncrement(ctx context.Context, jobID string) error {
	record, err := t.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	record.RetryCount++
	return t.saveJob(ctx, record)
}
