package fxrates

import "time"

// Currency is a known ISO currency, the unit the scraper orchestrator
// schedules sweeps over.
type Currency struct {
	ID            int64
	Code          string
	Name          string
	NamePlural    *string
	Symbol        string
	DecimalDigits int
	Icon          *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ScrapeResult is the output of one successful Manager.ScrapeWithFailsafe
// call: a set of target-code -> rate pairs, the source that produced them,
// and the time they were captured.
type ScrapeResult struct {
	Rates     map[string]float64
	Source    string
	Timestamp time.Time
}

// JobStatus is the lifecycle state of a scheduled scraping job.
type JobStatus string

const (
	JobStatusStarted   JobStatus = "started"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobRecord is the progress-tracker's view of a single job run, persisted
// in the shared cache under key "job:<id>".
type JobRecord struct {
	JobID           string    `json:"job_id"`
	Status          JobStatus `json:"status"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time,omitempty"`
	DurationSeconds float64   `json:"duration_seconds,omitempty"`
	Completed       []string  `json:"completed"`
	Failed          []string  `json:"failed"`
	RetryCount      int       `json:"retry_count"`
}
