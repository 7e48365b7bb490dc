// -----------------------------------------------------------------------
// Reverted to use robfig/cron (backed out go-quartz)
// -----------------------------------------------------------------------

package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fxrates/internal/common"
)

// jobEntry represents a registered job with its last run status
type jobEntry struct {
	name        string
	schedule    string
	description string
	handler     func() error
	enabled     bool
	entryID     cron.EntryID
	lastRun     *time.Time
	isRunning   bool
	lastError   string
}

// JobStatus is a read-only snapshot of a registered job's state.
type JobStatus struct {
	Name        string     `json:"name"`
	Schedule    string     `json:"schedule"`
	Description string     `json:"description"`
	Enabled     bool       `json:"enabled"`
	IsRunning   bool       `json:"is_running"`
	LastRun     *time.Time `json:"last_run,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

// Service drives the scraping orchestrator's cron surface: the primary and
// secondary currency group sweeps, the weekly retention cleanup, and the
// monthly partition-create job. Every handler runs behind globalMu so two
// scheduled sweeps can never touch the rate-limited scraper concurrently.
type Service struct {
	cron     *cron.Cron
	logger   arbor.ILogger
	jobMu    sync.Mutex
	globalMu sync.Mutex
	jobs     map[string]*jobEntry
	running  bool
}

// NewService creates a new scheduler service.
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		cron:   cron.New(),
		logger: logger,
		jobs:   make(map[string]*jobEntry),
	}
}

// RegisterJob attaches a named handler to a cron schedule. Registration is
// idempotent per name: calling it twice with the same name returns an error
// rather than double-scheduling the handler.
func (s *Service) RegisterJob(name, schedule, description string, handler func() error) error {
	if err := common.ValidateJobSchedule(schedule); err != nil {
		return fmt.Errorf("invalid schedule for job %s: %w", name, err)
	}

	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	entry := &jobEntry{
		name:        name,
		schedule:    schedule,
		description: description,
		handler:     handler,
		enabled:     true,
	}

	entryID, err := s.cron.AddFunc(schedule, func() { s.executeJob(name) })
	if err != nil {
		return fmt.Errorf("failed to add cron job %s: %w", name, err)
	}

	entry.entryID = entryID
	s.jobs[name] = entry

	s.logger.Info().
		Str("job_name", name).
		Str("schedule", schedule).
		Msg("Job registered with cron scheduler")

	return nil
}

// executeJob is the function cron invokes. It serializes all job execution
// through globalMu: the scraping orchestrator's Manager, rate limiter, and
// progress tracker are built for one in-flight sweep at a time, so a
// secondary-group job firing mid-primary-sweep waits rather than races.
func (s *Service) executeJob(name string) {
	s.jobMu.Lock()
	entry, exists := s.jobs[name]
	if !exists || !entry.enabled {
		s.jobMu.Unlock()
		return
	}
	entry.isRunning = true
	handler := entry.handler
	s.jobMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("job_name", name).Msg("Job handler panicked")
			s.jobMu.Lock()
			if entry, exists := s.jobs[name]; exists {
				entry.isRunning = false
				entry.lastError = fmt.Sprintf("panic: %v", r)
			}
			s.jobMu.Unlock()
		}
	}()

	s.globalMu.Lock()
	defer s.globalMu.Unlock()

	start := time.Now()
	err := handler()
	completed := time.Now()

	s.jobMu.Lock()
	if entry, exists := s.jobs[name]; exists {
		entry.isRunning = false
		entry.lastRun = &completed
		if err != nil {
			entry.lastError = err.Error()
		} else {
			entry.lastError = ""
		}
	}
	s.jobMu.Unlock()

	if err != nil {
		s.logger.Error().Str("job_name", name).Err(err).Dur("duration", time.Since(start)).Msg("Job execution failed")
	} else {
		s.logger.Info().Str("job_name", name).Dur("duration", time.Since(start)).Msg("Job execution completed")
	}
}

// TriggerJob runs a registered job's handler immediately, outside its cron
// schedule, on its own goroutine started through common.SafeGo.
func (s *Service) TriggerJob(name string) error {
	s.jobMu.Lock()
	_, exists := s.jobs[name]
	s.jobMu.Unlock()
	if !exists {
		return fmt.Errorf("job %s not registered", name)
	}
	common.SafeGo(s.logger, "trigger:"+name, func() { s.executeJob(name) })
	return nil
}

// EnableJob re-enables a previously disabled job.
func (s *Service) EnableJob(name string) error {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	entry, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("job %s not registered", name)
	}
	entry.enabled = true
	return nil
}

// DisableJob prevents a job's cron trigger from running its handler, without
// removing it from the scheduler.
func (s *Service) DisableJob(name string) error {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	entry, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("job %s not registered", name)
	}
	entry.enabled = false
	return nil
}

// GetJobStatus returns the current status of a registered job.
func (s *Service) GetJobStatus(name string) (*JobStatus, error) {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	entry, exists := s.jobs[name]
	if !exists {
		return nil, fmt.Errorf("job %s not registered", name)
	}
	return &JobStatus{
		Name:        entry.name,
		Schedule:    entry.schedule,
		Description: entry.description,
		Enabled:     entry.enabled,
		IsRunning:   entry.isRunning,
		LastRun:     entry.lastRun,
		LastError:   entry.lastError,
	}, nil
}

// GetAllJobStatuses returns a status snapshot for every registered job.
func (s *Service) GetAllJobStatuses() map[string]*JobStatus {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	statuses := make(map[string]*JobStatus, len(s.jobs))
	for name, entry := range s.jobs {
		statuses[name] = &JobStatus{
			Name:        entry.name,
			Schedule:    entry.schedule,
			Description: entry.description,
			Enabled:     entry.enabled,
			IsRunning:   entry.isRunning,
			LastRun:     entry.lastRun,
			LastError:   entry.lastError,
		}
	}
	return statuses
}

// Start begins the cron scheduler. Jobs must already be registered.
func (s *Service) Start() error {
	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	s.cron.Start()
	s.running = true
	s.logger.Info().Int("job_count", len(s.jobs)).Msg("Scheduler started")
	return nil
}

// Stop halts the cron scheduler and waits for any in-flight job to finish.
func (s *Service) Stop() error {
	if !s.running {
		return nil
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// IsRunning reports whether the scheduler has been started.
func (s *Service) IsRunning() bool {
	return s.running
}
