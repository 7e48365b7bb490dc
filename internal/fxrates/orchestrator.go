package fxrates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fxrates/internal/common"
	"github.com/ternarybob/fxrates/internal/ratesdb"
)

// job ID kinds, combined with a timestamp to form the full job ID
// (<kind>_<YYYYMMDDHHMMSS>), matching the original task naming rather than
// a UUID.
const (
	jobKindFullSweep        = "scrape_rates"
	jobKindGroupPrimary     = "scrape_group_primary"
	jobKindGroupSecondary   = "scrape_group_secondary"
	jobKindSingleCurrency   = "scrape_currency"
	singleCurrencyRetryWait = 5 * time.Minute

	// orchestratorMaxAttempts bounds the whole-job retry a job shape gets on
	// an unexpected failure (currency list unreadable, rate write failed),
	// as opposed to the per-currency retry ShouldRetryCurrency governs.
	orchestratorMaxAttempts = 3
	orchestratorRetryWait   = 5 * time.Minute
	// allSourcesFailedRetryWait is the longer backoff used specifically when
	// a single-currency retry's own scrape exhausts every source again.
	allSourcesFailedRetryWait = 15 * time.Minute
)

// Orchestrator drives the three job shapes over the known currency set: a
// full sweep, a group sweep (primary/secondary), and a single-currency
// retry. Each invocation builds its own Manager so rate limiting is scoped
// to that one job run, never shared across concurrent jobs.
type Orchestrator struct {
	pool           *pgxpool.Pool
	tracker        *ProgressTracker
	rateLimitDelay time.Duration
	sourcePriority []string
	logger         arbor.ILogger
}

// NewOrchestrator creates an orchestrator. sourcePriority may be nil to use
// the registry's default order.
func NewOrchestrator(pool *pgxpool.Pool, tracker *ProgressTracker, rateLimitDelay time.Duration, sourcePriority []string, logger arbor.ILogger) *Orchestrator {
	return &Orchestrator{
		pool:           pool,
		tracker:        tracker,
		rateLimitDelay: rateLimitDelay,
		sourcePriority: sourcePriority,
		logger:         logger,
	}
}

func newJobID(kind string, now time.Time) string {
	return fmt.Sprintf("%s_%s", kind, now.Format("20060102150405"))
}

// RunFullSweep scrapes every known currency against every other known
// currency and bulk-writes the results. An unexpected failure (not a
// per-currency scrape failure, which is handled by maybeScheduleRetry) gets
// up to orchestratorMaxAttempts total attempts, each job-shape re-run from
// scratch after orchestratorRetryWait.
func (o *Orchestrator) RunFullSweep(ctx context.Context) error {
	return o.runWithRetry(ctx, jobKindFullSweep, fixedBackoff, func(ctx context.Context) error {
		return o.runSweep(ctx, jobKindFullSweep, nil)
	})
}

// RunGroupSweep scrapes only the given currency codes as base currencies
// (against every known currency as target), used for the primary/secondary
// cron-scheduled groups.
func (o *Orchestrator) RunGroupSweep(ctx context.Context, kind string, codes []string) error {
	return o.runWithRetry(ctx, kind, fixedBackoff, func(ctx context.Context) error {
		return o.runSweep(ctx, kind, codes)
	})
}

// RunPrimaryGroupSweep scrapes PrimaryGroup.
func (o *Orchestrator) RunPrimaryGroupSweep(ctx context.Context) error {
	return o.RunGroupSweep(ctx, jobKindGroupPrimary, PrimaryGroup)
}

// RunSecondaryGroupSweep scrapes SecondaryGroup.
func (o *Orchestrator) RunSecondaryGroupSweep(ctx context.Context) error {
	return o.RunGroupSweep(ctx, jobKindGroupSecondary, SecondaryGroup)
}

// fixedBackoff always backs off by orchestratorRetryWait, regardless of the
// error that triggered the retry. Used by every job shape except the
// single-currency retry, which escalates to a longer wait when every source
// fails again.
func fixedBackoff(error) time.Duration { return orchestratorRetryWait }

// runWithRetry runs fn and, on error, reschedules it via time.AfterFunc
// after backoff(err), up to orchestratorMaxAttempts total attempts. This
// mirrors the original's bound Celery task retrying itself with
// self.retry(exc=e, countdown=...) on unexpected failure: the caller sees
// the current attempt's error immediately, and any retry is a fresh,
// independent run of fn rather than a blocking in-process loop.
func (o *Orchestrator) runWithRetry(ctx context.Context, name string, backoff func(error) time.Duration, fn func(context.Context) error) error {
	return o.attempt(ctx, name, backoff, 1, fn)
}

func (o *Orchestrator) attempt(ctx context.Context, name string, backoff func(error) time.Duration, attempt int, fn func(context.Context) error) error {
	err := fn(ctx)
	if err == nil {
		return nil
	}
	if attempt >= orchestratorMaxAttempts {
		o.logger.Error().Err(err).Str("job", name).Int("attempt", attempt).Msg("Exhausted orchestrator-level retries, giving up")
		return err
	}

	wait := backoff(err)
	next := attempt + 1
	o.logger.Warn().Err(err).Str("job", name).Int("attempt", next).Dur("backoff", wait).
		Msg("Unexpected job failure, scheduling orchestrator-level retry")

	time.AfterFunc(wait, func() {
		common.SafeGoWithContext(context.Background(), o.logger, "retry:"+name, func() {
			retryCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			if rerr := o.attempt(retryCtx, name, backoff, next, fn); rerr != nil {
				o.logger.Error().Err(rerr).Str("job", name).Msg("Orchestrator-level retry ultimately failed")
			}
		})
	})

	return err
}

// codeFilter restricts a sweep to a base-currency subset; nil means "all".
func codeFilter(codes []string) map[string]bool {
	if codes == nil {
		return nil
	}
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return set
}

func (o *Orchestrator) runSweep(ctx context.Context, kind string, baseCodes []string) error {
	jobID := newJobID(kind, time.Now().UTC())
	jobLogger := o.logger.WithCorrelationId(jobID)

	if err := o.tracker.StartJob(ctx, jobID); err != nil {
		jobLogger.Warn().Err(err).Msg("Failed to record job start")
	}
	if err := o.tracker.MarkRunning(ctx, jobID); err != nil {
		jobLogger.Warn().Err(err).Msg("Failed to mark job running")
	}

	start := time.Now()

	currencies, err := ratesdb.ListCurrencies(ctx, o.pool)
	if err != nil {
		o.finishFailed(ctx, jobID, jobLogger)
		return fmt.Errorf("failed to list currencies for job %s: %w", jobID, err)
	}
	if len(currencies) == 0 {
		o.finishFailed(ctx, jobID, jobLogger)
		return fmt.Errorf("no currencies found for job %s", jobID)
	}

	filter := codeFilter(baseCodes)
	manager := NewManager(o.sourcePriority, o.rateLimitDelay, jobLogger)

	var allRates []ratesdb.Rate
	successfulPairs, failedPairs := 0, 0

	for _, base := range currencies {
		if filter != nil && !filter[base.Code] {
			continue
		}

		targets := make([]string, 0, len(currencies)-1)
		targetByCode := make(map[string]ratesdb.Currency, len(currencies)-1)
		for _, target := range currencies {
			if target.ID == base.ID {
				continue
			}
			targets = append(targets, target.Code)
			targetByCode[target.Code] = target
		}

		result, err := manager.ScrapeWithFailsafe(ctx, base.Code, &base.Name, base.NamePlural, targets)
		if err != nil {
			jobLogger.Error().Str("base", base.Code).Err(err).Msg("All sources failed for base currency")
			failedPairs += len(targets)
			if recErr := o.tracker.RecordFailed(ctx, jobID, base.Code); recErr != nil {
				jobLogger.Warn().Err(recErr).Msg("Failed to record currency failure")
			}
			o.maybeScheduleRetry(ctx, jobID, base.ID, base.Code, jobLogger)
			continue
		}

		now := time.Now().UTC()
		found := 0
		for code, rate := range result.Rates {
			target, ok := targetByCode[code]
			if !ok {
				continue
			}
			allRates = append(allRates, ratesdb.Rate{
				BaseID:    base.ID,
				TargetID:  target.ID,
				Rate:      rate,
				Source:    result.Source,
				CreatedAt: now,
			})
			found++
		}
		successfulPairs += found
		failedPairs += len(targets) - found

		if err := o.tracker.RecordCompleted(ctx, jobID, base.Code); err != nil {
			jobLogger.Warn().Err(err).Msg("Failed to record currency completion")
		}
	}

	if len(allRates) > 0 {
		if err := ratesdb.EnsurePartitionForMonth(ctx, o.pool, time.Now().UTC()); err != nil {
			jobLogger.Warn().Err(err).Msg("Failed to ensure current month partition before write")
		}
		if err := ratesdb.UpsertRatesCommit(ctx, o.pool, allRates); err != nil {
			o.finishFailed(ctx, jobID, jobLogger)
			return &StorageError{Op: "upsert rates for job " + jobID, Err: err}
		}
	}

	if err := o.tracker.FinishJob(ctx, jobID, false); err != nil {
		jobLogger.Warn().Err(err).Msg("Failed to finish job record")
	}

	jobLogger.Info().
		Int("successful_pairs", successfulPairs).
		Int("failed_pairs", failedPairs).
		Dur("duration", time.Since(start)).
		Msg("Sweep completed")

	return nil
}

func (o *Orchestrator) finishFailed(ctx context.Context, jobID string, jobLogger arbor.ILogger) {
	if err := o.tracker.FinishJob(ctx, jobID, true); err != nil {
		jobLogger.Warn().Err(err).Msg("Failed to finish (failed) job record")
	}
}

// RunSingleCurrencyRetry re-scrapes one base currency against every other
// known currency. Used for the 5-minute-backoff retry path triggered after
// a currency fails during a sweep. An unexpected failure (currency/list
// lookup, rate write) gets the same orchestratorRetryWait backoff as the
// other job shapes; a repeat AllSourcesFailed escalates to
// allSourcesFailedRetryWait instead, matching the original task's two
// separate retry countdowns.
func (o *Orchestrator) RunSingleCurrencyRetry(ctx context.Context, baseCurrencyID int64) error {
	return o.runWithRetry(ctx, jobKindSingleCurrency, singleCurrencyBackoff, func(ctx context.Context) error {
		return o.singleCurrencyRetry(ctx, baseCurrencyID)
	})
}

func singleCurrencyBackoff(err error) time.Duration {
	var allFailed *AllSourcesFailed
	if errors.As(err, &allFailed) {
		return allSourcesFailedRetryWait
	}
	return orchestratorRetryWait
}

func (o *Orchestrator) singleCurrencyRetry(ctx context.Context, baseCurrencyID int64) error {
	jobID := newJobID(jobKindSingleCurrency, time.Now().UTC())
	jobLogger := o.logger.WithCorrelationId(jobID)

	if err := o.tracker.StartJob(ctx, jobID); err != nil {
		jobLogger.Warn().Err(err).Msg("Failed to record retry job start")
	}

	base, err := ratesdb.GetCurrencyByID(ctx, o.pool, baseCurrencyID)
	if err != nil {
		o.finishFailed(ctx, jobID, jobLogger)
		return fmt.Errorf("single-currency retry: currency %d not found: %w", baseCurrencyID, err)
	}

	currencies, err := ratesdb.ListCurrencies(ctx, o.pool)
	if err != nil {
		o.finishFailed(ctx, jobID, jobLogger)
		return fmt.Errorf("single-currency retry: failed to list currencies: %w", err)
	}

	targets := make([]string, 0, len(currencies)-1)
	targetByCode := make(map[string]ratesdb.Currency, len(currencies)-1)
	for _, target := range currencies {
		if target.ID == base.ID {
			continue
		}
		targets = append(targets, target.Code)
		targetByCode[target.Code] = target
	}

	manager := NewManager(o.sourcePriority, o.rateLimitDelay, jobLogger)
	result, err := manager.ScrapeWithFailsafe(ctx, base.Code, &base.Name, base.NamePlural, targets)
	if err != nil {
		o.finishFailed(ctx, jobID, jobLogger)
		jobLogger.Error().Str("base", base.Code).Err(err).Msg("Single-currency retry: all sources failed")
		return &AllSourcesFailed{BaseCode: base.Code, Errors: []error{err}}
	}

	now := time.Now().UTC()
	rates := make([]ratesdb.Rate, 0, len(result.Rates))
	for code, rate := range result.Rates {
		target, ok := targetByCode[code]
		if !ok {
			continue
		}
		rates = append(rates, ratesdb.Rate{
			BaseID:    base.ID,
			TargetID:  target.ID,
			Rate:      rate,
			Source:    result.Source,
			CreatedAt: now,
		})
	}

	if len(rates) > 0 {
		if err := ratesdb.EnsurePartitionForMonth(ctx, o.pool, now); err != nil {
			jobLogger.Warn().Err(err).Msg("Failed to ensure current month partition before retry write")
		}
		if err := ratesdb.UpsertRatesCommit(ctx, o.pool, rates); err != nil {
			o.finishFailed(ctx, jobID, jobLogger)
			return &StorageError{Op: "upsert rates for retry job " + jobID, Err: err}
		}
	}

	if err := o.tracker.FinishJob(ctx, jobID, false); err != nil {
		jobLogger.Warn().Err(err).Msg("Failed to finish retry job record")
	}

	jobLogger.Info().Str("base", base.Code).Int("rate_count", len(rates)).Msg("Single-currency retry completed")
	return nil
}

// maybeScheduleRetry checks the bounded retry counter and, if allowed,
// schedules RunSingleCurrencyRetry after the fixed 5-minute backoff. The
// scheduling itself uses time.AfterFunc rather than going back through the
// cron scheduler, matching the original's one-off countdown-based retry
// rather than a recurring schedule.
func (o *Orchestrator) maybeScheduleRetry(ctx context.Context, jobID string, baseCurrencyID int64, baseCode string, jobLogger arbor.ILogger) {
	allowed, err := o.tracker.ShouldRetryCurrency(ctx, jobID, baseCode)
	if err != nil {
		jobLogger.Warn().Err(err).Str("base", baseCode).Msg("Failed to check retry eligibility")
		return
	}
	if !allowed {
		jobLogger.Info().Str("base", baseCode).Msg("Retry limit reached, not scheduling another attempt")
		return
	}

	jobLogger.Info().Str("base", baseCode).Dur("backoff", singleCurrencyRetryWait).Msg("Scheduling single-currency retry")

	time.AfterFunc(singleCurrencyRetryWait, func() {
		common.SafeGoWithContext(context.Background(), jobLogger, "single-currency-retry:"+baseCode, func() {
			retryCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := o.RunSingleCurrencyRetry(retryCtx, baseCurrencyID); err != nil {
				jobLogger.Error().Err(err).Str("base", baseCode).Msg("Scheduled single-currency retry failed")
			}
		})
	})
}
