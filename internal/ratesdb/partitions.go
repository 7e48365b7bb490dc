package ratesdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fxrates/internal/services/kv"
)

// retentionDays matches the original's "6 months" retention window,
// expressed the same way it was computed there: 6 * 30 days.
const retentionDays = 6 * 30

// partitionName builds the exchange_rates_YYYY_MM name for a given month.
func partitionName(t time.Time) string {
	return fmt.Sprintf("exchange_rates_%04d_%02d", t.Year(), int(t.Month()))
}

// monthBounds returns the [start, end) range for the partition covering t's
// month, both in UTC.
func monthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return start, end
}

// EnsurePartitionForMonth creates the partition covering month if it
// doesn't already exist. Cheap existence check plus conditional create;
// called before every write as a belt-and-suspenders guard alongside the
// scheduled days-28-31 creation, closing the race where a write lands in a
// month whose partition hasn't been created yet.
func EnsurePartitionForMonth(ctx context.Context, db Querier, month time.Time) error {
	name := partitionName(month)
	start, end := monthBounds(month)

	sql := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s PARTITION OF exchange_rates FOR VALUES FROM ('%s') TO ('%s')`,
		name, start.Format(time.RFC3339), end.Format(time.RFC3339))

	if _, err := db.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to ensure partition %s: %w", name, err)
	}
	return nil
}

// CreateNextMonthPartition creates the partition for the month following
// now. Idempotent: re-running it after the partition already exists is a
// no-op.
func CreateNextMonthPartition(ctx context.Context, db Querier, now time.Time) (string, error) {
	nextMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	name := partitionName(nextMonth)

	if err := EnsurePartitionForMonth(ctx, db, nextMonth); err != nil {
		return "", err
	}
	return name, nil
}

// RunRetentionSweep drops partitions older than the retention window,
// VACUUM ANALYZEs the ones kept plus the parent tables, and invalidates the
// job/retry/currency/rate cache prefixes. The prefix scan covers key/value
// pairs only: retry counters kept by IncrementBounded under their own raw
// keys are not removed. Mirrors the original's scheduled
// cleanup task, replacing its Redis glob-delete (which the original's
// CacheManager never actually implemented) with a real prefix scan.
func RunRetentionSweep(ctx context.Context, pool *pgxpool.Pool, kvService *kv.Service, logger arbor.ILogger, now time.Time) error {
	runID := uuid.New().String()
	logger = logger.WithCorrelationId(runID)

	rows, err := pool.Query(ctx, `SELECT tablename FROM pg_tables WHERE tablename LIKE 'exchange_rates_%' ORDER BY tablename`)
	if err != nil {
		return fmt.Errorf("failed to list exchange_rates partitions: %w", err)
	}

	var partitions []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan partition name: %w", err)
		}
		partitions = append(partitions, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate partitions: %w", err)
	}

	logger.Info().Int("partition_count", len(partitions)).Msg("Found exchange rate partitions")

	if _, err := pool.Exec(ctx, "VACUUM ANALYZE exchange_rates"); err != nil {
		logger.Warn().Err(err).Msg("Failed to VACUUM ANALYZE exchange_rates parent table")
	}

	for _, partition := range partitions {
		partitionDate, ok := parsePartitionDate(partition)
		if !ok {
			logger.Warn().Str("partition", partition).Msg("Skipping partition with unexpected name format")
			continue
		}

		if now.Sub(partitionDate) > retentionDays*24*time.Hour {
			logger.Info().Str("partition", partition).Msg("Dropping partition past retention window")
			if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE %s", partition)); err != nil {
				logger.Error().Str("partition", partition).Err(err).Msg("Failed to drop partition")
			}
			continue
		}

		if _, err := pool.Exec(ctx, fmt.Sprintf("VACUUM ANALYZE %s", partition)); err != nil {
			logger.Error().Str("partition", partition).Err(err).Msg("Failed to VACUUM ANALYZE partition")
		}
	}

	if _, err := pool.Exec(ctx, "VACUUM ANALYZE currencies"); err != nil {
		logger.Warn().Err(err).Msg("Failed to VACUUM ANALYZE currencies table")
	}

	for _, prefix := range []string{"job:", "retry:", "currencies:", "currency:", "exchange_rates:"} {
		if _, err := kvService.DeleteByPrefix(ctx, prefix); err != nil {
			logger.Warn().Str("prefix", prefix).Err(err).Msg("Failed to invalidate cache prefix")
		}
	}

	return nil
}

// parsePartitionDate extracts the first-of-month date encoded in an
// exchange_rates_YYYY_MM partition name.
func parsePartitionDate(partition string) (time.Time, bool) {
	const prefix = "exchange_rates_"
	if !strings.HasPrefix(partition, prefix) {
		return time.Time{}, false
	}
	yearMonth := strings.TrimPrefix(partition, prefix)
	parts := strings.Split(yearMonth, "_")
	if len(parts) != 2 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
}
