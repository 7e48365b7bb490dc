// -----------------------------------------------------------------------
// Last Modified: Friday, 8th November 2025 4:00:00 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fxrates/internal/common"
	"github.com/ternarybob/fxrates/internal/fxrates"
	"github.com/ternarybob/fxrates/internal/fxrates/adapters"
	"github.com/ternarybob/fxrates/internal/ratesdb"
	"github.com/ternarybob/fxrates/internal/services/kv"
	"github.com/ternarybob/fxrates/internal/services/scheduler"
	"github.com/ternarybob/fxrates/internal/storage/badger"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	defer common.RecoverWithCrashFile()

	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("fxrates version %s\n", common.GetVersion())
		os.Exit(0)
	}

	if len(configFiles) == 0 {
		if _, err := os.Stat("fxrates.toml"); err == nil {
			configFiles = append(configFiles, "fxrates.toml")
		} else if _, err := os.Stat("deployments/local/fxrates.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/fxrates.toml")
		}
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		if len(configFiles) == 0 {
			tempLogger.Fatal().Err(err).Msg("Failed to load configuration: no config file found")
		} else {
			tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration files")
		}
		os.Exit(1)
	}

	logger := common.SetupLogger(config)
	common.PrintBanner(config, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := fxrates.GetUserAgentRotator(config.Scraper.UserAgentFile); err != nil {
		logger.Warn().Err(err).Str("path", config.Scraper.UserAgentFile).Msg("Failed to load user agent rotation file, falling back to static user agent")
	}
	adapters.RegisterAll()

	cache, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize cache")
	}
	defer cache.Close()

	pool, err := ratesdb.NewPool(ctx, &config.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := ratesdb.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ensure database schema")
	}
	if _, err := ratesdb.CreateNextMonthPartition(ctx, pool, time.Now().UTC()); err != nil {
		logger.Warn().Err(err).Msg("Failed to pre-create next month's partition at startup")
	}

	kvService := kv.NewService(cache.KeyValueStorage(), logger)
	tracker := fxrates.NewProgressTracker(cache.KeyValueStorage(), logger)

	rateLimitDelay, err := time.ParseDuration(config.Scraper.RateLimitDelay)
	if err != nil {
		logger.Warn().Err(err).Str("value", config.Scraper.RateLimitDelay).Msg("Invalid rate_limit_delay, using default")
		rateLimitDelay = 1200 * time.Millisecond
	}

	orchestrator := fxrates.NewOrchestrator(pool, tracker, rateLimitDelay, config.Scraper.SourcePriority, logger)

	sched := scheduler.NewService(logger)

	registerJob := func(name, schedule, description string, handler func() error) {
		if err := sched.RegisterJob(name, schedule, description, handler); err != nil {
			logger.Fatal().Err(err).Str("job", name).Msg("Failed to register job")
		}
	}

	registerJob("primary_group_sweep", config.Jobs.PrimaryGroupSchedule, "Scrape primary currency group", func() error {
		return orchestrator.RunPrimaryGroupSweep(context.Background())
	})
	registerJob("secondary_group_sweep", config.Jobs.SecondaryGroupSchedule, "Scrape secondary currency group", func() error {
		return orchestrator.RunSecondaryGroupSweep(context.Background())
	})
	registerJob("partition_create", config.Jobs.PartitionCreateSchedule, "Create next month's exchange_rates partition", func() error {
		name, err := ratesdb.CreateNextMonthPartition(context.Background(), pool, time.Now().UTC())
		if err != nil {
			return err
		}
		logger.Info().Str("partition", name).Msg("Ensured next month's partition exists")
		return nil
	})
	registerJob("cleanup", config.Jobs.CleanupSchedule, "Drop expired partitions and invalidate caches", func() error {
		return ratesdb.RunRetentionSweep(context.Background(), pool, kvService, logger, time.Now().UTC())
	})

	if err := sched.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer sched.Stop()

	logger.Info().Msg("fxrates scraping orchestrator ready")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Interrupt signal received")
	common.PrintShutdownBanner(logger)
	common.Stop()
}
