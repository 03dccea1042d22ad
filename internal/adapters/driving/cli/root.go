// Package cli implements the command-line surface. Commands translate flags
// and arguments into service calls and render results; all behaviour lives
// in the core services.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/custodia-labs/jobscout/internal/adapters/driven/audit"
	"github.com/custodia-labs/jobscout/internal/adapters/driven/fetch"
	"github.com/custodia-labs/jobscout/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/jobscout/internal/config"
	"github.com/custodia-labs/jobscout/internal/core/ports/driving"
	"github.com/custodia-labs/jobscout/internal/core/services"
	"github.com/custodia-labs/jobscout/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Package-level services wired by initServices before any command runs.
var (
	cfg       config.Config
	log       *zap.Logger
	store     *sqlite.Store
	scheduler *services.Scheduler

	sourceService    driving.SourceService
	postingService   driving.PostingService
	scanOrchestrator driving.ScanOrchestrator
	rankService      driving.RankService
	profileService   driving.ProfileService
)

// Persistent flags.
var (
	flagConfig  string
	flagDataDir string
	flagDebug   bool
	flagJSONLog bool
)

var rootCmd = &cobra.Command{
	Use:   "jobscout",
	Short: "Job source ingestion and relevance ranking engine",
	Long: `jobscout ingests job postings from configured sources, deduplicates
them by content fingerprint, and ranks them against a resume and a set of
preferences.`,
	SilenceUsage:      true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return initServices() },
	PersistentPostRun: func(_ *cobra.Command, _ []string) { shutdownServices() },
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory override")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagJSONLog, "json-log", false, "log as JSON")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initServices loads configuration and wires the service graph.
func initServices() error {
	var err error
	cfg, err = config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}

	log, err = logger.New(cfg.Log.JSON || flagJSONLog, cfg.Log.Debug || flagDebug)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	store, err = sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	auditSink := audit.NewZapSink(log)
	fetcher := fetch.NewFetcher(time.Duration(cfg.Scan.FetchTimeoutSeconds)*time.Second, cfg.Scan.RatePerSecond)

	sourceService = services.NewSourceService(store.SourceStore(), auditSink, log)
	postingService = services.NewPostingService(store.PostingStore(), auditSink, log)
	scanOrchestrator = services.NewScanOrchestrator(
		store.SourceStore(), store.PostingStore(), store.ScanHistoryStore(),
		fetcher, auditSink, log)
	rankService = services.NewRankService(
		store.PostingStore(), store.ProfileStore(), store.RunStore(),
		auditSink, log, cfg.Rank.StoredFallbackLimit)
	profileService = services.NewProfileService(store.ProfileStore(), auditSink, log)
	scheduler = services.NewScheduler(cfg.Scan.Schedule, scanOrchestrator, log)

	return nil
}

// shutdownServices releases resources acquired by initServices.
func shutdownServices() {
	if store != nil {
		store.Close() //nolint:errcheck
	}
	if log != nil {
		log.Sync() //nolint:errcheck
	}
}
