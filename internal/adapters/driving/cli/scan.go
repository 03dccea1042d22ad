package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/jobscout/internal/core/domain"
)

var scanCmd = &cobra.Command{
	Use:   "scan [source-id]",
	Short: "Scan sources for new postings",
	Long: `Runs one scan attempt. With a source ID, only that source is
scanned; otherwise every enabled source is scanned in turn.

Manual scans ignore backoff windows by default; pass --respect-backoff to
skip sources that are still backing off.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

var scanHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the scan attempt log",
	RunE:  runScanHistory,
}

var (
	flagScanRespectBackoff bool
	flagScanAll            bool

	flagHistSource  string
	flagHistStatus  string
	flagHistTrigger string
	flagHistLimit   int
	flagHistOffset  int
)

func init() {
	scanCmd.Flags().BoolVar(&flagScanRespectBackoff, "respect-backoff", false, "skip sources inside their backoff window")
	scanCmd.Flags().BoolVar(&flagScanAll, "all", false, "include disabled sources in a batch scan")

	scanHistoryCmd.Flags().StringVar(&flagHistSource, "source", "", "filter by source ID")
	scanHistoryCmd.Flags().StringVar(&flagHistStatus, "status", "", "filter by status: ok, error or skipped")
	scanHistoryCmd.Flags().StringVar(&flagHistTrigger, "trigger", "", "filter by trigger: manual or scheduled")
	scanHistoryCmd.Flags().IntVar(&flagHistLimit, "limit", 0, "maximum entries to show")
	scanHistoryCmd.Flags().IntVar(&flagHistOffset, "offset", 0, "entries to skip")

	scanCmd.AddCommand(scanHistoryCmd)
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanOrchestrator == nil {
		return errors.New("scan service not configured")
	}

	ctx := context.Background()

	if len(args) > 0 {
		entry, err := scanOrchestrator.ScanOne(ctx, args[0], domain.TriggerManual, flagScanRespectBackoff)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		printScanEntry(cmd, *entry)
		return nil
	}

	result, err := scanOrchestrator.ScanBatch(ctx, !flagScanAll, domain.TriggerManual, flagScanRespectBackoff)
	if err != nil {
		return fmt.Errorf("batch scan failed: %w", err)
	}

	for _, entry := range result.Results {
		printScanEntry(cmd, entry)
	}
	cmd.Printf("Scanned %d sources: %d ok, %d failed, %d skipped (%d postings ingested, %d duplicates).\n",
		result.Requested, result.Succeeded, result.Failed, result.Skipped,
		result.TotalIngested, result.TotalDuplicates)
	return nil
}

func runScanHistory(cmd *cobra.Command, _ []string) error {
	if scanOrchestrator == nil {
		return errors.New("scan service not configured")
	}

	entries, err := scanOrchestrator.History(context.Background(), domain.ScanHistoryFilter{
		SourceID: flagHistSource,
		Status:   domain.ScanStatus(flagHistStatus),
		Trigger:  domain.ScanTrigger(flagHistTrigger),
		Limit:    flagHistLimit,
		Offset:   flagHistOffset,
	})
	if err != nil {
		return fmt.Errorf("listing history: %w", err)
	}

	if len(entries) == 0 {
		cmd.Println("No scan attempts recorded.")
		return nil
	}

	for _, entry := range entries {
		printScanEntry(cmd, entry)
	}
	return nil
}

// printScanEntry renders one history entry as a single line.
func printScanEntry(cmd *cobra.Command, e domain.ScanHistoryEntry) {
	line := fmt.Sprintf("%s  %s  %-9s %-8s", e.ScannedAt.Format("2006-01-02 15:04:05"), e.SourceID, e.Trigger, e.Status)

	switch e.Status {
	case domain.ScanStatusOK:
		line += fmt.Sprintf("  fetched=%d ingested=%d duplicates=%d", e.Fetched, e.Ingested, e.Duplicates)
	case domain.ScanStatusError:
		line += fmt.Sprintf("  attempt=%d backoff=%ds  %s", e.Attempt, e.BackoffSeconds, e.Error)
	case domain.ScanStatusSkipped:
		line += fmt.Sprintf("  eligible at %s", e.NextEligibleAt.Format("15:04:05"))
	}
	cmd.Println(line)
}
