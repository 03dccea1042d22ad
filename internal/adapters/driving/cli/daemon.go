package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run scheduled scans until interrupted",
	Long: `Starts the scan scheduler and blocks until SIGINT or SIGTERM.
Scheduled scans cover enabled sources and always respect backoff windows.`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	cmd.Printf("Scheduler running (%s). Press Ctrl+C to stop.\n", cfg.Scan.Schedule)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	cmd.Println("Shutting down...")
	scheduler.Stop()
	return nil
}
