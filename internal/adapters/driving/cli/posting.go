package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/jobscout/internal/core/domain"
)

var postingCmd = &cobra.Command{
	Use:   "posting",
	Short: "Manage stored postings",
}

var postingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored postings, most recently updated first",
	RunE:  runPostingList,
}

var postingImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import postings from a JSON file",
	Long: `Imports postings from a JSON file holding either a bare list of
postings or an object with a "postings" list. Every posting must carry a
stable id or external_id.`,
	Args: cobra.ExactArgs(1),
	RunE: runPostingImport,
}

var flagPostingLimit int

func init() {
	postingListCmd.Flags().IntVar(&flagPostingLimit, "limit", 0, "maximum postings to show")

	postingCmd.AddCommand(postingListCmd)
	postingCmd.AddCommand(postingImportCmd)
	rootCmd.AddCommand(postingCmd)
}

func runPostingList(cmd *cobra.Command, _ []string) error {
	if postingService == nil {
		return errors.New("posting service not configured")
	}

	postings, err := postingService.List(context.Background(), flagPostingLimit)
	if err != nil {
		return fmt.Errorf("listing postings: %w", err)
	}

	if len(postings) == 0 {
		cmd.Println("No postings stored.")
		return nil
	}

	for _, p := range postings {
		line := fmt.Sprintf("%s\t%s", p.ID, p.Title)
		if p.Company != "" {
			line += "\t" + p.Company
		}
		if p.Location != "" {
			line += "\t" + p.Location
		}
		if p.DuplicateHintCount > 0 {
			line += fmt.Sprintf("\t(%d duplicate hints)", p.DuplicateHintCount)
		}
		cmd.Println(line)
	}
	return nil
}

func runPostingImport(cmd *cobra.Command, args []string) error {
	if postingService == nil {
		return errors.New("posting service not configured")
	}

	payload, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	candidates, err := domain.DecodeCandidates(payload)
	if err != nil {
		return fmt.Errorf("decoding postings: %w", err)
	}

	now := time.Now().UTC()
	postings := make([]domain.Posting, 0, len(candidates))
	for i, raw := range candidates {
		id := raw.StableExternalID()
		if id == "" {
			return fmt.Errorf("%w: posting %d has no stable id", domain.ErrInvalidInput, i)
		}
		postings = append(postings, domain.Posting{
			ID:          id,
			Title:       raw.Title,
			Description: raw.Description,
			Company:     raw.Company,
			Location:    raw.Location,
			ApplyURL:    raw.ApplyURL,
			ExternalID:  raw.StableExternalID(),
			UpdatedAt:   now,
		})
	}

	updated, duplicates, err := postingService.Upsert(context.Background(), postings)
	if err != nil {
		return fmt.Errorf("importing postings: %w", err)
	}

	cmd.Printf("Imported %d postings (%d duplicate hints).\n", updated, duplicates)
	return nil
}
