package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/jobscout/internal/core/domain"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank stored postings against a resume",
	Long: `Scores the most recently updated stored postings against the given
resume text and prints them in descending score order. Preferences come from
the referenced profile; explicit flags override it field by field.`,
	RunE: runRank,
}

var rankRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded recommendation runs",
	RunE:  runRankRuns,
}

var (
	flagRankResumeFile string
	flagRankProfile    string
	flagRankKeywords   []string
	flagRankLocations  []string
	flagRankCompanies  []string
	flagRankRemote     bool
	flagRankTop        int
	flagRankRunsLimit  int
)

func init() {
	rankCmd.Flags().StringVar(&flagRankResumeFile, "resume", "", "path to the resume text file (required)")
	rankCmd.Flags().StringVar(&flagRankProfile, "profile", "", "preference profile ID")
	rankCmd.Flags().StringSliceVar(&flagRankKeywords, "keyword", nil, "preferred keyword (repeatable)")
	rankCmd.Flags().StringSliceVar(&flagRankLocations, "location", nil, "preferred location (repeatable)")
	rankCmd.Flags().StringSliceVar(&flagRankCompanies, "company", nil, "preferred company (repeatable)")
	rankCmd.Flags().BoolVar(&flagRankRemote, "remote-only", false, "prefer remote postings")
	rankCmd.Flags().IntVar(&flagRankTop, "top", 0, "show only the top N recommendations")
	rankCmd.MarkFlagRequired("resume") //nolint:errcheck

	rankRunsCmd.Flags().IntVar(&flagRankRunsLimit, "limit", 0, "maximum runs to show")

	rankCmd.AddCommand(rankRunsCmd)
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, _ []string) error {
	if rankService == nil {
		return errors.New("rank service not configured")
	}

	resume, err := os.ReadFile(flagRankResumeFile)
	if err != nil {
		return fmt.Errorf("reading resume: %w", err)
	}

	req := domain.RankRequest{
		ResumeText: string(resume),
		ProfileID:  flagRankProfile,
		Keywords:   flagRankKeywords,
		Locations:  flagRankLocations,
		Companies:  flagRankCompanies,
	}
	if cmd.Flags().Changed("remote-only") {
		remote := flagRankRemote
		req.RemoteOnly = &remote
	}

	result, err := rankService.Rank(context.Background(), req)
	if err != nil {
		return fmt.Errorf("ranking failed: %w", err)
	}

	recommendations := result.Recommendations
	if flagRankTop > 0 && flagRankTop < len(recommendations) {
		recommendations = recommendations[:flagRankTop]
	}

	if len(recommendations) == 0 {
		cmd.Println("No postings to rank.")
		return nil
	}

	for i, rec := range recommendations {
		cmd.Printf("%2d. %.4f  %s", i+1, rec.Score, rec.Title)
		if rec.Company != "" {
			cmd.Printf("  @ %s", rec.Company)
		}
		if rec.Location != "" {
			cmd.Printf("  (%s)", rec.Location)
		}
		cmd.Println()
		if len(rec.MatchedTerms) > 0 {
			cmd.Printf("    matched: %v\n", rec.MatchedTerms)
		}
	}
	cmd.Printf("Run %s scored %d postings from %s.\n",
		result.RunID, len(result.Recommendations), result.PostingsSource)
	return nil
}

func runRankRuns(cmd *cobra.Command, _ []string) error {
	if rankService == nil {
		return errors.New("rank service not configured")
	}

	runs, err := rankService.Runs(context.Background(), flagRankRunsLimit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	if len(runs) == 0 {
		cmd.Println("No recommendation runs recorded.")
		return nil
	}

	for _, run := range runs {
		cmd.Printf("%s  %s  %d recommendations  resume=%d chars  postings=%s\n",
			run.GeneratedAt.Format("2006-01-02 15:04:05"), run.ID,
			run.RecommendationCount, run.ResumeLength, run.PostingsSource)
	}
	return nil
}
