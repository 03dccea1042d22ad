package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/jobscout/internal/core/domain"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage preference profiles",
}

var profileSaveCmd = &cobra.Command{
	Use:   "save <id>",
	Short: "Create or update a preference profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileSave,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List preference profiles",
	RunE:  runProfileList,
}

var profileShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a preference profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileShow,
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a preference profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileDelete,
}

var (
	flagProfileName      string
	flagProfileKeywords  []string
	flagProfileLocations []string
	flagProfileCompanies []string
	flagProfileRemote    bool
)

func init() {
	profileSaveCmd.Flags().StringVar(&flagProfileName, "name", "", "human-readable profile name")
	profileSaveCmd.Flags().StringSliceVar(&flagProfileKeywords, "keyword", nil, "preferred keyword (repeatable)")
	profileSaveCmd.Flags().StringSliceVar(&flagProfileLocations, "location", nil, "preferred location (repeatable)")
	profileSaveCmd.Flags().StringSliceVar(&flagProfileCompanies, "company", nil, "preferred company (repeatable)")
	profileSaveCmd.Flags().BoolVar(&flagProfileRemote, "remote-only", false, "prefer remote postings")

	profileCmd.AddCommand(profileSaveCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileDeleteCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileSave(cmd *cobra.Command, args []string) error {
	if profileService == nil {
		return errors.New("profile service not configured")
	}

	profile := domain.PreferenceProfile{
		ID:         args[0],
		Name:       flagProfileName,
		Keywords:   flagProfileKeywords,
		Locations:  flagProfileLocations,
		Companies:  flagProfileCompanies,
		RemoteOnly: flagProfileRemote,
	}
	if profile.Name == "" {
		profile.Name = profile.ID
	}

	saved, err := profileService.Save(context.Background(), profile)
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}

	cmd.Printf("Profile %s saved.\n", saved.ID)
	return nil
}

func runProfileList(cmd *cobra.Command, _ []string) error {
	if profileService == nil {
		return errors.New("profile service not configured")
	}

	profiles, err := profileService.List(context.Background())
	if err != nil {
		return fmt.Errorf("listing profiles: %w", err)
	}

	if len(profiles) == 0 {
		cmd.Println("No profiles saved.")
		return nil
	}

	for _, p := range profiles {
		cmd.Printf("%s\t%s\tremote-only=%t\n", p.ID, p.Name, p.RemoteOnly)
	}
	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	if profileService == nil {
		return errors.New("profile service not configured")
	}

	profile, err := profileService.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("getting profile: %w", err)
	}

	cmd.Printf("ID:   %s\n", profile.ID)
	cmd.Printf("Name: %s\n", profile.Name)
	if len(profile.Keywords) > 0 {
		cmd.Printf("Keywords:  %s\n", strings.Join(profile.Keywords, ", "))
	}
	if len(profile.Locations) > 0 {
		cmd.Printf("Locations: %s\n", strings.Join(profile.Locations, ", "))
	}
	if len(profile.Companies) > 0 {
		cmd.Printf("Companies: %s\n", strings.Join(profile.Companies, ", "))
	}
	cmd.Printf("Remote-only: %t\n", profile.RemoteOnly)
	return nil
}

func runProfileDelete(cmd *cobra.Command, args []string) error {
	if profileService == nil {
		return errors.New("profile service not configured")
	}

	if err := profileService.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}

	cmd.Printf("Profile %s deleted.\n", args[0])
	return nil
}
