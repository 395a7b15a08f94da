package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rorical/TermTwin/internal/config"
)

var useCmd = &cobra.Command{
	Use:   "use [profile-name]",
	Short: "Switch to a profile and start the chat app",
	Long:  `Switch to the specified profile and immediately start the chat application.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load config
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Switch to the profile, saving it as the new active one
		if err := cfg.UseProfile(args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		// Start the chat application
		opts := appOptions()
		opts.Profile = cfg.ActiveProfile
		return runApplication(opts)
	},
}

func init() {
	rootCmd.AddCommand(useCmd)
}
