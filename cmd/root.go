package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Rorical/TermTwin/internal/app"
)

var (
	debugFlag   bool
	profileFlag string
)

var rootCmd = &cobra.Command{
	Use:   "termtwin",
	Short: "Talk to a portfolio digital twin from the terminal",
	Long: `TermTwin is a terminal client for a portfolio "digital twin" chat backend.
Replies stream in live with their thinking steps, and shell-like commands
such as ls, cat and whoami are answered locally.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the chat application
		return runApplication(appOptions())
	},
}

func appOptions() app.Options {
	return app.Options{Profile: profileFlag, Debug: debugFlag}
}

func runApplication(opts app.Options) error {
	application, err := app.NewApplication(opts)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer application.Stop()

	if err := application.Start(); err != nil {
		return fmt.Errorf("application error: %w", err)
	}
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "write debug records to the log file")
	rootCmd.PersistentFlags().StringVarP(&profileFlag, "profile", "p", "", "profile to use for this run")

	// Add subcommands
	rootCmd.AddCommand(profileCmd)
}
