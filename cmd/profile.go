package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Rorical/TermTwin/internal/config"
)

const (
	headerAccessID     = "CF-Access-Client-Id"
	headerAccessSecret = "CF-Access-Client-Secret"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage backend profiles",
	Long:  `Manage backend profiles: where the chat stream lives and how to reach it.`,
}

var listProfilesCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		fmt.Printf("Active Profile: %s\n\n", cfg.ActiveProfile)
		fmt.Println("Available Profiles:")
		for _, name := range cfg.ProfileNames() {
			profile := cfg.Profiles[name]
			marker := ""
			if name == cfg.ActiveProfile {
				marker = " (active)"
			}
			fmt.Printf("  %s%s\n", name, marker)
			if profile.BaseURL != "" {
				fmt.Printf("    Base URL: %s\n", profile.BaseURL)
			} else {
				fmt.Println("    Base URL: not configured")
			}
			fmt.Printf("    Mode: %s\n", orDefault(profile.Mode, "named"))
			fmt.Println()
		}
		return nil
	},
}

var showProfileCmd = &cobra.Command{
	Use:   "show [profile-name]",
	Short: "Show profile details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		profileName := strings.ToLower(args[0])
		profile, exists := cfg.Profiles[profileName]
		if !exists {
			return fmt.Errorf("profile '%s' does not exist", profileName)
		}

		fmt.Printf("Profile: %s\n", profileName)
		fmt.Printf("Base URL: %s\n", profile.BaseURL)
		fmt.Printf("Stream Path: %s\n", orDefault(profile.StreamPath, config.DefaultStreamPath))
		fmt.Printf("Mode: %s\n", orDefault(profile.Mode, "named"))
		fmt.Printf("Contact URL: %s\n", orDefault(profile.ContactURL, "(base url)"))
		fmt.Printf("Resume URL: %s\n", orDefault(profile.ResumeURL, "not set"))
		for name := range profile.Headers {
			// Header values may be secrets
			fmt.Printf("Header %s: set (hidden for security)\n", name)
		}
		return nil
	},
}

var addProfileCmd = &cobra.Command{
	Use:   "add [profile-name]",
	Short: "Add a new profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		var profileName string
		if len(args) > 0 {
			profileName = args[0]
		} else {
			prompt := promptui.Prompt{
				Label:    "Profile name",
				Validate: validateProfileName,
			}
			profileName, err = prompt.Run()
			if err != nil {
				return fmt.Errorf("prompt failed: %w", err)
			}
		}
		// The config loader lowercases map keys
		profileName = strings.ToLower(strings.TrimSpace(profileName))
		if err := validateProfileName(profileName); err != nil {
			return err
		}

		if _, exists := cfg.Profiles[profileName]; exists {
			return fmt.Errorf("profile '%s' already exists", profileName)
		}

		profile, err := promptProfile(config.DefaultProfile())
		if err != nil {
			return err
		}

		// Add profile to config
		cfg.Profiles[profileName] = profile

		// Save config
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Printf("Profile '%s' added successfully!\n", profileName)
		return nil
	},
}

var editProfileCmd = &cobra.Command{
	Use:   "edit [profile-name]",
	Short: "Edit an existing profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		profileName, err := pickProfile(cfg, args, "Select profile to edit", "")
		if err != nil {
			return err
		}

		profile, exists := cfg.Profiles[profileName]
		if !exists {
			return fmt.Errorf("profile '%s' does not exist", profileName)
		}

		profile, err = promptProfile(profile)
		if err != nil {
			return err
		}

		// Update profile in config
		cfg.Profiles[profileName] = profile

		// Save config
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Printf("Profile '%s' updated successfully!\n", profileName)
		return nil
	},
}

var deleteProfileCmd = &cobra.Command{
	Use:   "delete [profile-name]",
	Short: "Delete a profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		profileName, err := pickProfile(cfg, args, "Select profile to delete", "")
		if err != nil {
			return err
		}

		if _, exists := cfg.Profiles[profileName]; !exists {
			return fmt.Errorf("profile '%s' does not exist", profileName)
		}

		// Confirm deletion
		confirmPrompt := promptui.Prompt{
			Label:     fmt.Sprintf("Delete profile '%s'", profileName),
			IsConfirm: true,
		}
		if _, err := confirmPrompt.Run(); err != nil {
			fmt.Println("Deletion cancelled")
			return nil
		}

		removeProfile(cfg, profileName)

		// Save config
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Printf("Profile '%s' deleted successfully!\n", profileName)
		return nil
	},
}

var switchProfileCmd = &cobra.Command{
	Use:   "switch [profile-name]",
	Short: "Switch to a different profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		profileName, err := pickProfile(cfg, args, "Select profile to switch to", cfg.ActiveProfile)
		if errors.Is(err, errNoProfiles) {
			fmt.Println("No other profiles available to switch to")
			return nil
		}
		if err != nil {
			return err
		}

		if err := cfg.UseProfile(profileName); err != nil {
			return err
		}

		// Save config
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Printf("Switched to profile '%s'\n", cfg.ActiveProfile)
		return nil
	},
}

var errNoProfiles = errors.New("no profiles available")

// pickProfile returns the profile named in args, or asks the user to select
// one other than exclude.
func pickProfile(cfg *config.Config, args []string, label, exclude string) (string, error) {
	if len(args) > 0 {
		return strings.ToLower(args[0]), nil
	}

	// Let user select from existing profiles
	profileNames := make([]string, 0, len(cfg.Profiles))
	for _, name := range cfg.ProfileNames() {
		if name != exclude {
			profileNames = append(profileNames, name)
		}
	}
	if len(profileNames) == 0 {
		return "", errNoProfiles
	}

	prompt := promptui.Select{
		Label: label,
		Items: profileNames,
	}
	_, profileName, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("selection failed: %w", err)
	}
	return profileName, nil
}

// removeProfile deletes name, moving the active profile elsewhere. Deleting
// the last profile leaves an unconfigured default in its place.
func removeProfile(cfg *config.Config, name string) {
	delete(cfg.Profiles, name)
	if len(cfg.Profiles) == 0 {
		cfg.Profiles[config.DefaultProfileName] = config.Profile{}
	}
	if cfg.ActiveProfile == name {
		cfg.ActiveProfile = cfg.ProfileNames()[0]
	}
}

// promptProfile asks for every profile field, offering current values as
// defaults.
func promptProfile(current config.Profile) (config.Profile, error) {
	profile := current
	var err error

	baseURLPrompt := promptui.Prompt{
		Label:    "Base URL",
		Default:  current.BaseURL,
		Validate: validateURL(true),
	}
	if profile.BaseURL, err = baseURLPrompt.Run(); err != nil {
		return profile, fmt.Errorf("prompt failed: %w", err)
	}

	streamPathPrompt := promptui.Prompt{
		Label:   "Stream path",
		Default: orDefault(current.StreamPath, config.DefaultStreamPath),
	}
	if profile.StreamPath, err = streamPathPrompt.Run(); err != nil {
		return profile, fmt.Errorf("prompt failed: %w", err)
	}

	modes := []string{"named", "raw"}
	modePrompt := promptui.Select{
		Label:     "Stream framing (named: event frames, raw: proxied data blocks)",
		Items:     modes,
		CursorPos: indexOf(modes, current.Mode),
	}
	if _, profile.Mode, err = modePrompt.Run(); err != nil {
		return profile, fmt.Errorf("selection failed: %w", err)
	}

	contactPrompt := promptui.Prompt{
		Label:    "Contact URL (optional)",
		Default:  current.ContactURL,
		Validate: validateURL(false),
	}
	if profile.ContactURL, err = contactPrompt.Run(); err != nil {
		return profile, fmt.Errorf("prompt failed: %w", err)
	}

	resumePrompt := promptui.Prompt{
		Label:    "Resume URL (optional)",
		Default:  current.ResumeURL,
		Validate: validateURL(false),
	}
	if profile.ResumeURL, err = resumePrompt.Run(); err != nil {
		return profile, fmt.Errorf("prompt failed: %w", err)
	}

	// Cloudflare Access service token, sent with every request
	headers := make(map[string]string, len(current.Headers))
	for k, v := range current.Headers {
		headers[k] = v
	}
	for _, name := range []string{headerAccessID, headerAccessSecret} {
		key := strings.ToLower(name)
		prompt := promptui.Prompt{
			Label:   name + " (optional)",
			Default: headers[key],
			Mask:    '*',
		}
		value, err := prompt.Run()
		if err != nil {
			return profile, fmt.Errorf("prompt failed: %w", err)
		}
		if value = strings.TrimSpace(value); value != "" {
			headers[key] = value
		} else {
			delete(headers, key)
		}
	}
	profile.Headers = nil
	if len(headers) > 0 {
		profile.Headers = headers
	}

	return profile, nil
}

func validateProfileName(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("profile name cannot be empty")
	}
	if strings.ContainsAny(input, ". ") {
		return errors.New("profile name cannot contain dots or spaces")
	}
	return nil
}

func validateURL(required bool) promptui.ValidateFunc {
	return func(input string) error {
		input = strings.TrimSpace(input)
		if input == "" {
			if required {
				return errors.New("a URL is required")
			}
			return nil
		}
		u, err := url.Parse(input)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.New("enter an absolute http(s) URL")
		}
		return nil
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func indexOf(items []string, value string) int {
	for i, item := range items {
		if item == value {
			return i
		}
	}
	return 0
}

func init() {
	// Add subcommands to profile
	profileCmd.AddCommand(listProfilesCmd)
	profileCmd.AddCommand(showProfileCmd)
	profileCmd.AddCommand(addProfileCmd)
	profileCmd.AddCommand(editProfileCmd)
	profileCmd.AddCommand(deleteProfileCmd)
	profileCmd.AddCommand(switchProfileCmd)
}
