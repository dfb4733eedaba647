package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"mamba-admin/internal/config"
)

var (
	configAuthor string
	configEmail  string
	configStore  string
)

// configCmd shows or updates the per-user configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update the user configuration",
	Long: `Shows the user configuration kept in ~/.mamba-admin/config.toml. With
--author, --email or --store the named fields are updated and saved.

Examples:
  mamba-admin config
  mamba-admin config --author "Jane Doe" --email jane@example.com`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfig(cmd)
	},
}

func init() {
	configCmd.Flags().StringVar(&configAuthor, "author", "", "author name stamped into generated sources")
	configCmd.Flags().StringVar(&configEmail, "email", "", "author email stamped into generated sources")
	configCmd.Flags().StringVar(&configStore, "store", "", "package store directory override")
}

func runConfig(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	changed := false
	if cmd.Flags().Changed("author") {
		cfg.User.Author = configAuthor
		changed = true
	}
	if cmd.Flags().Changed("email") {
		cfg.User.Email = configEmail
		changed = true
	}
	if cmd.Flags().Changed("store") {
		cfg.Packages.Store = configStore
		changed = true
	}

	if changed {
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}
		fmt.Println("✅ Configuration saved")
	}

	path, err := config.Path()
	if err == nil {
		fmt.Printf("Configuration file: %s\n", path)
	}
	fmt.Printf("  user.author:    %s\n", valueOrUnset(cfg.User.Author))
	fmt.Printf("  user.email:     %s\n", valueOrUnset(cfg.User.Email))
	fmt.Printf("  packages.store: %s\n", valueOrUnset(cfg.Packages.Store))
	return nil
}

func valueOrUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}
