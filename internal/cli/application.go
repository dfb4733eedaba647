package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mamba-admin/internal/console"
	"mamba-admin/internal/scaffold"
	"mamba-admin/internal/schema"
)

// applicationCmd scaffolds a new mamba application tree.
var applicationCmd = &cobra.Command{
	Use:   "application [options] <name>",
	Short: "Create a new mamba application",
	Long: `Creates the directory tree of a new mamba application: controller, model
and view directories, the configuration files, an empty database schema and a
runnable placeholder main.go listening on the configured port.

Examples:
  mamba-admin application blog
  mamba-admin application --port=8080 --git "my blog"`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApplication(args)
	},
}

func runApplication(argv []string) error {
	ctx := parseContext()
	cfg, err := parseSchema(schema.ApplicationSchema(), argv)
	if err != nil {
		return err
	}

	name := cfg.String("name")
	author, email := identity()
	app := scaffold.App{
		Name:        name,
		Description: cfg.String("description"),
		Version:     cfg.String("app-version"),
		Port:        cfg.Int("port"),
		LogFile:     cfg.String("logfile"),
		ConfigFile:  cfg.String("configfile"),
		Author:      author,
		Email:       email,
		Git:         cfg.Bool("git"),
	}

	target := filepath.Join(".", name)
	if _, err := os.Stat(target); err == nil {
		if cfg.Bool("noquestions") {
			return fmt.Errorf("directory %s already exists", target)
		}
		ok, err := console.Confirm(ctx.Input,
			fmt.Sprintf("Directory %s already exists, delete and recreate it?", target))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted")
			return nil
		}
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("failed to remove %s: %w", target, err)
		}
	}

	logger.Debug("scaffolding application", "name", name, "port", app.Port)
	root, err := scaffold.Create(app, ".")
	if err != nil {
		return err
	}

	fmt.Printf("✅ Created application %s in %s\n", name, root)
	fmt.Println("Next steps:")
	fmt.Printf("   cd %s\n", name)
	fmt.Println("   mamba-admin sql configure")
	fmt.Println("   mamba-admin start")
	return nil
}
