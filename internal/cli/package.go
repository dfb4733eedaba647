package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mamba-admin/internal/config"
	"mamba-admin/internal/pack"
	"mamba-admin/internal/project"
	"mamba-admin/internal/schema"
	"mamba-admin/internal/security"
)

// packageCmd groups the package building commands.
var packageCmd = &cobra.Command{
	Use:   "package",
	Short: "Build and install distributable packages",
	Long: `Builds a distributable archive out of the surrounding mamba application,
either as a source distribution or as an egg, and optionally installs it into
a package store.

Packing requires a README file, a LICENSE file and a docs directory at the
project root.`,
}

var packagePackCmd = &cobra.Command{
	Use:   "pack [options] [name]",
	Short: "Build a distributable archive",
	Long: `Builds the archive into the current directory. Without a name argument
the package is called mamba-{application}.

Examples:
  mamba-admin package pack
  mamba-admin package pack --egg --cfgdir mamba-blog`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPackagePack(args)
	},
}

var packageInstallCmd = &cobra.Command{
	Use:   "install [options] [name]",
	Short: "Build and install a package",
	Long: `Builds the archive like pack, validates it and copies it into the
package store: the per-user store with -u (the default), the system wide
store with -g.`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPackageInstall(args)
	},
}

func init() {
	packageCmd.AddCommand(packageInstallCmd)
	packageCmd.AddCommand(packagePackCmd)
}

func runPackagePack(argv []string) error {
	ctx := parseContext()
	cfg, err := parseSchema(schema.PackagePackSchema(ctx), argv)
	if err != nil {
		return err
	}

	root, meta, err := projectEnv()
	if err != nil {
		return err
	}

	outDir, err := os.Getwd()
	if err != nil {
		return err
	}

	artifact, err := buildArchive(cfg, root, meta, outDir)
	if err != nil {
		return err
	}
	fmt.Printf("📦 Built package %s\n", filepath.Base(artifact))
	return nil
}

func runPackageInstall(argv []string) error {
	ctx := parseContext()
	cfg, err := parseSchema(schema.PackageInstallSchema(ctx), argv)
	if err != nil {
		return err
	}

	root, meta, err := projectEnv()
	if err != nil {
		return err
	}

	store, err := packageStore(cfg.Bool("global"))
	if err != nil {
		return err
	}

	// Build into a scratch directory so a rejected archive never lands
	// anywhere visible.
	workDir, err := os.MkdirTemp("", "mamba-install-")
	if err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	artifact, err := buildArchive(cfg, root, meta, workDir)
	if err != nil {
		return err
	}

	validator := security.NewValidator(nil)
	if err := validator.ValidateArchive(artifact); err != nil {
		return fmt.Errorf("package failed validation: %w", err)
	}
	ok, name, err := pack.IsMambaPackage(artifact)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s is not a mamba package", filepath.Base(artifact))
	}

	packer := pack.NewPacker(root)
	if err := packer.Run([]string{"mkdir", store}); err != nil {
		return err
	}
	dest := filepath.Join(store, filepath.Base(artifact))
	if err := packer.Run([]string{"cp", artifact, dest}); err != nil {
		return err
	}

	fmt.Printf("✅ Installed %s into %s\n", name, store)
	return nil
}

// buildArchive turns a validated configuration plus the project metadata into
// a package descriptor and runs the packer.
func buildArchive(cfg *schema.Configuration, root string, meta *project.Metadata, outDir string) (string, error) {
	name := cfg.String("name")
	if name == "" {
		return "", fmt.Errorf("no package name given and none could be derived")
	}

	desc := pack.PackageDescriptor{
		Name:             name,
		Version:          meta.Version,
		Author:           cfg.String("author"),
		Email:            cfg.String("email"),
		EntryPoints:      cfg.StringMap("entry_points"),
		ExtraDirectories: cfg.StringList("extra_directories"),
		Egg:              cfg.Bool("egg"),
		IncludeConfig:    cfg.Bool("cfgdir"),
	}

	logger.Debug("packing", "name", desc.Name, "version", desc.Version,
		"artifact", desc.ArtifactName())
	return pack.NewPacker(root).Pack(desc, outDir)
}

// packageStore resolves the install destination: the user config override
// wins, then the system wide store with -g, then the per-user store.
func packageStore(global bool) (string, error) {
	userCfg, err := config.Load()
	if err == nil && userCfg.Packages.Store != "" {
		return userCfg.Packages.Store, nil
	}
	if global {
		return "/usr/local/share/mamba/packages", nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "mamba", "packages"), nil
}
