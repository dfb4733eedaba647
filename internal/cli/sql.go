package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mamba-admin/internal/console"
	"mamba-admin/internal/db"
	"mamba-admin/internal/project"
	"mamba-admin/internal/schema"
)

// sqlCmd groups the database manipulation commands.
var sqlCmd = &cobra.Command{
	Use:   "sql",
	Short: "Manipulate the application database",
	Long: `Configures the database connection and creates, dumps or resets the
application database. All sql commands run inside a mamba application
directory.`,
}

var sqlConfigureCmd = &cobra.Command{
	Use:   "configure [options]",
	Short: "Configure the database connection",
	Long: `Validates the connection options, builds the connection URI and writes
config/database.json.

Examples:
  mamba-admin sql configure
  mamba-admin sql configure -b mysql -u root -d blog -H db.example.com`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSQLConfigure(args)
	},
}

var sqlCreateCmd = &cobra.Command{
	Use:   "create [options] [file]",
	Short: "Create the database schema",
	Long: `Reads db/schema.sql and either dumps it (to stdout or the named file) or
executes it against the configured database with --live.`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSQLCreate(args)
	},
}

var sqlDumpCmd = &cobra.Command{
	Use:   "dump [file]",
	Short: "Dump the database contents as SQL",
	Long: `Connects to the configured database and writes INSERT statements for
every user table, to stdout or to the named file.`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSQLDump(args)
	},
}

var sqlResetCmd = &cobra.Command{
	Use:   "reset [-n]",
	Short: "Reset the database to a pristine state",
	Long: `Drops every user table and re-applies db/schema.sql. Asks for
confirmation unless -n is given.`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSQLReset(args)
	},
}

func init() {
	sqlCmd.AddCommand(sqlConfigureCmd)
	sqlCmd.AddCommand(sqlCreateCmd)
	sqlCmd.AddCommand(sqlDumpCmd)
	sqlCmd.AddCommand(sqlResetCmd)
}

func runSQLConfigure(argv []string) error {
	cfg, err := parseSchema(schema.SQLConfigureSchema(), argv)
	if err != nil {
		return err
	}

	root, _, err := projectEnv()
	if err != nil {
		return err
	}

	uri := cfg.String("uri")
	if cfg.Bool("prompt") {
		if !console.IsTerminal() {
			return fmt.Errorf("--prompt requires a terminal")
		}
		password, err := console.ReadPassword("database password: ")
		if err != nil {
			return err
		}
		uri, err = db.BuildURI(db.URIParams{
			Backend:  cfg.String("backend"),
			Username: cfg.String("username"),
			Password: password,
			Hostname: cfg.String("hostname"),
			Database: cfg.String("database"),
			Path:     cfg.String("path"),
		})
		if err != nil {
			return err
		}
	}

	dbCfg := &project.DatabaseConfig{
		URI:               uri,
		MinThreads:        cfg.Int("min-threads"),
		MaxThreads:        cfg.Int("max-threads"),
		AutoAdjustPool:    cfg.Bool("autoadjust-pool"),
		DropTable:         cfg.Bool("drop-table"),
		CreateIfNotExists: cfg.Bool("create-if-not-exists"),
	}
	if err := project.SaveDatabaseConfig(project.DatabasePath(root), dbCfg); err != nil {
		return err
	}

	fmt.Printf("✅ Database configured: %s\n", redactURI(uri))
	return nil
}

// redactURI hides the password part of a network connection URI in output.
func redactURI(uri string) string {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return uri
	}
	creds, hostPart, found := strings.Cut(rest, "@")
	if !found {
		return uri
	}
	user, _, hasPassword := strings.Cut(creds, ":")
	if !hasPassword {
		return uri
	}
	return scheme + "://" + user + ":***@" + hostPart
}

func runSQLCreate(argv []string) error {
	ctx := parseContext()
	cfg, err := parseSchema(schema.SQLCreateSchema(ctx), argv)
	if err != nil {
		return err
	}

	root, _, err := projectEnv()
	if err != nil {
		return err
	}

	script, err := os.ReadFile(filepath.Join(root, "db", "schema.sql"))
	if err != nil {
		return fmt.Errorf("failed to read database schema: %w", err)
	}

	if cfg.Bool("live") {
		conn, err := connectProject(root)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := conn.ExecScript(string(script)); err != nil {
			return err
		}
		fmt.Println("✅ Database schema created")
		return nil
	}

	if file := cfg.Arg(0); file != "" {
		if !strings.HasSuffix(file, ".sql") {
			file += ".sql"
		}
		if err := os.WriteFile(file, script, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", file, err)
		}
		fmt.Printf("✅ Schema dumped to %s\n", file)
		return nil
	}

	fmt.Print(string(script))
	return nil
}

func runSQLDump(argv []string) error {
	cfg, err := parseSchema(schema.SQLDumpSchema(), argv)
	if err != nil {
		return err
	}

	root, _, err := projectEnv()
	if err != nil {
		return err
	}

	conn, err := connectProject(root)
	if err != nil {
		return err
	}
	defer conn.Close()

	if file := cfg.Arg(0); file != "" {
		if !strings.HasSuffix(file, ".sql") {
			file += ".sql"
		}
		out, err := os.Create(file)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", file, err)
		}
		if err := conn.DumpInserts(out); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
		fmt.Printf("✅ Database dumped to %s\n", file)
		return nil
	}

	return conn.DumpInserts(os.Stdout)
}

func runSQLReset(argv []string) error {
	ctx := parseContext()
	cfg, err := parseSchema(schema.SQLResetSchema(), argv)
	if err != nil {
		return err
	}

	root, _, err := projectEnv()
	if err != nil {
		return err
	}

	if !cfg.Bool("noquestions") {
		ok, err := console.Confirm(ctx.Input,
			"This will delete all data in the database, continue?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted")
			return nil
		}
	}

	conn, err := connectProject(root)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.DropAll(); err != nil {
		return err
	}

	script, err := os.ReadFile(filepath.Join(root, "db", "schema.sql"))
	if err != nil {
		return fmt.Errorf("failed to read database schema: %w", err)
	}
	if err := conn.ExecScript(string(script)); err != nil {
		return err
	}

	fmt.Println("✅ Database reset")
	return nil
}

// connectProject opens the database configured in config/database.json.
// Relative sqlite paths resolve against the project root.
func connectProject(root string) (*db.DB, error) {
	dbCfg, err := project.LoadDatabaseConfig(project.DatabasePath(root))
	if err != nil {
		return nil, fmt.Errorf("database is not configured, run 'mamba-admin sql configure' first: %w", err)
	}

	uri := dbCfg.URI
	if path, ok := strings.CutPrefix(uri, "sqlite:"); ok && !filepath.IsAbs(path) {
		uri = "sqlite:" + filepath.Join(root, path)
	}

	logger.Debug("connecting to database", "uri", redactURI(uri))
	return db.Connect(uri)
}
