package schema

import (
	"fmt"

	"mamba-admin/internal/console"
	"mamba-admin/internal/db"
)

// SQLConfigureSchema describes sql configure. After every cross-field rule
// has passed it derives the connection URI and stores it under "uri".
func SQLConfigureSchema() *Schema {
	s := &Schema{
		Name:     "sql configure",
		Synopsis: "[options]",
		MinArgs:  0,
		MaxArgs:  0,
		Options: []Option{
			{Name: "username", Shorthand: "u", Kind: String, Default: "",
				Usage: "database username"},
			{Name: "password", Shorthand: "p", Kind: String, Default: "",
				Usage: "database password"},
			{Name: "prompt", Kind: Flag, Default: false,
				Usage: "ask for the database password on the terminal"},
			{Name: "hostname", Shorthand: "H", Kind: String, Default: "",
				Usage: "database hostname"},
			{Name: "backend", Shorthand: "b", Kind: String, Default: db.SQLite,
				Usage: "database backend: sqlite, mysql or postgres"},
			{Name: "database", Shorthand: "d", Kind: String, Default: "",
				Usage: "database name"},
			{Name: "path", Kind: String, Default: "db/mamba.db",
				Usage: "database file path (sqlite backend only)"},
			{Name: "min-threads", Kind: Int, Default: 5,
				Usage: "minimum size of the connection pool"},
			{Name: "max-threads", Kind: Int, Default: 20,
				Usage: "maximum size of the connection pool"},
			{Name: "autoadjust-pool", Kind: Flag, Default: false,
				Usage: "adjust the connection pool size automatically"},
			{Name: "drop-table", Kind: Flag, Default: false,
				Usage: "drop tables before creating them"},
			{Name: "create-if-not-exists", Kind: Flag, Default: false,
				Usage: "create tables only when they do not already exist"},
			{Name: "noquestions", Shorthand: "n", Kind: Flag, Default: false,
				Usage: "do not ask questions"},
		},
	}
	s.PostParse = func(c *Configuration) error {
		if err := ValidateExclusive(c, "drop-table", "create-if-not-exists"); err != nil {
			return &UsageError{Err: err}
		}
		if v := c.Int("min-threads"); v <= 0 {
			return &UsageError{Err: fmt.Errorf(
				"%w: min-threads must be greater than zero, got %d", ErrOutOfRange, v)}
		}
		if err := ValidateRange("max-threads", c.Int("max-threads"), 5, 1024); err != nil {
			return &UsageError{Err: err}
		}

		uri, err := db.BuildURI(db.URIParams{
			Backend:  c.String("backend"),
			Username: c.String("username"),
			Password: c.String("password"),
			Hostname: c.String("hostname"),
			Database: c.String("database"),
			Path:     c.String("path"),
		})
		if err != nil {
			return &UsageError{Err: err}
		}
		c.Set("uri", uri)
		return nil
	}
	return s
}

// SQLCreateSchema describes sql create. Asking for dump and live together is
// not a usage error: the conflict is resolved through an interactive choice.
func SQLCreateSchema(ctx Context) *Schema {
	s := &Schema{
		Name:     "sql create",
		Synopsis: "[options] [file]",
		MinArgs:  0,
		MaxArgs:  1,
		Options: []Option{
			{Name: "dump", Shorthand: "d", Kind: Flag, Default: false,
				Usage: "dump the SQL script instead of executing it"},
			{Name: "live", Shorthand: "l", Kind: Flag, Default: false,
				Usage: "execute the SQL script against the configured database"},
		},
	}
	s.PostParse = func(c *Configuration) error {
		if c.Bool("dump") && c.Bool("live") {
			idx, err := console.Choice(ctx.Input,
				"What do you want to do. Dump the script or execute it?",
				"Dump it", "Execute it")
			if err != nil {
				return err
			}
			c.Set("dump", idx == 0)
			c.Set("live", idx == 1)
		}
		return nil
	}
	return s
}

// SQLDumpSchema describes sql dump, which writes the database contents to
// standard output or to the named file.
func SQLDumpSchema() *Schema {
	return &Schema{
		Name:     "sql dump",
		Synopsis: "[file]",
		MinArgs:  0,
		MaxArgs:  1,
	}
}

// SQLResetSchema describes sql reset, which restores the database to a
// pristine state after an interactive confirmation.
func SQLResetSchema() *Schema {
	return &Schema{
		Name:     "sql reset",
		Synopsis: "[-n]",
		MinArgs:  0,
		MaxArgs:  0,
		Options: []Option{
			{Name: "noquestions", Shorthand: "n", Kind: Flag, Default: false,
				Usage: "do not ask for confirmation"},
		},
	}
}
