package schema

import (
	"strings"

	"mamba-admin/internal/naming"
)

// ApplicationSchema describes the application command, which scaffolds a new
// project. The positional name is canonicalized into the "name" value.
func ApplicationSchema() *Schema {
	s := &Schema{
		Name:     "application",
		Synopsis: "[options] <name>",
		MinArgs:  1,
		MaxArgs:  1,
		Options: []Option{
			{Name: "port", Shorthand: "p", Kind: Int, Default: 1936,
				Usage: "port the application listens on"},
			{Name: "app-version", Kind: String, Default: "1.0",
				Usage: "initial application version"},
			{Name: "configfile", Kind: String, Default: "application.json",
				Usage: "name of the application configuration file"},
			{Name: "description", Kind: String, Default: "A new Mamba application",
				Usage: "application description"},
			{Name: "logfile", Shorthand: "l", Kind: String, Default: "",
				Usage: "log file name (a .log extension is added when missing)",
				Normalize: logFileName},
			{Name: "noquestions", Shorthand: "n", Kind: Flag, Default: false,
				Usage: "do not ask questions, accept sane defaults"},
			{Name: "git", Shorthand: "g", Kind: Flag, Default: false,
				Usage: "initialize a git repository in the new project"},
		},
	}
	s.PostParse = func(c *Configuration) error {
		c.Set("name", naming.AppName(c.Arg(0)))
		return nil
	}
	return s
}

// logFileName appends the .log extension to non-empty names that lack it.
func logFileName(name string) string {
	if name == "" || strings.HasSuffix(name, ".log") {
		return name
	}
	return name + ".log"
}
