package schema

import "mamba-admin/internal/naming"

// generatorOptions returns the options shared by the controller, model and
// view generators. The default author email is derived from the invoking
// user and is accepted without validation; only addresses the user supplies
// explicitly are checked.
func generatorOptions(ctx Context) []Option {
	return []Option{
		{Name: "description", Kind: String, Default: "",
			Usage: "description of the generated component"},
		{Name: "email", Kind: String, Default: ctx.User + "@localhost",
			Usage: "author email written into the generated header"},
		{Name: "dump", Shorthand: "d", Kind: Flag, Default: false,
			Usage: "dump the generated code to standard output"},
	}
}

// ControllerSchema describes the controller command.
func ControllerSchema(ctx Context) *Schema {
	s := &Schema{
		Name:     "controller",
		Synopsis: "[options] <name>",
		MinArgs:  1,
		MaxArgs:  1,
		Options: append(generatorOptions(ctx),
			Option{Name: "platforms", Kind: String, Default: "Linux",
				Usage: "comma separated list of supported platforms"},
			Option{Name: "route", Kind: String, Default: "",
				Usage: "route the controller is registered under"},
		),
	}
	s.PostParse = normalizeArtifact
	return s
}

// ModelSchema describes the model command. The optional second positional
// names the table the model maps to; it defaults to the model file name.
func ModelSchema(ctx Context) *Schema {
	s := &Schema{
		Name:     "model",
		Synopsis: "[options] <name> [table]",
		MinArgs:  1,
		MaxArgs:  2,
		Options: append(generatorOptions(ctx),
			Option{Name: "platforms", Kind: String, Default: "Linux",
				Usage: "comma separated list of supported platforms"},
		),
	}
	s.PostParse = func(c *Configuration) error {
		if err := normalizeArtifact(c); err != nil {
			return err
		}
		table := c.Arg(1)
		if table == "" {
			table = c.String("filename")
		}
		c.Set("table", table)
		return nil
	}
	return s
}

// ViewSchema describes the view command. The optional second positional
// names the controller the view renders for.
func ViewSchema(ctx Context) *Schema {
	s := &Schema{
		Name:     "view",
		Synopsis: "[options] <name> [controller]",
		MinArgs:  1,
		MaxArgs:  2,
		Options:  generatorOptions(ctx),
	}
	s.PostParse = func(c *Configuration) error {
		if err := normalizeArtifact(c); err != nil {
			return err
		}
		c.Set("controller", c.Arg(1))
		return nil
	}
	return s
}

// normalizeArtifact derives the canonical component and file names from the
// first positional and validates a user-supplied email address.
func normalizeArtifact(c *Configuration) error {
	if c.Supplied("email") {
		if err := ValidateEmail(c.String("email")); err != nil {
			return err
		}
	}
	c.Set("name", naming.Identifier(c.Arg(0)))
	c.Set("filename", naming.FileName(c.Arg(0)))
	return nil
}
