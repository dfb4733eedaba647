package schema

import "strings"

// packageOptions returns the options shared by package pack and package
// install. Both email defaults follow the invoking user; entry points and
// extra directories arrive as JSON text on the command line.
func packageOptions(ctx Context) []Option {
	return []Option{
		{Name: "author", Kind: String, Default: ctx.User,
			Usage: "package author"},
		{Name: "email", Kind: String, Default: ctx.User + "@localhost",
			Usage: "package author email"},
		{Name: "entry_points", Kind: JSONMap, Default: "{}",
			Usage: "entry points exposed by the package, as a JSON object"},
		{Name: "extra_directories", Kind: JSONList, Default: "[]",
			Usage: "extra directories to bundle, as a JSON array"},
	}
}

// PackagePackSchema describes package pack.
func PackagePackSchema(ctx Context) *Schema {
	s := &Schema{
		Name:     "package pack",
		Synopsis: "[options] [name]",
		MinArgs:  0,
		MaxArgs:  1,
		Options: append(packageOptions(ctx),
			Option{Name: "egg", Shorthand: "e", Kind: Flag, Default: false,
				Usage: "build an egg archive instead of a source distribution"},
			Option{Name: "cfgdir", Shorthand: "c", Kind: Flag, Default: false,
				Usage: "bundle the config directory into the package"},
		),
	}
	s.PostParse = func(c *Configuration) error {
		return finishPackage(ctx, c)
	}
	return s
}

// PackageInstallSchema describes package install. The user and global store
// switches are mutually exclusive.
func PackageInstallSchema(ctx Context) *Schema {
	s := &Schema{
		Name:     "package install",
		Synopsis: "[options] [name]",
		MinArgs:  0,
		MaxArgs:  1,
		Options: append(packageOptions(ctx),
			Option{Name: "user", Shorthand: "u", Kind: Flag, Default: false,
				Usage: "install into the per-user package store"},
			Option{Name: "global", Shorthand: "g", Kind: Flag, Default: false,
				Usage: "install into the system wide package store"},
		),
	}
	s.PostParse = func(c *Configuration) error {
		if err := ValidateExclusive(c, "user", "global"); err != nil {
			return &UsageError{Err: err}
		}
		return finishPackage(ctx, c)
	}
	return s
}

// finishPackage validates a user-supplied email address and derives the
// package name: the positional when given, otherwise mamba-<project name>.
func finishPackage(ctx Context, c *Configuration) error {
	if c.Supplied("email") {
		if err := ValidateEmail(c.String("email")); err != nil {
			return err
		}
	}
	name := c.Arg(0)
	if name == "" && ctx.ProjectName != "" {
		name = "mamba-" + strings.ToLower(ctx.ProjectName)
	}
	c.Set("name", name)
	return nil
}
