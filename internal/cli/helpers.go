package cli

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"time"

	"mamba-admin/internal/config"
	"mamba-admin/internal/console"
	"mamba-admin/internal/project"
	"mamba-admin/internal/schema"
)

// identity resolves the author name and email the generators and the packer
// stamp into their output: the user config wins, then the os user, then a
// {user}@localhost fallback for the email.
func identity() (author, email string) {
	cfg, err := config.Load()
	if err == nil {
		author = cfg.User.Author
		email = cfg.User.Email
	}
	if author == "" {
		if u, err := user.Current(); err == nil && u.Username != "" {
			author = u.Username
		} else {
			author = os.Getenv("USER")
		}
	}
	if email == "" {
		email = author + "@localhost"
	}
	return author, email
}

// parseContext assembles the ambient values the schema engine is not allowed
// to read itself. The project name stays empty outside a project.
func parseContext() schema.Context {
	author, _ := identity()

	ctx := schema.Context{
		User:  author,
		Year:  time.Now().Year(),
		Input: console.Stdin(),
	}
	if root, err := project.Root(); err == nil {
		if meta, err := project.LoadMetadata(project.MetadataPath(root)); err == nil {
			ctx.ProjectName = meta.Name
		}
	}
	return ctx
}

// parseSchema runs the schema over the raw argument vector. A usage error
// picks up the schema's usage line so the driver prints both.
func parseSchema(s *schema.Schema, argv []string) (*schema.Configuration, error) {
	cfg, err := s.Parse(argv)
	if err != nil {
		var usage *schema.UsageError
		if errors.As(err, &usage) {
			return nil, fmt.Errorf("%s\n%s", usage.Error(), s.Usage())
		}
		return nil, err
	}
	return cfg, nil
}

// projectEnv locates the surrounding project and loads its metadata; most
// commands need both or neither.
func projectEnv() (string, *project.Metadata, error) {
	root, err := project.Root()
	if err != nil {
		return "", nil, err
	}
	meta, err := project.LoadMetadata(project.MetadataPath(root))
	if err != nil {
		return "", nil, err
	}
	return root, meta, nil
}
