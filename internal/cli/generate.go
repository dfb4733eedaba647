package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"mamba-admin/internal/scaffold"
	"mamba-admin/internal/schema"
)

// The three generator commands share one execution path; only the schema and
// the artifact kind differ.

var controllerCmd = &cobra.Command{
	Use:   "controller [options] <name>",
	Short: "Generate a new controller",
	Long: `Generates a controller stub in application/controller/. The name is
normalized into a camel-case type and a lower-case file name.

Examples:
  mamba-admin controller posts
  mamba-admin controller --route=/api/posts --dump posts`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := parseContext()
		return runGenerate(ctx, scaffold.KindController, schema.ControllerSchema(ctx), args)
	},
}

var modelCmd = &cobra.Command{
	Use:   "model [options] <name> [table]",
	Short: "Generate a new model",
	Long: `Generates a model stub in application/model/ and appends its table
definition to db/schema.sql. The table name defaults to the normalized file
name.`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := parseContext()
		return runGenerate(ctx, scaffold.KindModel, schema.ModelSchema(ctx), args)
	},
}

var viewCmd = &cobra.Command{
	Use:   "view [options] <name> [controller]",
	Short: "Generate a new view",
	Long: `Generates a view stub in application/view/, optionally bound to the
named controller.`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := parseContext()
		return runGenerate(ctx, scaffold.KindView, schema.ViewSchema(ctx), args)
	},
}

func runGenerate(ctx schema.Context, kind string, s *schema.Schema, argv []string) error {
	cfg, err := parseSchema(s, argv)
	if err != nil {
		return err
	}

	author, _ := identity()
	artifact := scaffold.Artifact{
		Kind:        kind,
		Name:        cfg.String("name"),
		FileName:    cfg.String("filename"),
		Description: cfg.String("description"),
		Author:      author,
		Email:       cfg.String("email"),
		Year:        ctx.Year,
		Platforms:   cfg.String("platforms"),
		Route:       cfg.String("route"),
		Table:       cfg.String("table"),
		Controller:  cfg.String("controller"),
	}

	if cfg.Bool("dump") {
		source, err := artifact.Render()
		if err != nil {
			return err
		}
		fmt.Print(source)
		return nil
	}

	root, _, err := projectEnv()
	if err != nil {
		return err
	}

	path, err := scaffold.Write(root, artifact)
	if err != nil {
		return err
	}
	fmt.Printf("✅ Generated %s %s in %s\n", kind, artifact.Name, path)
	return nil
}
