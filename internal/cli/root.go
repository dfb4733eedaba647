// Package cli wires the mamba-admin command tree. Commands backed by a
// configuration schema disable cobra flag parsing and hand the raw argument
// vector to the schema engine; cobra only routes.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mamba-admin/internal/schema"
)

var verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mamba-admin",
	Short: "Mamba framework administration tool",
	Long: `mamba-admin scaffolds, configures and packages Mamba web applications.

It creates new application trees, generates controllers, models and views,
configures and manipulates the project database, controls the running
application and builds distributable package archives.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(verbose)
	},
}

// Execute runs the command tree and returns the process exit code. All error
// classification lives here: a Rejection is printed verbatim to stdout, a
// UsageError gets the error prefix plus its usage line on stderr, everything
// else gets the error prefix alone.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		var rejection *schema.Rejection
		if errors.As(err, &rejection) {
			fmt.Println(rejection.Message)
			return 1
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func init() {
	// Registration order is the published command order.
	cobra.EnableCommandSorting = false

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(applicationCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(controllerCmd)
	rootCmd.AddCommand(modelCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(packageCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(configCmd)
}
