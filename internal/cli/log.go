package cli

import (
	"os"

	"github.com/charmbracelet/log"
)

// logger carries diagnostic output. User-facing output stays on plain
// fmt.Printf; only --verbose diagnostics go through here.
var logger = log.NewWithOptions(os.Stderr, log.Options{
	Level:           log.WarnLevel,
	ReportTimestamp: false,
})

// setupLogging reconfigures the package logger for the requested verbosity.
func setupLogging(verbose bool) {
	if verbose {
		logger.SetLevel(log.DebugLevel)
		logger.SetReportCaller(true)
		return
	}
	logger.SetLevel(log.WarnLevel)
	logger.SetReportCaller(false)
}
