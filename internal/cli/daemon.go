package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

const pidFile = "logs/mamba.pid"

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the application",
	Long: `Starts the surrounding mamba application detached from the terminal,
with its output redirected to the application log file. The child PID is
recorded in logs/mamba.pid.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStart()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the application",
	Long:  `Stops the application started with 'mamba-admin start'.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStop()
	},
}

func runStart() error {
	root, meta, err := projectEnv()
	if err != nil {
		return err
	}

	pidPath := filepath.Join(root, pidFile)
	if pid, err := readPID(pidPath); err == nil {
		if processAlive(pid) {
			return fmt.Errorf("application is already running (pid %d)", pid)
		}
		// Stale PID file from a dead process.
		logger.Debug("removing stale pid file", "pid", pid)
		os.Remove(pidPath)
	}

	logName := meta.LogFile
	if logName == "" {
		logName = meta.Name + ".log"
	}
	logPath := filepath.Join(root, "logs", logName)
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logOut, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logOut.Close()

	child := exec.Command("go", "run", ".")
	child.Dir = root
	child.Stdout = logOut
	child.Stderr = logOut
	child.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := child.Start(); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}
	pid := child.Process.Pid
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(pid)+"\n"), 0o644); err != nil {
		child.Process.Kill()
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	child.Process.Release()

	fmt.Printf("✅ Started %s (pid %d), logging to %s\n", meta.Name, pid, logPath)
	return nil
}

func runStop() error {
	root, meta, err := projectEnv()
	if err != nil {
		return err
	}

	pidPath := filepath.Join(root, pidFile)
	pid, err := readPID(pidPath)
	if err != nil {
		return fmt.Errorf("application is not running (no pid file): %w", err)
	}

	if processAlive(pid) {
		if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
			return fmt.Errorf("failed to stop pid %d: %w", pid, err)
		}
	} else {
		fmt.Printf("⚠️ Process %d is already gone, cleaning up\n", pid)
	}

	if err := os.Remove(pidPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove pid file: %w", err)
	}
	fmt.Printf("✅ Stopped %s\n", meta.Name)
	return nil
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("malformed pid file %s: %w", path, err)
	}
	return pid, nil
}

// processAlive probes pid with the null signal.
func processAlive(pid int) bool {
	return syscall.Kill(pid, 0) == nil
}
