// Package spawn starts helper programs for the window manager.
package spawn

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// MaxArgs caps the words taken from a command line; the rest are dropped.
const MaxArgs = 20

// ErrEmptyCommand is returned for a command with no words.
var ErrEmptyCommand = errors.New("empty command")

// Spawner runs commands in their own session so they outlive the window
// manager and do not receive its signals.
type Spawner struct {
	logger *slog.Logger

	// Replaced in tests.
	lookPath func(string) (string, error)
	setsid   func() error
	execve   func(string, []string, []string) error
}

func New(logger *slog.Logger) *Spawner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Spawner{
		logger:   logger,
		lookPath: exec.LookPath,
		setsid: func() error {
			_, err := syscall.Setsid()
			return err
		},
		execve: syscall.Exec,
	}
}

// Split breaks a command line on blanks. No quoting is interpreted.
func Split(command string) []string {
	args := strings.Fields(command)
	if len(args) > MaxArgs {
		args = args[:MaxArgs]
	}
	return args
}

// Spawn starts command in the background and reaps it when it exits.
func (s *Spawner) Spawn(command string) error {
	args := Split(command)
	if len(args) == 0 {
		return ErrEmptyCommand
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to spawn %q: %w", args[0], err)
	}
	s.logger.Debug("spawned", "command", args[0], "pid", cmd.Process.Pid)

	go func() {
		if err := cmd.Wait(); err != nil {
			s.logger.Debug("child exited", "command", args[0], "error", err)
		}
	}()
	return nil
}

// Replace executes command in place of the current process. It only
// returns on failure.
func (s *Spawner) Replace(command string) error {
	return s.Exec(Split(command))
}

// Exec replaces the current process with argv, searching $PATH for
// argv[0]. It only returns on failure.
func (s *Spawner) Exec(argv []string) error {
	if len(argv) == 0 {
		return ErrEmptyCommand
	}
	path, err := s.lookPath(argv[0])
	if err != nil {
		return fmt.Errorf("failed to find %q: %w", argv[0], err)
	}
	if err := s.setsid(); err != nil {
		s.logger.Debug("setsid failed", "error", err)
	}
	s.logger.Info("replacing process", "command", path)
	if err := s.execve(path, argv, os.Environ()); err != nil {
		return fmt.Errorf("failed to exec %q: %w", path, err)
	}
	return nil
}
