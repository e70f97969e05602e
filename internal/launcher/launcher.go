// Package launcher starts client applications against the compositor's
// display socket.
package launcher

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// DefaultShell runs every launched command line.
const DefaultShell = "/bin/sh"

// DisplayEnv is the variable clients read to find the display socket.
const DisplayEnv = "WAYLAND_DISPLAY"

// Launcher runs shell command lines detached from the compositor.
type Launcher struct {
	Shell  string
	Logger *slog.Logger
}

var startCommand = func(cmd *exec.Cmd) error { return cmd.Start() }

// New returns a launcher using DefaultShell.
func New(logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Launcher{Shell: DefaultShell, Logger: logger}
}

// Launch runs commandLine through the shell with socket exported as the
// display. It returns once the process has started.
func (l *Launcher) Launch(commandLine, socket string) (int, error) {
	commandLine = strings.TrimSpace(commandLine)
	if commandLine == "" {
		return 0, fmt.Errorf("empty command line")
	}
	shell := l.Shell
	if shell == "" {
		shell = DefaultShell
	}

	cmd := exec.Command(shell, "-c", commandLine)
	cmd.Env = Environ(os.Environ(), socket)
	// Own process group so terminal signals to the compositor skip clients.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := startCommand(cmd); err != nil {
		return 0, fmt.Errorf("failed to launch %q: %w", commandLine, err)
	}
	pid := 0
	if cmd.Process != nil {
		pid = cmd.Process.Pid
		go func() {
			if err := cmd.Wait(); err != nil && l.Logger != nil {
				l.Logger.Debug("client exited", "command", commandLine, "error", err)
			}
		}()
	}
	if l.Logger != nil {
		l.Logger.Info("launched client", "command", commandLine, "pid", pid, DisplayEnv, socket)
	}
	return pid, nil
}

// Environ returns env with the display variable replaced by socket.
func Environ(env []string, socket string) []string {
	prefix := DisplayEnv + "="
	out := make([]string, 0, len(env)+1)
	for _, kv := range env {
		if !strings.HasPrefix(kv, prefix) {
			out = append(out, kv)
		}
	}
	if socket != "" {
		out = append(out, prefix+socket)
	}
	return out
}
