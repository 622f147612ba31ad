// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/qnetctl/qnetctl/lib/clock"
	"github.com/qnetctl/qnetctl/lib/config"
)

// dialInterval is the delay between connection attempts while a
// freshly launched helper starts listening.
const dialInterval = 100 * time.Millisecond

// helperLaunch describes how to reach the helper.
type helperLaunch struct {
	socket string

	// argv starts the helper when nothing listens on socket. Empty
	// means connect only.
	argv []string

	timeout time.Duration
	clock   clock.Clock
}

// helperProcess is a helper started by this front end.
type helperProcess struct {
	cmd    *exec.Cmd
	exited chan error
}

// wait reaps the helper after it was told to quit, killing it if it
// does not exit within timeout.
func (p *helperProcess) wait(timeout time.Duration, logger *slog.Logger) {
	select {
	case err := <-p.exited:
		if err != nil {
			logger.Warn("helper exited with an error", "error", err)
		}
	case <-time.After(timeout):
		logger.Warn("helper did not exit after quit, killing it", "pid", p.cmd.Process.Pid)
		p.cmd.Process.Kill()
		<-p.exited
	}
}

// release leaves a helper that may still be serving running.
func (p *helperProcess) release() {
	go func() { <-p.exited }()
}

// helperArgv returns the command line that starts the helper through
// the leverage prefix.
func helperArgv(cfg *config.Config, toolPath, configPath string) []string {
	argv := cfg.LeverageCommand(os.Getpid())
	argv = append(argv, toolPath,
		"--socket", cfg.Paths.Socket,
		"--owner-uid", strconv.Itoa(os.Getuid()),
	)
	if configPath != "" {
		if absolute, err := filepath.Abs(configPath); err == nil {
			configPath = absolute
		}
		argv = append(argv, "--config", configPath)
	}
	return argv
}

// connectHelper connects to a running helper, or launches one and
// waits for its socket. The returned process is nil when the helper
// was already running.
func connectHelper(ctx context.Context, launch helperLaunch, logger *slog.Logger) (net.Conn, *helperProcess, error) {
	conn, err := net.Dial("unix", launch.socket)
	if err == nil {
		logger.Debug("connected to running helper", "socket", launch.socket)
		return conn, nil, nil
	}
	if len(launch.argv) == 0 {
		return nil, nil, fmt.Errorf("helper not running at %s and qnetctl-tool not found (checked next to qnetctl and PATH): %w", launch.socket, err)
	}

	logger.Info("starting helper", "argv", launch.argv)
	cmd := exec.Command(launch.argv[0], launch.argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("starting helper: %w", err)
	}
	process := &helperProcess{cmd: cmd, exited: make(chan error, 1)}
	go func() { process.exited <- cmd.Wait() }()

	deadline := launch.clock.After(launch.timeout)
	for {
		select {
		case err := <-process.exited:
			if err == nil {
				err = errors.New("exited without error")
			}
			return nil, nil, fmt.Errorf("helper exited before listening on %s: %w", launch.socket, err)
		case <-deadline:
			cmd.Process.Kill()
			<-process.exited
			return nil, nil, fmt.Errorf("helper did not listen on %s within %s", launch.socket, launch.timeout)
		case <-ctx.Done():
			cmd.Process.Kill()
			<-process.exited
			return nil, nil, ctx.Err()
		case <-launch.clock.After(dialInterval):
		}

		conn, err := net.Dial("unix", launch.socket)
		if err == nil {
			logger.Info("connected to helper", "socket", launch.socket, "pid", cmd.Process.Pid)
			return conn, process, nil
		}
		logger.Debug("helper not listening yet", "error", err)
	}
}

// findSiblingBinary looks for a qnetctl binary by name, first next to
// this binary, then on PATH. Returns an empty string if not found.
func findSiblingBinary(name string, logger *slog.Logger) string {
	executable, err := os.Executable()
	if err == nil {
		candidate := filepath.Join(filepath.Dir(executable), name)
		if _, err := os.Stat(candidate); err == nil {
			logger.Debug("found binary next to qnetctl", "name", name, "path", candidate)
			return candidate
		}
	}

	path, err := exec.LookPath(name)
	if err == nil {
		logger.Debug("found binary on PATH", "name", name, "path", path)
		return path
	}

	return ""
}
