// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ExitStatus distinguishes a process that exited on its own from one
// that was killed or never started.
type ExitStatus int

const (
	NormalExit ExitStatus = 0
	CrashExit  ExitStatus = 1
)

// Result is the outcome of one command.
type Result struct {
	Output string
	Stderr string
	Status ExitStatus
	Code   int
}

// Failed reports whether the command crashed or exited non-zero.
func (r Result) Failed() bool {
	return r.Status != NormalExit || r.Code != 0
}

// Err returns an *ExitError for a failed result, nil otherwise.
func (r Result) Err() error {
	if !r.Failed() {
		return nil
	}
	return &ExitError{Status: r.Status, Code: r.Code, Stderr: strings.TrimSpace(r.Stderr)}
}

// ExitError describes a failed command.
type ExitError struct {
	Status ExitStatus
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	message := fmt.Sprintf("exit status %d, code %d", e.Status, e.Code)
	if e.Stderr != "" {
		message += ": " + e.Stderr
	}
	return message
}

// Runner runs one command to completion.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) Result
}

// Line joins a command into the form used for logging and for
// FakeRunner keys.
func Line(name string, args ...string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	env []string
}

// NewExecRunner returns a runner whose children inherit the current
// environment minus the locale variables.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{env: LocaleFree(os.Environ())}
}

// Run executes name with args. Cancelling ctx kills the process, which
// is then reported as a crash.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) Result {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = r.env
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{Output: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return result
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Exited() {
			result.Code = exitErr.ExitCode()
			return result
		}
		result.Status = CrashExit
		result.Code = -1
		return result
	}
	result.Status = CrashExit
	result.Code = -1
	if result.Stderr == "" {
		result.Stderr = err.Error()
	}
	return result
}

// LocaleFree returns environ without LC_ALL and LANG.
func LocaleFree(environ []string) []string {
	filtered := make([]string, 0, len(environ))
	for _, entry := range environ {
		if strings.HasPrefix(entry, "LC_ALL=") || strings.HasPrefix(entry, "LANG=") {
			continue
		}
		filtered = append(filtered, entry)
	}
	return filtered
}
