/*
Copyright 2026 Richard Lupton

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package execrunner spawns the target command and reports its exit status.
package execrunner

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"

	"github.com/gravitational/trace"
)

// CommandRunner is a wrapper around [exec.Command] that is useful for
// testing. Run reports the command's exit code; a non-nil error means the
// command could not be launched at all, which callers must treat
// differently from a command that ran and failed.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (code int, err error)
}

// ExecRunner runs commands with the parent's stdio attached.
type ExecRunner struct{}

var _ CommandRunner = &ExecRunner{}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes name with args. A process that terminated normally yields
// its exit code; a process killed by a signal yields -1. Both are reported
// with a nil error. Spawn failures (executable not found, permission
// denied) are returned as an error with a zero code.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}

	return 0, trace.Wrap(err, "failed to run command %q", name)
}

// DryRunner is a dry runner that does not actually run the command.
// Instead, it logs the command that would have been run.
type DryRunner struct {
	log *slog.Logger
}

var _ CommandRunner = &DryRunner{}

// NewDryRunner creates a new dry runner.
func NewDryRunner(logger *slog.Logger) *DryRunner {
	return &DryRunner{
		log: logger,
	}
}

// Run logs the command that would have been run and reports success.
func (d *DryRunner) Run(ctx context.Context, name string, args ...string) (int, error) {
	d.log.InfoContext(ctx, "dry run", "name", name, "args", args)
	return 0, nil
}
