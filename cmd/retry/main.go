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

// Command retry runs a command in a loop until it succeeds.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/gravitational/trace"

	"github.com/rlupton20/retry/internal/execrunner"
	"github.com/rlupton20/retry/internal/logging"
	"github.com/rlupton20/retry/internal/loop"
	"github.com/rlupton20/retry/internal/retry"
)

// Exit codes follow the coreutils timeout convention where one exists, so
// the three failure kinds stay distinguishable to callers.
const (
	exitTimeout           = 124
	exitMaximumIterations = 125
	exitSpawnFailure      = 126
	exitInterrupted       = 130
	exitFailure           = 1
)

type config struct {
	Command           []string
	TimeoutSeconds    float64
	IntervalSeconds   float64
	MaximumIterations int
	Verbosity         int
	DryRun            bool
}

// Negative defaults mark optional bounds as unset; an explicit zero is a
// meaningful value (a zero timeout expires on the first retry).
func parseCLI(args []string) *config {
	c := &config{}

	app := kingpin.New("retry", "Run a command in a loop until it succeeds.")

	// Everything after the first positional token belongs to the target
	// command, including anything that looks like a flag.
	app.Interspersed(false)

	app.Arg("command", "The command to run, followed by its arguments").
		Required().
		StringsVar(&c.Command)

	app.Flag("timeout", "Give up after this many seconds of total elapsed time").
		Short('t').
		Default("-1").
		Float64Var(&c.TimeoutSeconds)

	app.Flag("interval", "Base interval between attempts, in seconds; the wait grows linearly with the iteration count").
		Short('i').
		Default("-1").
		Float64Var(&c.IntervalSeconds)

	app.Flag("maximum-iterations", "Give up after this many iterations").
		Short('m').
		Default("-1").
		IntVar(&c.MaximumIterations)

	app.Flag("verbose", "Increase log verbosity; repeat for more detail").
		Short('v').
		CounterVar(&c.Verbosity)

	app.Flag("dry-run", "Print the command instead of running it").
		BoolVar(&c.DryRun)

	kingpin.MustParse(app.Parse(args))

	return c
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func (c *config) retryOptions() []retry.Option {
	opts := []retry.Option{}

	if c.TimeoutSeconds >= 0 {
		opts = append(opts, retry.WithTimeout(seconds(c.TimeoutSeconds)))
	}
	if c.IntervalSeconds >= 0 {
		opts = append(opts, retry.WithInterval(seconds(c.IntervalSeconds)))
	}
	if c.MaximumIterations >= 0 {
		opts = append(opts, retry.WithMaxIterations(c.MaximumIterations))
	}

	return opts
}

// exitCode maps a loop failure to the process exit code.
func exitCode(err error) int {
	var execErr *exec.Error

	switch {
	case err == nil:
		return 0
	case errors.Is(err, loop.ErrTimeout):
		return exitTimeout
	case errors.Is(err, loop.ErrMaximumIterations):
		return exitMaximumIterations
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	case errors.As(err, &execErr):
		return exitSpawnFailure
	default:
		return exitFailure
	}
}

func run(ctx context.Context, c *config) error {
	logger := logging.New(os.Stderr, c.Verbosity)
	logger.DebugContext(ctx, "got arguments", "command", c.Command,
		"timeout", c.TimeoutSeconds, "interval", c.IntervalSeconds,
		"maximum_iterations", c.MaximumIterations)

	opts := c.retryOptions()
	opts = append(opts, retry.WithLogger(logger))
	if c.DryRun {
		opts = append(opts, retry.WithRunner(execrunner.NewDryRunner(logger)))
	}

	return trace.Wrap(retry.Run(ctx, c.Command[0], c.Command[1:], opts...))
}

func main() {
	c := parseCLI(os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, c); err != nil {
		fmt.Fprintf(os.Stderr, "retry: %v\n", trace.UserMessage(err))
		os.Exit(exitCode(err))
	}
}
