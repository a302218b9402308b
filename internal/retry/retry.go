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

// Package retry drives the attempt/wait/retry loop around a command.
package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/gravitational/trace"

	"github.com/rlupton20/retry/internal/execrunner"
	"github.com/rlupton20/retry/internal/logging"
	"github.com/rlupton20/retry/internal/loop"
)

type config struct {
	runner   execrunner.CommandRunner
	clock    loop.Clock
	logger   *slog.Logger
	loopOpts []loop.Option
}

// Option provides optional configuration to Run.
type Option func(*config)

// WithTimeout bounds the total wall-clock time spent retrying.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.loopOpts = append(c.loopOpts, loop.WithTimeout(d))
	}
}

// WithInterval enables the linear backoff schedule with base interval d.
func WithInterval(d time.Duration) Option {
	return func(c *config) {
		c.loopOpts = append(c.loopOpts, loop.WithInterval(d))
	}
}

// WithMaxIterations bounds the number of retries.
func WithMaxIterations(n int) Option {
	return func(c *config) {
		c.loopOpts = append(c.loopOpts, loop.WithMaxIterations(n))
	}
}

// WithRunner sets the command runner. Defaults to an exec-backed runner
// with the parent's stdio attached.
func WithRunner(r execrunner.CommandRunner) Option {
	return func(c *config) {
		if r != nil {
			c.runner = r
		}
	}
}

// WithClock sets the time source for both the schedule and the sleeps.
func WithClock(clock loop.Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets the logger used for per-iteration diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger == nil {
			logger = logging.DiscardLogger
		}
		c.logger = logger
	}
}

// Run executes name with args until it exits zero, or until one of the
// configured bounds stops the loop. A command that ran and exited non-zero
// is retried; a command that could not be launched aborts immediately, as
// do loop.ErrTimeout, loop.ErrMaximumIterations, loop.ErrClockSkew and
// context cancellation.
func Run(ctx context.Context, name string, args []string, opts ...Option) error {
	cfg := config{
		runner: execrunner.NewExecRunner(),
		clock:  loop.SystemClock{},
		logger: logging.DiscardLogger,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	manager := loop.NewManager(append(cfg.loopOpts, loop.WithClock(cfg.clock))...)

	for {
		if err := ctx.Err(); err != nil {
			return trace.Wrap(err)
		}

		code, err := cfg.runner.Run(ctx, name, args...)
		if err != nil {
			return trace.Wrap(err)
		}
		if code == 0 {
			return nil
		}

		cfg.logger.DebugContext(ctx, "command failed", "code", code)

		if err := manager.Step(); err != nil {
			return trace.Wrap(err)
		}

		if status, err := manager.Status(); err == nil {
			cfg.logger.DebugContext(ctx, "loop manager status", "status", status)
		}

		wait, err := manager.Interval()
		if err != nil {
			return trace.Wrap(err)
		}

		if err := cfg.clock.Sleep(ctx, wait); err != nil {
			return trace.Wrap(err)
		}
	}
}
