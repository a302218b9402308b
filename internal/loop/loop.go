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

// Package loop contains the state machine that decides whether a failed
// command should be retried, how long to wait before the next attempt,
// and when to give up.
package loop

import (
	"errors"
	"fmt"
	"time"

	"github.com/gravitational/trace"
)

var (
	// ErrTimeout is returned by Step once the configured timeout has elapsed.
	ErrTimeout = errors.New("retrying command did not succeed due to timeout")

	// ErrMaximumIterations is returned by Step once the configured iteration
	// bound has been reached.
	ErrMaximumIterations = errors.New("retrying command reached maximum iterations")

	// ErrClockSkew is returned when the wall clock reports a time before the
	// loop started. Duration arithmetic cannot be trusted past that point.
	ErrClockSkew = errors.New("system clock moved backwards while retrying")
)

// Manager tracks elapsed time and the iteration count for a single retry
// loop, and owns the stop/continue/wait decision. One Manager is created
// per invocation and is never reset: once Step reports a terminal error
// the loop must stop.
//
// Manager is not safe for concurrent use; the loop driver owns it
// exclusively.
type Manager struct {
	clock Clock
	start time.Time

	timeout       time.Duration
	hasTimeout    bool
	interval      time.Duration
	hasInterval   bool
	maxIterations int
	hasMax        bool

	iteration int
}

// Option provides optional configuration to a Manager.
type Option func(*Manager)

// WithTimeout bounds the total wall-clock time spent retrying. A zero
// timeout is a valid bound that expires on the first Step.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.timeout = d
		m.hasTimeout = true
	}
}

// WithInterval sets the base interval of the linear backoff schedule: the
// wait before iteration k targets interval*k from loop start.
func WithInterval(d time.Duration) Option {
	return func(m *Manager) {
		m.interval = d
		m.hasInterval = true
	}
}

// WithMaxIterations bounds the number of retries. For compatibility with
// the original tool the bound is applied as iteration+1 < max, so a bound
// of N permits N-1 retries. See Step.
func WithMaxIterations(n int) Option {
	return func(m *Manager) {
		m.maxIterations = n
		m.hasMax = true
	}
}

// WithClock sets the time source. Defaults to SystemClock.
func WithClock(c Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// NewManager creates a Manager and captures the loop start time.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		clock: SystemClock{},
	}

	for _, opt := range opts {
		opt(m)
	}

	m.start = m.clock.Now()
	return m
}

// Elapsed returns the wall-clock time since the loop started.
func (m *Manager) Elapsed() (time.Duration, error) {
	elapsed := m.clock.Now().Sub(m.start)
	if elapsed < 0 {
		return 0, trace.Wrap(ErrClockSkew)
	}
	return elapsed, nil
}

// Step advances the loop after a failed attempt. It returns ErrTimeout or
// ErrMaximumIterations when the corresponding bound has been reached,
// otherwise it increments the iteration counter and returns nil.
func (m *Manager) Step() error {
	if m.hasTimeout {
		elapsed, err := m.Elapsed()
		if err != nil {
			return trace.Wrap(err)
		}
		if elapsed >= m.timeout {
			return trace.Wrap(ErrTimeout)
		}
	}

	// Preserved off-by-one from the original tool: a bound of N stops
	// after N-1 increments.
	if m.hasMax && m.iteration+1 >= m.maxIterations {
		return trace.Wrap(ErrMaximumIterations)
	}

	m.iteration++
	return nil
}

// Interval returns how long to sleep before the next attempt. The schedule
// is anchored to the loop start rather than the previous attempt, so time
// spent running the command does not accumulate as drift. The result never
// goes negative, even when the command has already overrun the schedule.
func (m *Manager) Interval() (time.Duration, error) {
	if !m.hasInterval {
		return 0, nil
	}

	elapsed, err := m.Elapsed()
	if err != nil {
		return 0, trace.Wrap(err)
	}

	wait := m.interval*time.Duration(m.iteration) - elapsed
	if wait < 0 {
		wait = 0
	}
	return wait, nil
}

// Iteration returns the number of retries performed so far.
func (m *Manager) Iteration() int {
	return m.iteration
}

// Status returns a human-readable snapshot for diagnostic logging.
func (m *Manager) Status() (string, error) {
	elapsed, err := m.Elapsed()
	if err != nil {
		return "", trace.Wrap(err)
	}
	return fmt.Sprintf("Elapsed time: %v; Iteration: %d", elapsed, m.iteration), nil
}
