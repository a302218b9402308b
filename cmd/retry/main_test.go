package main

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/gravitational/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlupton20/retry/internal/loop"
)

func TestParseCLI(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want config
	}{
		{
			name: "command only leaves bounds unset",
			args: []string{"false"},
			want: config{
				Command:           []string{"false"},
				TimeoutSeconds:    -1,
				IntervalSeconds:   -1,
				MaximumIterations: -1,
			},
		},
		{
			name: "all bounds",
			args: []string{"-t", "1.5", "-i", "0.25", "-m", "3", "-vv", "false"},
			want: config{
				Command:           []string{"false"},
				TimeoutSeconds:    1.5,
				IntervalSeconds:   0.25,
				MaximumIterations: 3,
				Verbosity:         2,
			},
		},
		{
			name: "zero timeout is an explicit bound",
			args: []string{"--timeout", "0", "false"},
			want: config{
				Command:           []string{"false"},
				TimeoutSeconds:    0,
				IntervalSeconds:   -1,
				MaximumIterations: -1,
			},
		},
		{
			name: "flags after the command belong to the command",
			args: []string{"-m", "2", "sh", "-c", "exit 1"},
			want: config{
				Command:           []string{"sh", "-c", "exit 1"},
				TimeoutSeconds:    -1,
				IntervalSeconds:   -1,
				MaximumIterations: 2,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := parseCLI(tt.args)
			require.NotNil(t, c)
			assert.Equal(t, tt.want, *c)
		})
	}
}

func TestRetryOptions(t *testing.T) {
	tests := []struct {
		name     string
		c        config
		wantOpts int
	}{
		{
			name:     "nothing set",
			c:        config{TimeoutSeconds: -1, IntervalSeconds: -1, MaximumIterations: -1},
			wantOpts: 0,
		},
		{
			name:     "zero timeout counts as set",
			c:        config{TimeoutSeconds: 0, IntervalSeconds: -1, MaximumIterations: -1},
			wantOpts: 1,
		},
		{
			name:     "everything set",
			c:        config{TimeoutSeconds: 2, IntervalSeconds: 1, MaximumIterations: 5},
			wantOpts: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, tt.c.retryOptions(), tt.wantOpts)
		})
	}
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, seconds(1.5))
	assert.Equal(t, time.Duration(0), seconds(0))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: 0},
		{name: "timeout", err: trace.Wrap(loop.ErrTimeout), want: exitTimeout},
		{name: "maximum iterations", err: trace.Wrap(loop.ErrMaximumIterations), want: exitMaximumIterations},
		{name: "interrupted", err: trace.Wrap(context.Canceled), want: exitInterrupted},
		{
			name: "spawn failure",
			err:  trace.Wrap(&exec.Error{Name: "nope", Err: exec.ErrNotFound}),
			want: exitSpawnFailure,
		},
		{name: "anything else", err: errors.New("boom"), want: exitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
