package execrunner

import (
	"bytes"
	"context"
	"log/slog"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunnerExitCodes(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test commands require a POSIX shell")
	}

	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{name: "success", args: []string{"-c", "exit 0"}, wantCode: 0},
		{name: "failure", args: []string{"-c", "exit 3"}, wantCode: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := NewExecRunner().Run(context.Background(), "sh", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestExecRunnerSpawnError(t *testing.T) {
	_, err := NewExecRunner().Run(context.Background(), "/this/command/does/not/exist")
	require.Error(t, err)
}

func TestDryRunnerLogsInsteadOfRunning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	code, err := NewDryRunner(logger).Run(context.Background(), "/this/command/does/not/exist", "--flag")
	require.NoError(t, err)
	assert.Zero(t, code)
	assert.Contains(t, buf.String(), "/this/command/does/not/exist")
}
