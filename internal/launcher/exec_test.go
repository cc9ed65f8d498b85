package launcher

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestShell_Run_CapturesStreams(t *testing.T) {
	requireShell(t)

	res, err := Shell{}.Run(context.Background(), t.TempDir(), "echo out; echo err 1>&2")
	require.NoError(t, err)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
	assert.Equal(t, 0, res.ExitCode)
}

func TestShell_Run_UsesDir(t *testing.T) {
	requireShell(t)

	dir := t.TempDir()
	res, err := Shell{}.Run(context.Background(), dir, "pwd -P")
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, want+"\n", res.Stdout)
}

func TestShell_Run_NonZeroExit(t *testing.T) {
	requireShell(t)

	res, err := Shell{}.Run(context.Background(), t.TempDir(), "echo boom 1>&2; exit 3")
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "boom\n", exitErr.Stderr)
	assert.Contains(t, err.Error(), "exit 3")
	assert.Contains(t, err.Error(), "boom")
}

func TestShell_Run_MissingShell(t *testing.T) {
	res, err := Shell{Path: "/definitely/not/a/shell"}.Run(context.Background(), t.TempDir(), "true")
	require.Error(t, err)
	assert.Equal(t, 127, res.ExitCode)
}

func TestIsNotFound(t *testing.T) {
	assert.False(t, IsNotFound(nil))
	assert.True(t, IsNotFound(exec.ErrNotFound))
}

func TestIsPermissionDenied(t *testing.T) {
	assert.False(t, IsPermissionDenied(nil))
}

func TestShell_Run_Cancelled(t *testing.T) {
	requireShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Shell{}.Run(ctx, t.TempDir(), "sleep 30")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 10*time.Second)
}
