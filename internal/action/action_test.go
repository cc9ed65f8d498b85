package action

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkpoint/internal/console"
	"checkpoint/internal/launcher"
	"checkpoint/internal/mdblock"
	"checkpoint/internal/testutil/fakerun"
	"checkpoint/internal/testutil/testlog"
	"checkpoint/internal/transcript"
)

func newEnv(t *testing.T, runner launcher.Runner) (*Env, string) {
	t.Helper()
	dir := t.TempDir()
	work := filepath.Join(dir, "working-directory")
	require.NoError(t, os.MkdirAll(work, 0755))

	tr, err := transcript.Create(transcript.PathFor(work))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })

	return &Env{
		WorkDir:    work,
		Runner:     runner,
		Transcript: tr,
		Printer:    console.Discard(),
		Logger:     testlog.Logger(t),
	}, transcript.PathFor(work)
}

func readTranscript(t *testing.T, env *Env, path string) string {
	t.Helper()
	require.NoError(t, env.Transcript.Flush())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestNewCommand_RejectsEmpty(t *testing.T) {
	_, err := NewCommand("", true)
	assert.ErrorIs(t, err, ErrEmptyCommand)
}

func TestCommandAction_LogsWhenRequested(t *testing.T) {
	runner := fakerun.New().Script("echo hi", launcher.Result{Stdout: "hi\n"})
	env, path := newEnv(t, runner)

	a, err := NewCommand("echo hi", true)
	require.NoError(t, err)
	require.NoError(t, a.Run(context.Background(), env))

	assert.Equal(t, []fakerun.Call{{Dir: env.WorkDir, Command: "echo hi"}}, runner.Calls)
	assert.Equal(t, "> echo hi\n\n```\nhi\n```\n\n----\n\n", readTranscript(t, env, path))
}

func TestCommandAction_SilentWithoutLog(t *testing.T) {
	runner := fakerun.New().Script("echo hi", launcher.Result{Stdout: "hi\n"})
	env, path := newEnv(t, runner)

	a, err := NewCommand("echo hi", false)
	require.NoError(t, err)
	require.NoError(t, a.Run(context.Background(), env))

	assert.Equal(t, "", readTranscript(t, env, path))
}

func TestCommandAction_FailureIsFatalRegardlessOfLog(t *testing.T) {
	for _, logOutput := range []bool{false, true} {
		runner := fakerun.New().Script("make", launcher.Result{ExitCode: 2, Stderr: "no rule\n"})
		env, path := newEnv(t, runner)

		a, err := NewCommand("make", logOutput)
		require.NoError(t, err)
		err = a.Run(context.Background(), env)

		var exitErr *launcher.ExitError
		require.True(t, errors.As(err, &exitErr), "log=%v", logOutput)
		assert.Equal(t, 2, exitErr.ExitCode)
		assert.Contains(t, err.Error(), "make")
		assert.Contains(t, err.Error(), "no rule")
		assert.Equal(t, "", readTranscript(t, env, path))
	}
}

func TestCommandAction_RealShell(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	env, _ := newEnv(t, launcher.Shell{})

	a, err := NewCommand("mkdir -p pkg && echo data > pkg/file.txt", false)
	require.NoError(t, err)
	require.NoError(t, a.Run(context.Background(), env))

	data, err := os.ReadFile(filepath.Join(env.WorkDir, "pkg", "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "data\n", string(data))

	failing, err := NewCommand("exit 7", true)
	require.NoError(t, err)
	assert.Error(t, failing.Run(context.Background(), env))
}

func TestCommandAction_NoRunner(t *testing.T) {
	env, _ := newEnv(t, nil)
	a, err := NewCommand("true", false)
	require.NoError(t, err)
	assert.Error(t, a.Run(context.Background(), env))
}

func writeMarkdown(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docs", "01-setup.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewReplaceFromMd_MissingMarkdown(t *testing.T) {
	_, err := NewReplaceFromMd("a.txt", filepath.Join(t.TempDir(), "nope.md"), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMarkdownMissing)
	assert.Contains(t, err.Error(), "nope.md")
}

func TestNewReplaceFromMd_RejectsDirectory(t *testing.T) {
	_, err := NewReplaceFromMd("a.txt", t.TempDir(), 0)
	assert.ErrorIs(t, err, ErrMarkdownMissing)
}

func TestReplaceFileFromMd_WritesSelectedOccurrence(t *testing.T) {
	md := writeMarkdown(t, "```txt title=\"a.txt\"\nX\n```\n\n```txt title=\"a.txt\"\nY\n```\n")

	for idx, want := range []string{"X\n", "Y\n"} {
		env, _ := newEnv(t, nil)
		a, err := NewReplaceFromMd("a.txt", md, idx)
		require.NoError(t, err)
		require.NoError(t, a.Run(context.Background(), env))

		data, err := os.ReadFile(filepath.Join(env.WorkDir, "a.txt"))
		require.NoError(t, err)
		assert.Equal(t, want, string(data))
	}

	env, _ := newEnv(t, nil)
	a, err := NewReplaceFromMd("a.txt", md, 2)
	require.NoError(t, err)
	assert.ErrorIs(t, a.Run(context.Background(), env), mdblock.ErrOccurrenceRange)
}

func TestReplaceFileFromMd_CreatesParentsAndOverwrites(t *testing.T) {
	md := writeMarkdown(t, "```python title=\"src/app/main.py\"\n    print('new')\n```\n")
	env, _ := newEnv(t, nil)

	target := filepath.Join(env.WorkDir, "src", "app", "main.py")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0755))
	require.NoError(t, os.WriteFile(target, []byte("old content that is much longer\n"), 0644))

	a, err := NewReplaceFromMd("src/app/main.py", md, 0)
	require.NoError(t, err)
	require.NoError(t, a.Run(context.Background(), env))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "print('new')\n", string(data))

	fresh, err := NewReplaceFromMd("./src/app/main.py", md, 0)
	require.NoError(t, err)
	assert.Equal(t, "src/app/main.py", fresh.Title())
}

func TestReplaceFileFromMd_NotFound(t *testing.T) {
	md := writeMarkdown(t, "no code here\n")
	env, _ := newEnv(t, nil)

	a, err := NewReplaceFromMd("missing.py", md, 0)
	require.NoError(t, err)
	err = a.Run(context.Background(), env)
	assert.ErrorIs(t, err, mdblock.ErrBlockNotFound)
	assert.Contains(t, err.Error(), "missing.py")
}

func TestDescribe(t *testing.T) {
	c, err := NewCommand("ls", false)
	require.NoError(t, err)
	assert.Equal(t, "run: ls", c.Describe())

	md := writeMarkdown(t, "")
	r, err := NewReplaceFromMd("a.txt", md, 1)
	require.NoError(t, err)
	assert.Contains(t, r.Describe(), "a.txt")
	assert.Contains(t, r.Describe(), "[1]")
}
