package launcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Result holds the fully captured output of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ExitError is returned when a command ran but exited non-zero, or could not
// be started at all.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("Command failed: %s", e.Command)
	if stderr := strings.TrimRight(e.Stderr, "\n"); stderr != "" {
		msg += "\n" + stderr
	}
	return msg
}

func (e *ExitError) Unwrap() error { return e.Err }

// Runner executes a shell command line synchronously inside dir.
// Implementations must capture stdout and stderr completely before returning.
type Runner interface {
	Run(ctx context.Context, dir, command string) (Result, error)
}

var _ Runner = Shell{}

// Shell runs commands through the platform shell (sh -c).
type Shell struct {
	// Path overrides the shell binary. Empty means "sh".
	Path string
	// Environ is passed to the child. Nil inherits the current environment.
	Environ []string
}

const waitDelay = 2 * time.Second

// Run executes command with the shell and waits for it to finish.
//
// Exit codes:
//   - command not found by the shell or missing shell: 127
//   - permission denied: 126
//   - anything else: the child's own status
func (s Shell) Run(ctx context.Context, dir, command string) (Result, error) {
	shell := s.Path
	if shell == "" {
		shell = "sh"
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Dir = dir
	// Grandchildren holding the output pipes must not outlive cancellation.
	cmd.WaitDelay = waitDelay
	if s.Environ != nil {
		cmd.Env = s.Environ
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	case IsNotFound(err):
		res.ExitCode = 127
	case IsPermissionDenied(err):
		res.ExitCode = 126
	default:
		res.ExitCode = 1
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	return res, &ExitError{
		Command:  command,
		ExitCode: res.ExitCode,
		Stderr:   res.Stderr,
		Err:      err,
	}
}

// IsNotFound checks if the error indicates the command was not found
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return os.IsNotExist(err) || errors.Is(err, exec.ErrNotFound)
}

// IsPermissionDenied checks if the error indicates permission was denied
func IsPermissionDenied(err error) bool {
	if err == nil {
		return false
	}
	return os.IsPermission(err)
}
