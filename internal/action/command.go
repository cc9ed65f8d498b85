package action

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrEmptyCommand is returned when a command action has nothing to run.
var ErrEmptyCommand = errors.New("action: command is empty")

// CommandAction runs a shell command and optionally records it in the
// transcript.
type CommandAction struct {
	Command   string
	LogOutput bool
}

// NewCommand validates and builds a command action.
func NewCommand(command string, logOutput bool) (*CommandAction, error) {
	if command == "" {
		return nil, ErrEmptyCommand
	}
	return &CommandAction{Command: command, LogOutput: logOutput}, nil
}

func (a *CommandAction) Describe() string {
	return "run: " + a.Command
}

// Run executes the command synchronously. A non-zero exit is returned as a
// *launcher.ExitError carrying the captured stderr; nothing is logged then.
func (a *CommandAction) Run(ctx context.Context, env *Env) error {
	if env.Runner == nil {
		return fmt.Errorf("action: no command runner configured")
	}
	env.Printer.Run(a.Command)

	start := time.Now()
	res, err := env.Runner.Run(ctx, env.WorkDir, a.Command)
	if err != nil {
		return err
	}
	env.Logger.Debug().
		Str("command", a.Command).
		Dur("took", time.Since(start)).
		Int("stdout_bytes", len(res.Stdout)).
		Msg("command finished")

	env.Printer.Output(res.Stdout)
	if a.LogOutput {
		if err := env.Transcript.Command(a.Command, res.Stdout); err != nil {
			return err
		}
	}
	return nil
}
