// Package action defines the steps a save executes: shell commands and files
// materialised from titled markdown code blocks.
package action

import (
	"context"

	"github.com/rs/zerolog"

	"checkpoint/internal/console"
	"checkpoint/internal/launcher"
	"checkpoint/internal/transcript"
)

// Action is a single executable step of a save.
type Action interface {
	// Describe returns a human-readable summary of the action.
	Describe() string
	// Run executes the action inside env.WorkDir.
	Run(ctx context.Context, env *Env) error
}

// Env carries everything an action may touch during a run. The working
// directory is passed explicitly; actions never change the process cwd.
type Env struct {
	WorkDir    string
	Runner     launcher.Runner
	Transcript *transcript.Transcript
	Printer    *console.Printer
	Logger     zerolog.Logger
}
