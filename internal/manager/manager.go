// Package manager drives a generation run: it owns the scratch directory and
// the transcript, and runs saves strictly in order.
package manager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"checkpoint/internal/action"
	"checkpoint/internal/console"
	"checkpoint/internal/launcher"
	"checkpoint/internal/save"
	"checkpoint/internal/transcript"
)

// Manager runs saves inside a scratch directory it recreates on every run.
// A second run against the same ScratchRoot must not overlap with this one.
type Manager struct {
	ScratchRoot string
	Saves       []*save.Save
	// Clean removes the scratch directory after a successful run.
	Clean bool
	// RunLimit stops before the save at this index; nil runs every save.
	RunLimit *int
	// Archive copies each save's tree to its save path after it runs.
	Archive bool

	Runner  launcher.Runner
	Printer *console.Printer
	Logger  zerolog.Logger
}

// Summary reports what a run did.
type Summary struct {
	Ran      int
	Archived int
	Skipped  int
	Duration time.Duration
}

// Run resets the scratch directory and transcript, then runs saves up to
// RunLimit. The first failure aborts the run; saves already archived stay.
func (m *Manager) Run(ctx context.Context) (summary Summary, err error) {
	start := time.Now()
	defer func() { summary.Duration = time.Since(start) }()

	if m.ScratchRoot == "" {
		return summary, errors.New("manager: scratch root is not set")
	}
	if err := os.RemoveAll(m.ScratchRoot); err != nil {
		return summary, fmt.Errorf("manager: reset scratch dir: %w", err)
	}
	if err := os.MkdirAll(m.ScratchRoot, 0755); err != nil {
		return summary, fmt.Errorf("manager: create scratch dir: %w", err)
	}

	tr, err := transcript.Create(transcript.PathFor(m.ScratchRoot))
	if err != nil {
		return summary, err
	}
	defer func() {
		if cerr := tr.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := tr.Heading(1, transcript.Title); err != nil {
		return summary, err
	}

	env := &action.Env{
		WorkDir:    m.ScratchRoot,
		Runner:     m.Runner,
		Transcript: tr,
		Printer:    m.Printer,
		Logger:     m.Logger,
	}
	m.Logger.Debug().
		Str("scratch", m.ScratchRoot).
		Str("transcript", tr.Path()).
		Int("saves", len(m.Saves)).
		Msg("run started")

	for i, s := range m.Saves {
		if m.RunLimit != nil && i >= *m.RunLimit {
			summary.Skipped = len(m.Saves) - i
			m.Logger.Info().Int("until", *m.RunLimit).Int("skipped", summary.Skipped).Msg("run limit reached")
			break
		}
		if err := tr.Heading(2, s.Name); err != nil {
			return summary, err
		}
		m.Printer.Save(s.Name)

		if err := s.Run(ctx, env); err != nil {
			return summary, err
		}
		summary.Ran++

		if m.Archive {
			if err := s.Archive(ctx, env); err != nil {
				return summary, err
			}
			summary.Archived++
		}
	}

	if err := tr.Close(); err != nil {
		return summary, err
	}
	if m.Clean {
		if err := os.RemoveAll(m.ScratchRoot); err != nil {
			return summary, fmt.Errorf("manager: remove scratch dir: %w", err)
		}
	}
	return summary, nil
}
