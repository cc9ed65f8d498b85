// Package save runs one checkpoint: its actions in declared order, then an
// archive of the resulting working tree.
package save

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"checkpoint/internal/action"
	"checkpoint/internal/snapshot"
)

// Save is a named, ordered list of actions plus the policy used to archive
// the working tree once they have run.
type Save struct {
	// Name is the final segment of SavePath.
	Name string
	// WorkDir is the scratch directory the actions run in.
	WorkDir string
	// SavePath receives the archived tree.
	SavePath string
	// SaveAsCommit archives only what a clean git commit would contain.
	SaveAsCommit bool
	Actions      []action.Action
}

// New builds a save whose name is derived from savePath.
func New(workDir, savePath string, saveAsCommit bool, actions []action.Action) *Save {
	return &Save{
		Name:         filepath.Base(filepath.Clean(savePath)),
		WorkDir:      workDir,
		SavePath:     savePath,
		SaveAsCommit: saveAsCommit,
		Actions:      actions,
	}
}

// Run executes every action in order and stops at the first failure.
func (s *Save) Run(ctx context.Context, env *action.Env) error {
	runEnv := s.env(env)
	for i, a := range s.Actions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.Run(ctx, runEnv); err != nil {
			return fmt.Errorf("save %s: action %d (%s): %w", s.Name, i, a.Describe(), err)
		}
	}
	return nil
}

// Archive merges the working tree into SavePath. In commit mode git decides
// what is left out; otherwise only .git and the transcript are skipped.
func (s *Save) Archive(ctx context.Context, env *action.Env) error {
	runEnv := s.env(env)
	start := time.Now()

	var (
		filter snapshot.Filter
		mode   = "raw"
	)
	if s.SaveAsCommit {
		gf, err := snapshot.NewGitFilter(ctx, runEnv.Runner, runEnv.WorkDir)
		if err != nil {
			return fmt.Errorf("save %s: %w", s.Name, err)
		}
		runEnv.Logger.Debug().Str("save", s.Name).Int("git_excluded", gf.Len()).Msg("git exclusions collected")
		filter, mode = gf, "commit"
	} else {
		filter = snapshot.RawFilter(runEnv.WorkDir, runEnv.Transcript.Path())
	}

	stats, err := snapshot.Copy(runEnv.WorkDir, s.SavePath, filter)
	if err != nil {
		return fmt.Errorf("save %s: archive: %w", s.Name, err)
	}

	ev := runEnv.Logger.Debug().
		Str("save", s.Name).
		Str("mode", mode).
		Str("dest", s.SavePath).
		Int("files", stats.Files).
		Int("dirs", stats.Dirs).
		Int("symlinks", stats.Symlinks).
		Int("excluded", stats.Excluded).
		Int64("bytes", stats.Bytes).
		Dur("took", time.Since(start))
	if ev.Enabled() {
		if digest, err := snapshot.Digest(s.SavePath); err == nil {
			ev = ev.Str("digest", digest)
		}
	}
	ev.Msg("save archived")
	return nil
}

// env returns a copy of base pointed at this save's working directory.
func (s *Save) env(base *action.Env) *action.Env {
	e := *base
	if s.WorkDir != "" {
		e.WorkDir = s.WorkDir
	}
	return &e
}
