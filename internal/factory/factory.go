// Package factory turns the parsed actions document into runnable saves.
package factory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"checkpoint/internal/action"
	"checkpoint/internal/resolver"
	"checkpoint/internal/save"
	"checkpoint/internal/schema"
)

// Action keys recognised in an action mapping.
const (
	KeyRun     = "run"
	KeyReplace = "replace_from_md"

	fieldLog        = "log"
	fieldFile       = "file"
	fieldOccurrence = "occurance_index"
	fieldMdPath     = "md_path"

	// DefaultMdName is read by replace_from_md in the save-path layout when
	// the action names no md_path.
	DefaultMdName = "index.md"
)

// ErrUnknownAction is returned for an action mapping that is neither a run
// nor a replace_from_md action.
var ErrUnknownAction = errors.New("unknown action type")

// UnknownActionError names the offending key.
type UnknownActionError struct {
	Key string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("Unknown action type in actions file: '%s'. Available action types are '%s' and '%s'.",
		e.Key, KeyRun, KeyReplace)
}

func (e *UnknownActionError) Unwrap() error { return ErrUnknownAction }

// Factory builds saves for one layout. Paths are used as given; callers
// resolve them beforehand.
type Factory struct {
	Layout schema.Layout
	// ScratchRoot is the directory every save runs in.
	ScratchRoot string
	// MdBase holds the markdown sources (markdown layout).
	MdBase string
	// SaveBase receives archived saves.
	SaveBase  string
	Variables resolver.Variables
	Logger    zerolog.Logger
}

// Create builds one save per entry, in order. Markdown files referenced by
// replace_from_md must already exist.
func (f *Factory) Create(entries []schema.SaveEntry) ([]*save.Save, error) {
	saves := make([]*save.Save, 0, len(entries))
	for _, entry := range entries {
		s, err := f.createSave(entry)
		if err != nil {
			return nil, fmt.Errorf("save '%s': %w", entry.Key, err)
		}
		saves = append(saves, s)
	}
	return saves, nil
}

func (f *Factory) createSave(entry schema.SaveEntry) (*save.Save, error) {
	savePath, err := f.savePath(entry.Key)
	if err != nil {
		return nil, err
	}

	actions := make([]action.Action, 0, len(entry.Actions))
	for i, spec := range entry.Actions {
		a, err := f.createAction(entry.Key, savePath, spec)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		actions = append(actions, a)
	}

	s := save.New(f.ScratchRoot, savePath, entry.Git(), actions)
	f.Logger.Debug().
		Str("save", s.Name).
		Str("dest", savePath).
		Bool("save_git", s.SaveAsCommit).
		Int("actions", len(actions)).
		Msg("save created")
	return s, nil
}

// savePath maps a key to its archive directory. Markdown keys lose their
// extension; save-path keys are used as is and created up front.
func (f *Factory) savePath(key string) (string, error) {
	if f.Layout == schema.LayoutSavePath {
		p := filepath.Join(f.SaveBase, key)
		if err := os.MkdirAll(p, 0755); err != nil {
			return "", fmt.Errorf("create save dir: %w", err)
		}
		return p, nil
	}
	return filepath.Join(f.SaveBase, strings.TrimSuffix(key, filepath.Ext(key))), nil
}

func (f *Factory) createAction(key, savePath string, spec schema.ActionSpec) (action.Action, error) {
	switch {
	case spec.Has(KeyRun):
		command, _, err := spec.String(KeyRun)
		if err != nil {
			return nil, err
		}
		logOutput, err := spec.Bool(fieldLog, false)
		if err != nil {
			return nil, err
		}
		return action.NewCommand(f.Variables.Template(command), logOutput)

	case spec.Has(KeyReplace):
		file, ok, err := spec.String(fieldFile)
		if err != nil {
			return nil, err
		}
		if !ok || file == "" {
			return nil, fmt.Errorf("%s: '%s' is required", KeyReplace, fieldFile)
		}
		idx, ok, err := spec.Int(fieldOccurrence)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%s: '%s' is required", KeyReplace, fieldOccurrence)
		}
		if idx < 0 {
			return nil, fmt.Errorf("%s: '%s' must not be negative, got %d", KeyReplace, fieldOccurrence, idx)
		}
		mdPath, err := f.mdPath(key, savePath, spec)
		if err != nil {
			return nil, err
		}
		return action.NewReplaceFromMd(file, mdPath, idx)

	default:
		return nil, &UnknownActionError{Key: spec.FirstKey()}
	}
}

// mdPath locates the markdown source of a replace_from_md action. The
// markdown layout reads the save's own document unless md_path is given.
func (f *Factory) mdPath(key, savePath string, spec schema.ActionSpec) (string, error) {
	override, ok, err := spec.String(fieldMdPath)
	if err != nil {
		return "", err
	}
	if f.Layout == schema.LayoutSavePath {
		if !ok || override == "" {
			override = DefaultMdName
		}
		return filepath.Join(savePath, override), nil
	}
	if ok && override != "" {
		return filepath.Join(f.MdBase, override), nil
	}
	return filepath.Join(f.MdBase, key), nil
}
