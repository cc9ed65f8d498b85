package action

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"checkpoint/internal/mdblock"
)

// ErrMarkdownMissing is returned at construction when the source markdown
// document does not exist.
var ErrMarkdownMissing = errors.New("action: markdown file does not exist")

// ReplaceFileFromMdAction overwrites FilePath (relative to the working
// directory) with a code block titled FilePath taken from MdPath.
type ReplaceFileFromMdAction struct {
	FilePath        string
	MdPath          string
	OccurrenceIndex int

	absMdPath string
}

// NewReplaceFromMd resolves mdPath to an absolute path and fails fast when
// it does not exist. The occurrence index is only checked at run time.
func NewReplaceFromMd(filePath, mdPath string, occurrenceIndex int) (*ReplaceFileFromMdAction, error) {
	if filePath == "" {
		return nil, fmt.Errorf("action: replace_from_md requires a file")
	}
	abs, err := filepath.Abs(mdPath)
	if err != nil {
		return nil, fmt.Errorf("action: resolve %s: %w", mdPath, err)
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrMarkdownMissing, mdPath)
	}
	return &ReplaceFileFromMdAction{
		FilePath:        filepath.Clean(filePath),
		MdPath:          mdPath,
		OccurrenceIndex: occurrenceIndex,
		absMdPath:       abs,
	}, nil
}

func (a *ReplaceFileFromMdAction) Describe() string {
	return fmt.Sprintf("replace_from_md: %s <- %s[%d]", a.FilePath, a.MdPath, a.OccurrenceIndex)
}

// Title is the title attribute a code block must carry to match.
func (a *ReplaceFileFromMdAction) Title() string {
	return filepath.ToSlash(a.FilePath)
}

// Run extracts the selected block and writes it over the target file,
// creating parent directories as needed.
func (a *ReplaceFileFromMdAction) Run(_ context.Context, env *Env) error {
	env.Printer.Replace(a.FilePath, a.MdPath)

	content, err := os.ReadFile(a.absMdPath)
	if err != nil {
		return fmt.Errorf("action: read %s: %w", a.MdPath, err)
	}
	body, err := mdblock.Extract(string(content), a.Title(), a.OccurrenceIndex)
	if err != nil {
		return fmt.Errorf("%w (in %s)", err, a.MdPath)
	}

	target := a.FilePath
	if !filepath.IsAbs(target) {
		target = filepath.Join(env.WorkDir, target)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("action: create parent of %s: %w", a.FilePath, err)
	}
	if err := os.WriteFile(target, []byte(body), 0644); err != nil {
		return fmt.Errorf("action: write %s: %w", a.FilePath, err)
	}
	env.Logger.Debug().
		Str("file", target).
		Str("md", a.absMdPath).
		Int("occurrence", a.OccurrenceIndex).
		Int("bytes", len(body)).
		Msg("file replaced from markdown")
	return nil
}
