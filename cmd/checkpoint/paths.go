package main

import (
	"fmt"
	"path/filepath"

	"checkpoint/internal/schema"
)

// scratchDirName is the working directory created under base_tmp_path in the
// markdown layout.
const scratchDirName = "working-directory"

// defaultSavesDirName is the save base under base_tmp_path when the markdown
// layout is used without --save-path.
const defaultSavesDirName = "saves"

// layoutPaths are the absolute directories a run works with.
type layoutPaths struct {
	Scratch  string
	MdBase   string
	SaveBase string
}

// resolvePaths derives the run directories from the document and the
// --save-path override. Relative paths are taken from the current directory.
func resolvePaths(doc schema.Document, savePath string) (layoutPaths, error) {
	var p layoutPaths
	tmp, err := filepath.Abs(doc.BaseTmpPath)
	if err != nil {
		return p, fmt.Errorf("resolve base_tmp_path: %w", err)
	}

	switch doc.Layout() {
	case schema.LayoutSavePath:
		p.Scratch = tmp
		p.SaveBase = doc.BaseSavePath
	default:
		p.Scratch = filepath.Join(tmp, scratchDirName)
		p.SaveBase = filepath.Join(tmp, defaultSavesDirName)
		if p.MdBase, err = filepath.Abs(doc.BaseMdPath); err != nil {
			return p, fmt.Errorf("resolve base_md_path: %w", err)
		}
	}

	if savePath != "" {
		p.SaveBase = savePath
	}
	if p.SaveBase, err = filepath.Abs(p.SaveBase); err != nil {
		return p, fmt.Errorf("resolve save path: %w", err)
	}
	return p, nil
}
