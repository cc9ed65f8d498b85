// Package transcript writes the generation output document: one heading per
// save and, for logged commands, the command line and its captured output.
package transcript

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultName is the transcript file name placed next to the scratch root.
const DefaultName = "generated_output.md"

// Title is the top-level heading written when a run starts.
const Title = "Generation Output"

// Transcript is an append-only sink for a single run. It is not safe for
// concurrent use.
type Transcript struct {
	path string
	file *os.File
	w    *bufio.Writer
}

// PathFor returns the transcript location for a scratch root.
func PathFor(scratchRoot string) string {
	return filepath.Join(filepath.Dir(filepath.Clean(scratchRoot)), DefaultName)
}

// Create truncates (or creates) the transcript at path, creating parent
// directories if needed.
func Create(path string) (*Transcript, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("transcript: ensure dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("transcript: open %s: %w", path, err)
	}
	return &Transcript{path: path, file: f, w: bufio.NewWriter(f)}, nil
}

// Path returns the file backing this transcript.
func (t *Transcript) Path() string {
	if t == nil {
		return ""
	}
	return t.path
}

// Heading writes a markdown heading of the given level.
func (t *Transcript) Heading(level int, text string) error {
	if level < 1 {
		level = 1
	}
	return t.entry(strings.Repeat("#", level) + " " + text + "\n")
}

// Command records a command line, its captured stdout and a separator.
func (t *Transcript) Command(command, stdout string) error {
	if err := t.entry("> " + command + "\n"); err != nil {
		return err
	}
	if err := t.entry("```\n" + stdout + "```\n"); err != nil {
		return err
	}
	return t.entry("----\n")
}

// entry appends text followed by a newline.
func (t *Transcript) entry(text string) error {
	if t == nil || t.w == nil {
		return nil
	}
	if _, err := t.w.WriteString(text + "\n"); err != nil {
		return fmt.Errorf("transcript: write: %w", err)
	}
	return nil
}

// Flush pushes buffered entries to disk.
func (t *Transcript) Flush() error {
	if t == nil || t.w == nil {
		return nil
	}
	return t.w.Flush()
}

// Close flushes and releases the file handle. Safe to call more than once.
func (t *Transcript) Close() error {
	if t == nil || t.file == nil {
		return nil
	}
	flushErr := t.w.Flush()
	closeErr := t.file.Close()
	t.file = nil
	t.w = nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
