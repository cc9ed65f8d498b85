// Package mdblock extracts titled fenced code blocks from markdown documents.
//
// A block is selected by the title attribute on its opening fence:
//
//	```python title="src/main.py"
//	print("hello")
//	```
//
// The closing fence must start its own line (indentation allowed), so two
// consecutive blocks with the same title never bleed into each other.
package mdblock

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrBlockNotFound indicates no fenced block carries the requested title.
	ErrBlockNotFound = errors.New("mdblock: code block not found")
	// ErrOccurrenceRange indicates the requested occurrence index does not exist.
	ErrOccurrenceRange = errors.New("mdblock: occurrence index out of range")
)

func blockPattern(title string) *regexp.Regexp {
	return regexp.MustCompile("(?m)^[ \t]*```.* title=\"" + regexp.QuoteMeta(title) + "\".*\n" +
		"((?:.|\n)*?)^[ \t]*```[ \t]*$")
}

// Find returns the raw bodies of every block titled title, in document order.
func Find(content, title string) []string {
	content = normalizeNewlines(content)
	matches := blockPattern(title).FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}
	bodies := make([]string, 0, len(matches))
	for _, m := range matches {
		bodies = append(bodies, m[1])
	}
	return bodies
}

// Extract selects the block at index among the blocks titled title and
// returns its dedented body.
func Extract(content, title string, index int) (string, error) {
	bodies := Find(content, title)
	if len(bodies) == 0 {
		return "", fmt.Errorf("%w: %s", ErrBlockNotFound, title)
	}
	if index < 0 || index >= len(bodies) {
		return "", fmt.Errorf("%w: %s has %d block(s), index %d requested",
			ErrOccurrenceRange, title, len(bodies), index)
	}
	return Dedent(bodies[index]), nil
}

// Dedent removes the longest leading whitespace prefix shared by every
// non-blank line. Lines holding only spaces or tabs are emptied.
func Dedent(text string) string {
	lines := strings.Split(text, "\n")

	margin := ""
	first := true
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			lines[i] = ""
			continue
		}
		indent := line[:len(line)-len(trimmed)]
		if first {
			margin = indent
			first = false
			continue
		}
		margin = commonPrefix(margin, indent)
	}

	if margin == "" {
		return strings.Join(lines, "\n")
	}
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, margin)
	}
	return strings.Join(lines, "\n")
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
