// Package console owns the tool's two output channels: the coloured
// progress echo on stdout and the zerolog diagnostic logger on stderr.
package console

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

const (
	EnvLogLevel   = "CHECKPOINT_LOG_LEVEL"
	EnvLogNoColor = "CHECKPOINT_LOG_NOCOLOR"
)

// Printer echoes run progress for humans.
type Printer struct {
	out io.Writer
	err io.Writer

	save   lipgloss.Style
	action lipgloss.Style
	output lipgloss.Style
	fail   lipgloss.Style
}

// NewPrinter builds a printer writing progress to out and failures to errOut.
// Styling is dropped when color is false.
func NewPrinter(out, errOut io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(out)
	p := &Printer{
		out:    out,
		err:    errOut,
		save:   r.NewStyle(),
		action: r.NewStyle(),
		output: r.NewStyle(),
		fail:   r.NewStyle(),
	}
	if color {
		p.save = p.save.Foreground(lipgloss.Color("10")).Bold(true)
		p.action = p.action.Foreground(lipgloss.Color("12"))
		p.output = p.output.Foreground(lipgloss.Color("8"))
		p.fail = p.fail.Foreground(lipgloss.Color("9"))
	}
	return p
}

// Discard returns a printer that swallows everything.
func Discard() *Printer {
	return NewPrinter(io.Discard, io.Discard, false)
}

// Save announces the start of a save.
func (p *Printer) Save(name string) {
	if p == nil {
		return
	}
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, p.save.Render("Running action for save: "+name))
}

// Run announces a shell command.
func (p *Printer) Run(command string) {
	if p == nil {
		return
	}
	fmt.Fprintln(p.out, p.action.Render("[RUN] "+command))
}

// Replace announces a file materialised from markdown.
func (p *Printer) Replace(file, md string) {
	if p == nil {
		return
	}
	fmt.Fprintln(p.out, p.action.Render(fmt.Sprintf("[REPLACE FROM MD] %s <- %s", file, md)))
}

// Output echoes captured command output. Empty output prints nothing.
func (p *Printer) Output(stdout string) {
	if p == nil || stdout == "" {
		return
	}
	fmt.Fprintln(p.out, renderLines(p.output, strings.TrimRight(stdout, "\n")))
}

// Fatal prints an error message on the error stream.
func (p *Printer) Fatal(err error) {
	if p == nil || err == nil {
		return
	}
	fmt.Fprintln(p.err)
	fmt.Fprintln(p.err, renderLines(p.fail, err.Error()))
}

// renderLines styles each line on its own; lipgloss pads multi-line blocks
// to a common width otherwise.
func renderLines(style lipgloss.Style, text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// ColorEnabled reports whether f is a terminal and color was not disabled
// through the environment.
func ColorEnabled(f *os.File, environ []string) bool {
	if v, ok := parseBool(lookup(environ, EnvLogNoColor)); ok && v {
		return false
	}
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewLogger builds the diagnostic logger. verbose forces debug level;
// otherwise CHECKPOINT_LOG_LEVEL decides, defaulting to info.
func NewLogger(w io.Writer, environ []string, verbose, color bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if lvl, ok := parseLevel(lookup(environ, EnvLogLevel)); ok {
		level = lvl
	}
	if verbose && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    !color,
	}
	return zerolog.New(output).Level(level).With().Timestamp().Str("app", "checkpoint").Logger()
}

func lookup(environ []string, key string) string {
	prefix := key + "="
	value := ""
	for _, entry := range environ {
		if strings.HasPrefix(entry, prefix) {
			value = strings.TrimPrefix(entry, prefix)
		}
	}
	return value
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
