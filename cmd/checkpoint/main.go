package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"checkpoint/internal/cli"
	"checkpoint/internal/console"
	"checkpoint/internal/factory"
	"checkpoint/internal/launcher"
	"checkpoint/internal/manager"
	"checkpoint/internal/resolver"
	"checkpoint/internal/schema"
	"checkpoint/internal/validator"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	exitCode := run(ctx, os.Args[1:], os.Environ(), os.Stdout, os.Stderr)
	stop()
	os.Exit(exitCode)
}

// run executes the command line and returns the process exit code: 0 on
// success, 1 on any failure. It is separate from main for testing.
func run(ctx context.Context, args, environ []string, stdout, stderr io.Writer) int {
	printer := console.NewPrinter(stdout, stderr, colorFor(stdout, environ))

	cmd := cli.NewCommand(func(c *cobra.Command, opts cli.Options) error {
		logger := console.NewLogger(stderr, environ, opts.Verbose, colorFor(stderr, environ))
		return generate(c.Context(), opts, environ, printer, logger)
	})
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		printer.Fatal(err)
		return 1
	}
	return 0
}

func generate(ctx context.Context, opts cli.Options, environ []string, printer *console.Printer, logger zerolog.Logger) error {
	configPath := cli.ConfigPath(opts.ConfigPath, environ)
	doc, err := schema.LoadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("actions file not found: %s", configPath)
		}
		return err
	}
	if err := validator.Check(doc); err != nil {
		return err
	}

	dotenv, err := resolver.LoadDotenv(opts.EnvFile)
	if err != nil {
		return err
	}
	vars := resolver.Resolve(doc.Variables, dotenv, environ)

	paths, err := resolvePaths(doc, opts.SavePath)
	if err != nil {
		return err
	}
	logger.Debug().
		Str("config", configPath).
		Str("layout", string(doc.Layout())).
		Str("scratch", paths.Scratch).
		Str("md_base", paths.MdBase).
		Str("save_base", paths.SaveBase).
		Int("variables", len(vars)).
		Msg("configuration loaded")

	f := &factory.Factory{
		Layout:      doc.Layout(),
		ScratchRoot: paths.Scratch,
		MdBase:      paths.MdBase,
		SaveBase:    paths.SaveBase,
		Variables:   vars,
		Logger:      logger,
	}
	saves, err := f.Create(doc.Saves)
	if err != nil {
		return err
	}

	m := &manager.Manager{
		ScratchRoot: paths.Scratch,
		Saves:       saves,
		Clean:       opts.Clean,
		RunLimit:    opts.Until,
		Archive:     !opts.NoSave,
		Runner:      launcher.Shell{Environ: environ},
		Printer:     printer,
		Logger:      logger,
	}
	summary, err := m.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info().
		Int("ran", summary.Ran).
		Int("archived", summary.Archived).
		Int("skipped", summary.Skipped).
		Dur("took", summary.Duration).
		Msg("generation finished")
	return nil
}

// colorFor enables styling only for terminals.
func colorFor(w io.Writer, environ []string) bool {
	f, ok := w.(*os.File)
	return ok && console.ColorEnabled(f, environ)
}
