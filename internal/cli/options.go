// Package cli defines the checkpoint command line.
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"checkpoint/internal/schema"
)

// EnvConfig names the actions file when --config is not given.
const EnvConfig = "CHECKPOINT_CONFIG"

// ErrNegativeUntil is returned for --until values below zero.
var ErrNegativeUntil = errors.New("--until must not be negative")

// Options is the parsed command line.
type Options struct {
	ConfigPath string // --config/-f <path>
	Clean      bool   // --clean/-c
	Until      *int   // --until/-u <n>; nil when not given
	NoSave     bool   // --no-save
	SavePath   string // --save-path <path>
	EnvFile    string // --env-file <path>
	Verbose    bool   // --verbose/-v
}

// RunFunc receives the parsed options of a successful parse.
type RunFunc func(cmd *cobra.Command, opts Options) error

// NewCommand builds the root command. run is invoked once flags are parsed.
func NewCommand(run RunFunc) *cobra.Command {
	var (
		opts  Options
		until int
	)
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Replay documented build steps and archive a checkpoint per save",
		Long: `checkpoint runs the saves declared in an actions file, in order, inside a
scratch working directory. Each save runs its actions (shell commands, or files
taken from titled markdown code blocks) and is then archived to its save path.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("until") {
				if until < 0 {
					return fmt.Errorf("%w: %d", ErrNegativeUntil, until)
				}
				n := until
				opts.Until = &n
			}
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.ConfigPath, "config", "f", "", "actions file, .yaml or .toml (default $"+EnvConfig+" or "+schema.DefaultPath+")")
	flags.BoolVarP(&opts.Clean, "clean", "c", false, "delete the scratch directory after a successful run")
	flags.IntVarP(&until, "until", "u", 0, "stop before the save at this index")
	flags.BoolVar(&opts.NoSave, "no-save", false, "run the actions without archiving")
	flags.StringVar(&opts.SavePath, "save-path", "", "override the base save directory")
	flags.StringVar(&opts.EnvFile, "env-file", "", "dotenv file with variable overrides")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

// ConfigPath picks the actions file: the flag, then $CHECKPOINT_CONFIG, then
// the default location.
func ConfigPath(flagValue string, environ []string) string {
	if flagValue != "" {
		return flagValue
	}
	prefix := EnvConfig + "="
	for i := len(environ) - 1; i >= 0; i-- {
		if v, ok := strings.CutPrefix(environ[i], prefix); ok && v != "" {
			return v
		}
	}
	return schema.DefaultPath
}

// ParseArgs parses args (without the program name) into Options.
func ParseArgs(args []string) (Options, error) {
	var parsed Options
	cmd := NewCommand(func(_ *cobra.Command, opts Options) error {
		parsed = opts
		return nil
	})
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		return Options{}, err
	}
	return parsed, nil
}
