// Command rubble runs rubble programs and provides an interactive shell.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/zephyrtronium/rubble"
	"github.com/zephyrtronium/rubble/internal/logger"
)

// app holds the state shared by the subcommands.
type app struct {
	configPath string
	verbose    bool
	logLevel   string
	noColor    bool

	cfg    Config
	log    *log.Logger
	stdout io.Writer
	stderr io.Writer
}

func main() {
	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	if err := a.command().Execute(); err != nil {
		os.Exit(1)
	}
}

// command builds the command tree.
func (a *app) command() *cobra.Command {
	root := &cobra.Command{
		Use:           "rubble [file...]",
		Short:         "Run rubble programs",
		Version:       rubble.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return a.repl()
			}
			return a.run(args)
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "configuration file (default $HOME/.rubble.yaml)")
	f.BoolVarP(&a.verbose, "verbose", "v", false, "log translation details")
	f.StringVar(&a.logLevel, "log-level", "", "minimum level to log (debug, info, warn, error)")
	f.BoolVar(&a.noColor, "no-color", false, "disable colored log output")

	root.AddCommand(
		&cobra.Command{
			Use:   "run file...",
			Short: "Run programs",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(args)
			},
		},
		&cobra.Command{
			Use:   "repl",
			Short: "Start an interactive shell",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.repl()
			},
		},
		&cobra.Command{
			Use:   "check file...",
			Short: "Report syntax errors without running programs",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.check(args)
			},
		},
	)
	return root
}

// setup loads configuration and creates the logger. Flags override the
// configuration file.
func (a *app) setup(cmd *cobra.Command) error {
	path, required := a.configPath, true
	if path == "" {
		path, required = defaultConfigPath(), false
	}
	cfg, err := LoadConfig(path, required)
	if err != nil {
		return a.report(err)
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("no-color") {
		cfg.NoColor = a.noColor
	}
	a.cfg = cfg
	l, err := logger.New(a.stderr, logger.Options{Level: cfg.LogLevel, Verbose: a.verbose, NoColor: cfg.NoColor})
	if err != nil {
		return a.report(errors.Wrap(err, "bad log level"))
	}
	a.log = l
	return nil
}

// newVM creates a VM wired to the app's logger and output.
func (a *app) newVM() *rubble.VM {
	vm := rubble.NewVM()
	vm.Stdout = a.stdout
	vm.SetLogger(a.log)
	if a.cfg.DebugLoading {
		vm.Session.Debug = &rubble.LoadLogger{Log: a.log, TimeFormat: a.cfg.DebugTimeFormat}
	}
	return vm
}

// report writes an error to stderr and returns it.
func (a *app) report(err error) error {
	fmt.Fprintln(a.stderr, err)
	return err
}
