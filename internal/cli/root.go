// Package cli implements the codonvm command tree
package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"codonvm/internal/config"
	"codonvm/internal/log"
)

// Version is filled in by the build
var Version string

// app carries the state shared by every subcommand
type app struct {
	cfg *config.Config
}

// NewRootCommand builds a fresh command tree
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "codonvm",
		Short:         "Run genome programs on the codon virtual machine.",
		Long:          "codonvm compiles DNA-like genome text into drawing instructions, runs them on a stack machine and records a snapshot after every instruction.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "configuration file (default: nearest "+config.FileName+")")
	root.PersistentFlags().String("log-file", "", "also write debug logs to this file")
	root.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")

	root.AddCommand(
		a.newRunCommand(),
		a.newScrubCommand(),
		a.newLintCommand(),
		a.newTokensCommand(),
		a.newCodonsCommand(),
		a.newGraphCommand(),
		a.newHistoryCommand(),
		a.newShowCommand(),
		a.newRemoveCommand(),
	)
	return root
}

// setup loads the configuration and configures logging
func (a *app) setup(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")

	var err error
	if path != "" {
		a.cfg, err = config.Load(path)
	} else {
		a.cfg, err = config.FindAndLoad(".")
	}
	if err != nil {
		return err
	}

	if err := log.SetLevel(a.cfg.Log.Level); err != nil {
		return err
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		log.SetLevel("debug")
	}

	logFile, _ := cmd.Flags().GetString("log-file")
	if logFile == "" {
		logFile = a.cfg.Log.File
	}
	if logFile != "" {
		if err := log.SetFileOutput(logFile); err != nil {
			return fmt.Errorf("could not open log file: %w", err)
		}
	}
	log.Debug("config loaded", "path", a.cfg.Path)
	return nil
}

func version() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(unknown version)"
}

// Execute runs the command tree against os.Args
func Execute() error {
	return execRoot(NewRootCommand())
}

// execRoot runs root and closes the log file however the command ends.
// Cobra skips post-run hooks when RunE fails.
func execRoot(root *cobra.Command) error {
	defer log.Close()
	return root.Execute()
}
