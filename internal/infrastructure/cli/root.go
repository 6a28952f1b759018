package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bskcorona-github/studyflow/internal/infrastructure/config"
	"github.com/bskcorona-github/studyflow/internal/infrastructure/logging"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	configPath string
	verbose    bool

	cfg    = config.Default()
	logger = zap.NewNop()
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "studyflow",
	Version: Version,
	Short:   "Plan study goals and track daily tasks",
	Long: `studyflow turns a learning goal and a deadline into a day-by-day plan
generated by a language model, then tracks each study day's progress.

Run 'studyflow serve' to start the web application.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// setup loads the config file and builds the logger for every command.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	l, err := logging.New(loaded.Log.Level, loaded.Log.Format, verbose)
	if err != nil {
		return err
	}
	cfg, logger = loaded, l
	logger.Debug("config loaded", zap.String("path", configPath), zap.String("ai_provider", cfg.AI.Provider))
	return nil
}

// Execute runs the root command and prints mapped errors with their hints
// to stderr. This is called by main.main().
func Execute() error {
	err := MapError(RootCmd.Execute())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var cliErr *CLIError
		if errors.As(err, &cliErr) && cliErr.Hint != "" {
			fmt.Fprintln(os.Stderr, "Hint:", cliErr.Hint)
		}
	}
	return err
}

// ExitCode returns the process exit status for an error from Execute.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) && cliErr.ExitCode != 0 {
		return cliErr.ExitCode
	}
	return 1
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultFile, "path to the config file")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
