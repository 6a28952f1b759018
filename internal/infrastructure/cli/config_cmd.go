package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bskcorona-github/studyflow/internal/infrastructure/config"
	"github.com/bskcorona-github/studyflow/internal/infrastructure/logging"
)

var initForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the studyflow config file",
	// The file may be missing or broken here, so only the logger is set up.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New("info", "console", verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath, initForce); err != nil {
			return err
		}
		logger.Debug("config written", zap.String("path", configPath))
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)
		fmt.Fprintln(cmd.OutOrStdout(), "Set GEMINI_API_KEY, GOOGLE_ID and GOOGLE_SECRET in the environment before running 'studyflow serve'.")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		return config.Encode(cmd.OutOrStdout(), loaded)
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
	RootCmd.AddCommand(configCmd)
}
