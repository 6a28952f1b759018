package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bskcorona-github/studyflow/pkg/domain/planning"
)

var extractPlan bool

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract a task list from raw model output",
	Long: `Read raw model output from a file (or stdin) and print what the extractor
recovers from it as JSON. With --plan the study plan extractor is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		var result any
		if extractPlan {
			result = planning.ExtractStudyPlan(raw)
		} else {
			result = planning.ExtractTaskList(raw)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(result)
	},
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}

func init() {
	extractCmd.Flags().BoolVar(&extractPlan, "plan", false, "extract a study plan instead of a task list")
	RootCmd.AddCommand(extractCmd)
}
