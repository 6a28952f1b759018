package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bskcorona-github/studyflow/internal/infrastructure/wiring"
	"github.com/bskcorona-github/studyflow/pkg/application"
	"github.com/bskcorona-github/studyflow/pkg/domain/study"
)

var (
	suggestSubject     string
	suggestDescription string
	suggestTarget      string
	suggestJSON        bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Ask the model for a day-by-day task list",
	Long: `Send a task list prompt to the configured AI provider and print the
extracted tasks. Nothing is stored.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		target := time.Now().AddDate(0, 0, 7)
		if suggestTarget != "" {
			t, err := time.Parse(study.DateLayout, suggestTarget)
			if err != nil {
				return &study.ValidationError{Field: "target", Message: "must be a YYYY-MM-DD date"}
			}
			target = t
		}

		provider, err := wiring.LoadAIProvider(cfg.AI)
		if err != nil {
			return err
		}
		planner := application.NewPlannerService(provider, nil, logger)
		planner.SetJSONMode(cfg.AI.JSONMode)

		ext, err := planner.SuggestTasks(cmd.Context(), "", application.TaskListRequest{
			Subject:     suggestSubject,
			Description: suggestDescription,
			TargetDate:  target,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if suggestJSON {
			return json.NewEncoder(out).Encode(ext.Tasks)
		}
		if ext.Empty() {
			fmt.Fprintf(out, "No tasks found in the answer (%s).\n", ext.Reason)
			return nil
		}
		for i, task := range ext.Tasks {
			fmt.Fprintf(out, "%2d. %s\n", i+1, task)
		}
		return nil
	},
}

func init() {
	suggestCmd.Flags().StringVar(&suggestSubject, "subject", "", "subject to study")
	suggestCmd.Flags().StringVar(&suggestDescription, "description", "", "what the learner wants to achieve")
	suggestCmd.Flags().StringVar(&suggestTarget, "target", "", "target date (YYYY-MM-DD, default one week from today)")
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "print the tasks as a JSON array")
	_ = suggestCmd.MarkFlagRequired("subject")
	RootCmd.AddCommand(suggestCmd)
}
