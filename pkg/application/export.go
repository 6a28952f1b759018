package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bskcorona-github/studyflow/pkg/domain/study"
)

// ExportResult reports a finished export. Token is the possibly refreshed
// OAuth token to store back on the user.
type ExportResult struct {
	ListID   string `json:"listId"`
	Exported int    `json:"exported"`
	Token    []byte `json:"-"`
}

// GoalExporter pushes a goal's tasks to an external task manager.
type GoalExporter interface {
	ExportGoal(ctx context.Context, token []byte, goal *study.Goal) (*ExportResult, error)
}

// Export copies the goal's tasks into a new Google Tasks list.
func (s *GoalService) Export(ctx context.Context, userID, goalID string) (*ExportResult, error) {
	if s.exporter == nil {
		return nil, fmt.Errorf("export is not configured")
	}
	goal, err := s.Get(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.Token) == 0 {
		return nil, study.ErrNotConnected
	}

	result, err := s.exporter.ExportGoal(ctx, user.Token, goal)
	if err != nil {
		return nil, fmt.Errorf("export goal: %w", err)
	}
	if len(result.Token) > 0 && string(result.Token) != string(user.Token) {
		if err := s.store.SaveToken(ctx, userID, result.Token); err != nil {
			s.logger.Warn("failed to store refreshed token", zap.Error(err))
		}
	}
	s.logger.Info("goal exported", zap.String("goal_id", goalID), zap.String("list_id", result.ListID), zap.Int("tasks", result.Exported))
	return result, nil
}
