package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bskcorona-github/studyflow/pkg/domain/ai"
	"github.com/bskcorona-github/studyflow/pkg/domain/planning"
	"github.com/bskcorona-github/studyflow/pkg/domain/study"
)

// PlannerService asks the model for task lists and study plans and runs the
// answers through the extractors.
type PlannerService struct {
	provider    ai.Provider
	generations study.GenerationRepository
	logger      *zap.Logger
	now         func() time.Time
	jsonMode    bool
}

func NewPlannerService(provider ai.Provider, generations study.GenerationRepository, logger *zap.Logger) *PlannerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlannerService{provider: provider, generations: generations, logger: logger, now: time.Now}
}

// SetClock replaces the time source (tests).
func (s *PlannerService) SetClock(now func() time.Time) { s.now = now }

// SetJSONMode asks providers for a JSON response MIME type.
func (s *PlannerService) SetJSONMode(on bool) { s.jsonMode = on }

// TaskListRequest is the body of a task suggestion.
type TaskListRequest struct {
	Subject     string
	Description string
	TargetDate  time.Time
}

// PlanResult is a generated plan and the extractor tier it came from.
type PlanResult struct {
	Plan   *planning.StudyPlan
	Source planning.Source
	Reason string
}

// SuggestTasks returns the extracted task list. An empty list is not an
// error; only a failed provider call is.
func (s *PlannerService) SuggestTasks(ctx context.Context, userID string, req TaskListRequest) (planning.Extraction, error) {
	now := s.now()
	target := req.TargetDate
	if target.IsZero() {
		target = now
	}

	resp, err := s.complete(ctx, planning.TaskListPrompt(req.Subject, req.Description, target, now), planning.TaskListSystem)
	if err != nil {
		return planning.Extraction{Tasks: []string{}, Source: planning.SourceEmpty}, err
	}

	ext := planning.ExtractTaskList(resp.Text)
	s.logger.Debug("task list extracted",
		zap.String("user_id", userID),
		zap.String("source", string(ext.Source)),
		zap.String("reason", ext.Reason),
		zap.Int("tasks", len(ext.Tasks)))
	if ext.Empty() {
		s.logger.Warn("model answer contained no tasks", zap.String("reason", ext.Reason), zap.Int("answer_bytes", len(resp.Text)))
	}

	s.record(ctx, userID, study.KindTaskList, resp, string(ext.Source), len(ext.Tasks))
	return ext, nil
}

// GeneratePlan builds a study plan for goal. When the answer holds no plan
// object it falls back to a flat task list spread one task per day.
func (s *PlannerService) GeneratePlan(ctx context.Context, userID string, goal *study.Goal) (*PlanResult, error) {
	now := s.now()
	prompt := planning.StudyPlanPrompt(planning.PlanRequest{
		Field:       goal.Field,
		Goal:        goal.Description,
		Deadline:    goal.Deadline,
		DaysPerWeek: goal.DaysPerWeek,
		HoursPerDay: goal.HoursPerDay,
	}, now)

	resp, err := s.complete(ctx, prompt, planning.StudyPlanSystem)
	if err != nil {
		return nil, err
	}

	result := &PlanResult{}
	if ext := planning.ExtractStudyPlan(resp.Text); !ext.Empty() {
		result.Plan, result.Source, result.Reason = ext.Plan, ext.Source, ext.Reason
		if len(ext.Issues) > 0 {
			s.logger.Info("study plan deviates from schema", zap.Strings("issues", ext.Issues))
		}
	} else if list := planning.ExtractTaskList(resp.Text); !list.Empty() {
		s.logger.Info("no plan object in answer, using task list", zap.String("plan_reason", ext.Reason))
		result.Plan = planning.PlanFromTaskList(list.Tasks, now)
		result.Source, result.Reason = list.Source, list.Reason
	}

	s.record(ctx, userID, study.KindStudyPlan, resp, string(result.Source), result.Plan.TaskCount())
	if result.Plan == nil {
		return nil, study.ErrNoPlan
	}
	return result, nil
}

func (s *PlannerService) complete(ctx context.Context, prompt, system string) (*ai.CompletionResponse, error) {
	req := ai.CompletionRequest{Prompt: prompt, System: system}
	if s.jsonMode {
		req.ResponseMIMEType = ai.MIMEJSON
	}
	resp, err := s.provider.Complete(ctx, req)
	if err != nil {
		s.logger.Error("AI provider call failed", zap.String("provider", s.provider.ID()), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", study.ErrGenerationFailed, err)
	}
	return resp, nil
}

func (s *PlannerService) record(ctx context.Context, userID string, kind study.GenerationKind, resp *ai.CompletionResponse, source string, count int) {
	if s.generations == nil {
		return
	}
	model := resp.Model
	if model == "" {
		model = s.provider.ID()
	}
	if source == "" {
		source = string(planning.SourceEmpty)
	}
	err := s.generations.RecordGeneration(ctx, &study.GenerationRecord{
		UserID:       userID,
		Kind:         kind,
		Model:        model,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		Source:       source,
		TaskCount:    count,
	})
	if err != nil {
		s.logger.Warn("failed to record generation", zap.Error(err))
	}
}
