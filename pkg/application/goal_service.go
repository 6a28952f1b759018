package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bskcorona-github/studyflow/pkg/domain/events"
	"github.com/bskcorona-github/studyflow/pkg/domain/planning"
	"github.com/bskcorona-github/studyflow/pkg/domain/study"
)

const (
	MsgGoalCreated = "goal created"
	MsgPlanFailed  = "goal created but plan generation failed; try again later"
	maxHoursPerDay = 24
	maxDaysPerWeek = 7
	minDaysPerWeek = 1
)

// GoalStore is the persistence GoalService needs.
type GoalStore interface {
	study.GoalRepository
	study.UserRepository
}

type GoalService struct {
	store     GoalStore
	planner   *PlannerService
	publisher events.Publisher
	exporter  GoalExporter
	logger    *zap.Logger
	now       func() time.Time
}

func NewGoalService(store GoalStore, planner *PlannerService, publisher events.Publisher, logger *zap.Logger) *GoalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoalService{store: store, planner: planner, publisher: publisher, logger: logger, now: time.Now}
}

// SetClock replaces the time source (tests).
func (s *GoalService) SetClock(now func() time.Time) { s.now = now }

// SetExporter enables Export.
func (s *GoalService) SetExporter(e GoalExporter) { s.exporter = e }

// CreateGoalInput is the goal form.
type CreateGoalInput struct {
	Title       string
	Field       string
	Goal        string
	Deadline    string
	DaysPerWeek int
	HoursPerDay float64
	SkipPlan    bool
}

// CreateGoalResult carries the stored goal. PlanError is set when the goal
// was stored but no plan could be generated for it.
type CreateGoalResult struct {
	Goal       *study.Goal
	Message    string
	PlanError  error
	PlanSource planning.Source
}

// ParseDeadline accepts a YYYY-MM-DD day or an RFC 3339 timestamp.
func ParseDeadline(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := study.ParseDay(s); err == nil {
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return study.Day(t), nil
}

func (in CreateGoalInput) validate() (time.Time, error) {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return time.Time{}, &study.ValidationError{Field: "title", Message: "is required"}
	case strings.TrimSpace(in.Field) == "":
		return time.Time{}, &study.ValidationError{Field: "field", Message: "is required"}
	case strings.TrimSpace(in.Goal) == "":
		return time.Time{}, &study.ValidationError{Field: "goal", Message: "is required"}
	case strings.TrimSpace(in.Deadline) == "":
		return time.Time{}, &study.ValidationError{Field: "deadline", Message: "is required"}
	case in.DaysPerWeek < minDaysPerWeek || in.DaysPerWeek > maxDaysPerWeek:
		return time.Time{}, &study.ValidationError{Field: "daysPerWeek", Message: "must be between 1 and 7"}
	case in.HoursPerDay <= 0 || in.HoursPerDay > maxHoursPerDay:
		return time.Time{}, &study.ValidationError{Field: "hoursPerDay", Message: "must be greater than 0 and at most 24"}
	}
	deadline, err := ParseDeadline(in.Deadline)
	if err != nil {
		return time.Time{}, &study.ValidationError{Field: "deadline", Message: "must be a date (YYYY-MM-DD)"}
	}
	return deadline, nil
}

func (s *GoalService) Create(ctx context.Context, userID string, in CreateGoalInput) (*CreateGoalResult, error) {
	deadline, err := in.validate()
	if err != nil {
		return nil, err
	}

	goal := &study.Goal{
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Field:       strings.TrimSpace(in.Field),
		Description: strings.TrimSpace(in.Goal),
		Deadline:    deadline,
		DaysPerWeek: in.DaysPerWeek,
		HoursPerDay: in.HoursPerDay,
		Schedules:   []study.Schedule{},
	}
	if err := s.store.CreateGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	s.publish(events.Event{Type: events.GoalCreated, UserID: userID, GoalID: goal.ID})
	s.logger.Info("goal created", zap.String("goal_id", goal.ID), zap.String("user_id", userID))

	result := &CreateGoalResult{Goal: goal, Message: MsgGoalCreated}
	if in.SkipPlan || s.planner == nil {
		return result, nil
	}

	if err := s.attachPlan(ctx, userID, goal, result); err != nil {
		s.logger.Warn("plan generation failed", zap.String("goal_id", goal.ID), zap.Error(err))
		result.PlanError = err
		result.Message = MsgPlanFailed
	}
	return result, nil
}

func (s *GoalService) attachPlan(ctx context.Context, userID string, goal *study.Goal, result *CreateGoalResult) error {
	plan, err := s.planner.GeneratePlan(ctx, userID, goal)
	if err != nil {
		return err
	}
	schedules := SchedulesFromPlan(plan.Plan, s.now())
	if err := s.store.SavePlan(ctx, goal.ID, plan.Plan.Summary, plan.Plan.RecommendedMaterials, schedules); err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	goal.Summary = plan.Plan.Summary
	goal.Materials = plan.Plan.RecommendedMaterials
	loaded, err := s.store.LoadSchedules(ctx, goal.ID)
	if err != nil {
		return fmt.Errorf("load schedules: %w", err)
	}
	goal.Schedules = loaded
	result.PlanSource = plan.Source
	return nil
}

// SchedulesFromPlan lays a plan out on calendar days starting at start.
func SchedulesFromPlan(plan *planning.StudyPlan, start time.Time) []study.Schedule {
	schedules := make([]study.Schedule, 0, len(plan.DailyTasks))
	for i, day := range plan.DailyTasks {
		s := study.Schedule{Date: study.Day(day.DateOf(start, i))}
		for _, t := range day.Tasks {
			s.Tasks = append(s.Tasks, study.Task{
				Title:            t.Title,
				Description:      t.Description,
				EstimatedMinutes: int(t.EstimatedMinutes),
				Status:           study.StatusPending,
			})
		}
		schedules = append(schedules, s)
	}
	return schedules
}

// List returns the user's goals newest first, each with its days and tasks.
func (s *GoalService) List(ctx context.Context, userID string) ([]study.Goal, error) {
	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	for i := range goals {
		if goals[i].Schedules, err = s.store.LoadSchedules(ctx, goals[i].ID); err != nil {
			return nil, fmt.Errorf("load schedules: %w", err)
		}
	}
	return goals, nil
}

// Get returns ErrGoalNotFound for unknown goals and ErrForbidden for goals
// owned by someone else.
func (s *GoalService) Get(ctx context.Context, userID, goalID string) (*study.Goal, error) {
	goal, err := s.owned(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if goal.Schedules, err = s.store.LoadSchedules(ctx, goal.ID); err != nil {
		return nil, fmt.Errorf("load schedules: %w", err)
	}
	return goal, nil
}

func (s *GoalService) owned(ctx context.Context, userID, goalID string) (*study.Goal, error) {
	goal, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, study.ErrForbidden
	}
	return goal, nil
}

// Delete removes the goal with its days and tasks.
func (s *GoalService) Delete(ctx context.Context, userID, goalID string) error {
	if _, err := s.owned(ctx, userID, goalID); err != nil {
		return err
	}
	if err := s.store.DeleteGoal(ctx, goalID); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	s.publish(events.Event{Type: events.GoalDeleted, UserID: userID, GoalID: goalID})
	s.logger.Info("goal deleted", zap.String("goal_id", goalID), zap.String("user_id", userID))
	return nil
}

func (s *GoalService) publish(e events.Event) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(e)
}
