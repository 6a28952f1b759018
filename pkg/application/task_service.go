package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bskcorona-github/studyflow/pkg/domain/events"
	"github.com/bskcorona-github/studyflow/pkg/domain/study"
)

// TaskStore is the persistence TaskService needs.
type TaskStore interface {
	study.TaskRepository
	GetGoal(ctx context.Context, id string) (*study.Goal, error)
}

type TaskService struct {
	store     TaskStore
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewTaskService(store TaskStore, publisher events.Publisher, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{store: store, publisher: publisher, logger: logger, now: time.Now}
}

// SetClock replaces the time source (tests).
func (s *TaskService) SetClock(now func() time.Time) { s.now = now }

type CreateTaskInput struct {
	GoalID      string
	Title       string
	Description string
	// Date is YYYY-MM-DD; empty means today.
	Date string
}

type UpdateTaskInput struct {
	TaskID      string
	IsComplete  *bool
	Title       *string
	Description *string
}

// Create appends a task to the goal's study day, creating the day if needed.
func (s *TaskService) Create(ctx context.Context, userID string, in CreateTaskInput) (*study.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, &study.ValidationError{Field: "content", Message: "is required"}
	}
	if in.GoalID == "" {
		return nil, &study.ValidationError{Field: "goalId", Message: "is required"}
	}
	day := study.Day(s.now())
	if strings.TrimSpace(in.Date) != "" {
		d, err := ParseDeadline(in.Date)
		if err != nil {
			return nil, &study.ValidationError{Field: "date", Message: "must be a date (YYYY-MM-DD)"}
		}
		day = d
	}

	goal, err := s.store.GetGoal(ctx, in.GoalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, study.ErrGoalNotFound
	}

	schedule, err := s.store.FindOrCreateSchedule(ctx, goal.ID, day)
	if err != nil {
		return nil, fmt.Errorf("find schedule: %w", err)
	}
	task := &study.Task{
		GoalID:      goal.ID,
		ScheduleID:  schedule.ID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      study.StatusPending,
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	progress, err := s.recompute(ctx, schedule.ID, false)
	if err != nil {
		return nil, err
	}
	s.publish(events.Event{Type: events.TaskCreated, UserID: userID, GoalID: goal.ID, TaskID: task.ID, Progress: progressPtr(progress)})
	return task, nil
}

// owned loads a task of userID. Tasks of other users read as missing.
func (s *TaskService) owned(ctx context.Context, userID, taskID string) (*study.Task, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	goal, err := s.store.GetGoal(ctx, task.GoalID)
	if errors.Is(err, study.ErrGoalNotFound) || (err == nil && goal.UserID != userID) {
		return nil, study.ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Update edits a task. Completion changes go through the task state machine
// and refresh the study day's progress.
func (s *TaskService) Update(ctx context.Context, userID string, in UpdateTaskInput) (*study.Task, error) {
	if in.TaskID == "" {
		return nil, &study.ValidationError{Field: "taskId", Message: "is required"}
	}
	task, err := s.owned(ctx, userID, in.TaskID)
	if err != nil {
		return nil, err
	}

	if in.IsComplete != nil {
		if _, err := study.SetComplete(task, *in.IsComplete); err != nil {
			return nil, err
		}
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, &study.ValidationError{Field: "title", Message: "must not be empty"}
		}
		task.Title = title
	}
	if in.Description != nil {
		task.Description = strings.TrimSpace(*in.Description)
	}
	if err := s.store.UpdateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	event := events.Event{Type: events.TaskUpdated, UserID: userID, GoalID: task.GoalID, TaskID: task.ID}
	if in.IsComplete != nil {
		progress, err := s.recompute(ctx, task.ScheduleID, false)
		if err != nil {
			return nil, err
		}
		event.Progress = progressPtr(progress)
	}
	s.publish(event)
	return task, nil
}

// Delete removes a task and refreshes its study day. A day left empty counts
// as complete.
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	if taskID == "" {
		return &study.ValidationError{Field: "taskId", Message: "is required"}
	}
	task, err := s.owned(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTask(ctx, task.ID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	progress, err := s.recompute(ctx, task.ScheduleID, true)
	if err != nil {
		return err
	}
	s.publish(events.Event{Type: events.TaskDeleted, UserID: userID, GoalID: task.GoalID, TaskID: task.ID, Progress: progressPtr(progress)})
	return nil
}

// List returns the user's tasks, optionally for one day or one goal.
func (s *TaskService) List(ctx context.Context, userID string, filter study.TaskFilter) ([]study.TaskDetail, error) {
	tasks, err := s.store.ListTasks(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Today lists the user's tasks scheduled for the current day.
func (s *TaskService) Today(ctx context.Context, userID string) ([]study.TaskDetail, error) {
	today := study.Day(s.now())
	return s.List(ctx, userID, study.TaskFilter{Date: &today})
}

func (s *TaskService) recompute(ctx context.Context, scheduleID string, afterDelete bool) (float64, error) {
	tasks, err := s.store.ScheduleTasks(ctx, scheduleID)
	if err != nil {
		return 0, fmt.Errorf("load schedule tasks: %w", err)
	}
	tally := study.CountTasks(tasks)
	complete := tally.Complete()
	if afterDelete {
		complete = tally.CompleteAfterDelete()
	}
	if err := s.store.UpdateScheduleProgress(ctx, scheduleID, tally.Progress(), complete); err != nil {
		return 0, err
	}
	s.logger.Debug("schedule progress updated",
		zap.String("schedule_id", scheduleID),
		zap.Float64("progress", tally.Progress()),
		zap.Bool("complete", complete))
	return tally.Progress(), nil
}

func (s *TaskService) publish(e events.Event) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(e)
}
