package application

import (
	"context"
	"fmt"
	"time"

	"github.com/bskcorona-github/studyflow/pkg/domain/study"
)

// GoalSummary is one goal card of the dashboard.
type GoalSummary struct {
	Goal          study.Goal `json:"goal"`
	Progress      int        `json:"progress"`
	RemainingDays int        `json:"remainingDays"`
	TodayTasks    int        `json:"todayTasks"`
	TodayDone     int        `json:"todayDone"`
}

// Overview is what the dashboard page renders.
type Overview struct {
	Today time.Time          `json:"today"`
	Goals []GoalSummary      `json:"goals"`
	Tasks []study.TaskDetail `json:"tasks"`
}

type DashboardService struct {
	goals *GoalService
	tasks *TaskService
}

func NewDashboardService(goals *GoalService, tasks *TaskService) *DashboardService {
	return &DashboardService{goals: goals, tasks: tasks}
}

// Overview summarizes every goal of the user and lists today's tasks.
func (s *DashboardService) Overview(ctx context.Context, userID string, now time.Time) (*Overview, error) {
	today := study.Day(now)
	goals, err := s.goals.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.List(ctx, userID, study.TaskFilter{Date: &today})
	if err != nil {
		return nil, fmt.Errorf("today's tasks: %w", err)
	}

	out := &Overview{Today: today, Goals: make([]GoalSummary, 0, len(goals)), Tasks: tasks}
	for _, g := range goals {
		summary := GoalSummary{
			Goal:          g,
			Progress:      g.Progress(),
			RemainingDays: study.RemainingDays(g.Deadline, now),
		}
		for _, sch := range g.Schedules {
			if !sch.Date.Equal(today) {
				continue
			}
			tally := study.CountTasks(sch.Tasks)
			summary.TodayTasks += tally.Total
			summary.TodayDone += tally.Done
		}
		out.Goals = append(out.Goals, summary)
	}
	return out, nil
}
