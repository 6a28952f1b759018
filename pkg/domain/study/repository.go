package study

import (
	"context"
	"time"
)

type UserRepository interface {
	// UpsertUser inserts u or updates the user with the same Google subject
	// (or email) and fills in u.ID and u.CreatedAt.
	UpsertUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	SaveToken(ctx context.Context, userID string, token []byte) error
}

type SessionRepository interface {
	CreateSession(ctx context.Context, s *Session) error
	// GetSession returns ErrSessionNotFound for unknown tokens and for
	// sessions expired at now, which it deletes.
	GetSession(ctx context.Context, token string, now time.Time) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
}

type GoalRepository interface {
	CreateGoal(ctx context.Context, g *Goal) error
	// GetGoal loads the goal without its schedules.
	GetGoal(ctx context.Context, id string) (*Goal, error)
	// ListGoals returns the user's goals newest first, without schedules.
	ListGoals(ctx context.Context, userID string) ([]Goal, error)
	DeleteGoal(ctx context.Context, id string) error
	// SavePlan stores the plan summary on the goal and inserts its schedules
	// and their tasks in one transaction. IDs are assigned in place.
	SavePlan(ctx context.Context, goalID, summary string, materials []string, schedules []Schedule) error
	// LoadSchedules returns the goal's days by date, each with its tasks.
	LoadSchedules(ctx context.Context, goalID string) ([]Schedule, error)
}

type TaskRepository interface {
	GetTask(ctx context.Context, id string) (*Task, error)
	FindOrCreateSchedule(ctx context.Context, goalID string, day time.Time) (*Schedule, error)
	CreateTask(ctx context.Context, t *Task) error
	UpdateTask(ctx context.Context, t *Task) error
	DeleteTask(ctx context.Context, id string) error
	ScheduleTasks(ctx context.Context, scheduleID string) ([]Task, error)
	UpdateScheduleProgress(ctx context.Context, scheduleID string, progress float64, complete bool) error
	// ListTasks returns the user's tasks ordered by day, then creation time.
	ListTasks(ctx context.Context, userID string, filter TaskFilter) ([]TaskDetail, error)
}

type GenerationRepository interface {
	RecordGeneration(ctx context.Context, r *GenerationRecord) error
	ListGenerations(ctx context.Context, userID string, limit int) ([]GenerationRecord, error)
}

// Store is the full persistence surface used by the application services.
type Store interface {
	UserRepository
	SessionRepository
	GoalRepository
	TaskRepository
	GenerationRepository
	Close() error
}
