// Package study holds the goal tracking model: users and their goals, the
// study days (schedules) of each goal, and the tasks of each day.
package study

import (
	"time"
)

// DateLayout is the storage and wire format of calendar days.
const DateLayout = "2006-01-02"

type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	GoogleSubject string    `json:"-"`
	Token         []byte    `json:"-"` // serialized oauth2.Token
	CreatedAt     time.Time `json:"createdAt"`
}

type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Goal is a learning objective with a deadline and a weekly time budget.
type Goal struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Field       string     `json:"field"`
	Description string     `json:"goal"`
	Deadline    time.Time  `json:"deadline"`
	DaysPerWeek int        `json:"daysPerWeek"`
	HoursPerDay float64    `json:"hoursPerDay"`
	Summary     string     `json:"summary,omitempty"`
	Materials   []string   `json:"materials,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	Schedules   []Schedule `json:"schedules"`
}

// Progress is the share of completed study days, in whole percent.
func (g *Goal) Progress() int {
	return GoalProgress(g.Schedules)
}

// Schedule is one study day of a goal.
type Schedule struct {
	ID         string    `json:"id"`
	GoalID     string    `json:"goalId"`
	Date       time.Time `json:"date"`
	IsComplete bool      `json:"isComplete"`
	Progress   float64   `json:"progress"`
	Tasks      []Task    `json:"tasks"`
}

type Task struct {
	ID               string     `json:"id"`
	GoalID           string     `json:"goalId"`
	ScheduleID       string     `json:"scheduleId"`
	Title            string     `json:"content"`
	Description      string     `json:"description,omitempty"`
	EstimatedMinutes int        `json:"estimatedMinutes,omitempty"`
	Status           TaskStatus `json:"status"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// IsComplete reports whether the task is done.
func (t Task) IsComplete() bool {
	return t.Status.IsComplete()
}

// TaskDetail is a task joined with its goal and study day, as listed on the
// tasks page.
type TaskDetail struct {
	Task
	GoalTitle        string    `json:"goalTitle"`
	GoalField        string    `json:"goalField"`
	ScheduleDate     time.Time `json:"scheduleDate"`
	ScheduleProgress float64   `json:"scheduleProgress"`
}

// TaskFilter narrows task listings. Zero values match everything.
type TaskFilter struct {
	Date   *time.Time
	GoalID string
}

type GenerationKind string

const (
	KindTaskList  GenerationKind = "task_list"
	KindStudyPlan GenerationKind = "study_plan"
)

// GenerationRecord is the audit row written for each AI call.
type GenerationRecord struct {
	ID           string
	UserID       string
	Kind         GenerationKind
	Model        string
	InputTokens  int
	OutputTokens int
	Source       string
	TaskCount    int
	CreatedAt    time.Time
}

// Day truncates t to its calendar day, expressed as midnight UTC so that
// days compare and store independently of the caller's zone.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a Day.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
