// Package events defines the notifications services emit when a user's
// goals or tasks change.
package events

import "time"

// Event types.
const (
	GoalCreated = "goal.created"
	GoalDeleted = "goal.deleted"
	TaskCreated = "task.created"
	TaskUpdated = "task.updated"
	TaskDeleted = "task.deleted"
)

// Event describes one change. Progress is the affected study day's
// completion fraction, when a task changed.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	UserID    string    `json:"-"`
	GoalID    string    `json:"goalId,omitempty"`
	TaskID    string    `json:"taskId,omitempty"`
	Progress  *float64  `json:"progress,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler receives published events.
type Handler func(Event) error

// Publisher fans events out to subscribers.
type Publisher interface {
	Publish(event Event) error
	Subscribe(handler Handler)
}
