package study

import "fmt"

// TaskStatus is the completion state of a task.
type TaskStatus string

const (
	StatusPending TaskStatus = "pending"
	StatusDone    TaskStatus = "done"
)

// Task events.
const (
	EventComplete = "complete"
	EventReopen   = "reopen"
)

// validTransitions maps currentStatus -> event -> targetStatus.
var validTransitions = map[TaskStatus]map[string]TaskStatus{
	StatusPending: {EventComplete: StatusDone},
	StatusDone:    {EventReopen: StatusPending},
}

// IsValid returns true if the status is a valid task status.
func (s TaskStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

func (s TaskStatus) String() string {
	return string(s)
}

// IsComplete returns true for done tasks.
func (s TaskStatus) IsComplete() bool {
	return s == StatusDone
}

// CanTransitionWith returns true if the event can fire from this status.
func (s TaskStatus) CanTransitionWith(event string) bool {
	_, ok := validTransitions[s][event]
	return ok
}

// TransitionWith returns the target status for event.
func (s TaskStatus) TransitionWith(event string) (TaskStatus, error) {
	target, ok := validTransitions[s][event]
	if !ok {
		return s, fmt.Errorf("event '%s' not allowed from status '%s'", event, s)
	}
	return target, nil
}

// EventFor returns the event that moves a task into the requested completion
// state, or "" when it is already there.
func (s TaskStatus) EventFor(complete bool) string {
	switch {
	case complete && !s.IsComplete():
		return EventComplete
	case !complete && s.IsComplete():
		return EventReopen
	default:
		return ""
	}
}

// ParseStatus accepts stored status strings; unknown values read as pending.
func ParseStatus(s string) TaskStatus {
	if st := TaskStatus(s); st.IsValid() {
		return st
	}
	return StatusPending
}
