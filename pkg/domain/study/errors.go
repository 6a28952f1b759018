package study

import "errors"

// Domain errors for goals, schedules and tasks.
var (
	// ErrGoalNotFound indicates the goal does not exist.
	ErrGoalNotFound = errors.New("goal not found")

	// ErrTaskNotFound indicates the task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrUserNotFound indicates no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrSessionNotFound indicates the session token is unknown or expired.
	ErrSessionNotFound = errors.New("session not found")

	// ErrForbidden indicates the resource belongs to another user.
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthenticated indicates the caller has no valid session.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNoPlan indicates the model answer contained neither a plan nor a task list.
	ErrNoPlan = errors.New("no study plan could be extracted")

	// ErrGenerationFailed indicates the AI provider call failed.
	ErrGenerationFailed = errors.New("task generation failed")

	// ErrInvalidTransition indicates the requested status change is not allowed.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidInput is matched by every ValidationError.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConnected indicates the user has no stored Google token.
	ErrNotConnected = errors.New("google account not connected")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Is allows errors.Is to work with ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// TransitionError provides details about an invalid transition.
type TransitionError struct {
	TaskID string
	From   TaskStatus
	Event  string
}

func (e *TransitionError) Error() string {
	return "cannot " + e.Event + " task " + e.TaskID + " while it is " + string(e.From)
}

// Is allows errors.Is to work with TransitionError.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
