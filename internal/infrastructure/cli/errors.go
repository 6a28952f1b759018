package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/bskcorona-github/studyflow/internal/infrastructure/config"
	"github.com/bskcorona-github/studyflow/pkg/domain/study"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	var verr *study.ValidationError
	if errors.As(err, &verr) {
		return &CLIError{Message: "invalid " + verr.Field, Hint: verr.Message, Err: err, ExitCode: 2}
	}

	var transErr *study.TransitionError
	if errors.As(err, &transErr) {
		return NewCLIError(
			transErr.Error(),
			fmt.Sprintf("Task '%s' is already %s", transErr.TaskID, transErr.From),
			err,
		)
	}

	switch {
	case errors.Is(err, study.ErrGenerationFailed):
		return NewCLIError("AI generation failed", "Check ai.provider in the config and that GEMINI_API_KEY is set", err)
	case errors.Is(err, study.ErrNoPlan):
		return NewCLIError("the model returned no usable plan", "Retry, or use 'studyflow extract' on the raw answer to see what was recovered", err)
	case errors.Is(err, study.ErrUserNotFound):
		return NewCLIError("user not found", "Sign in once through the web app to create the account", err)
	case errors.Is(err, study.ErrGoalNotFound):
		return NewCLIError("goal not found", "List goals at /goals in the web app", err)
	case errors.Is(err, study.ErrTaskNotFound):
		return NewCLIError("task not found", "Run 'studyflow today' to list today's tasks", err)
	case errors.Is(err, study.ErrNotConnected):
		return NewCLIError("google account not connected", "Sign out and sign in again to grant Google Tasks access", err)
	case errors.Is(err, config.ErrExists):
		return NewCLIError("config file already exists", "Pass --force to overwrite it", err)
	case errors.Is(err, os.ErrNotExist):
		return NewCLIError("file not found", "Check the path and try again", err)
	}

	return err
}
