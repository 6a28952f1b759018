package cli

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/bskcorona-github/studyflow/internal/infrastructure/config"
	"github.com/bskcorona-github/studyflow/pkg/domain/study"
)

func TestCLIError(t *testing.T) {
	cause := errors.New("disk full")
	tests := []struct {
		name string
		err  *CLIError
		want string
	}{
		{"with cause", NewCLIError("save failed", "free some space", cause), "save failed: disk full"},
		{"without cause", NewCLIError("save failed", "free some space", nil), "save failed"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("%s: Error() = %q, want %q", tt.name, got, tt.want)
		}
		if tt.err.ExitCode != 1 {
			t.Errorf("%s: exit code = %d, want 1", tt.name, tt.err.ExitCode)
		}
	}

	if !errors.Is(tests[0].err, cause) {
		t.Error("CLIError should unwrap to its cause")
	}
	if errors.Unwrap(tests[1].err) != nil {
		t.Error("CLIError without cause should unwrap to nil")
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHint string
		wantCLI  bool
	}{
		{
			name: "nil returns nil",
			err:  nil,
		},
		{
			name:     "ErrGenerationFailed",
			err:      fmt.Errorf("%w: quota exceeded", study.ErrGenerationFailed),
			wantHint: "Check ai.provider in the config and that GEMINI_API_KEY is set",
			wantCLI:  true,
		},
		{
			name:     "ErrNoPlan",
			err:      study.ErrNoPlan,
			wantHint: "Retry, or use 'studyflow extract' on the raw answer to see what was recovered",
			wantCLI:  true,
		},
		{
			name:     "ErrUserNotFound",
			err:      fmt.Errorf("lookup: %w", study.ErrUserNotFound),
			wantHint: "Sign in once through the web app to create the account",
			wantCLI:  true,
		},
		{
			name:     "ErrTaskNotFound",
			err:      study.ErrTaskNotFound,
			wantHint: "Run 'studyflow today' to list today's tasks",
			wantCLI:  true,
		},
		{
			name:     "ErrExists",
			err:      fmt.Errorf("studyflow.yaml: %w", config.ErrExists),
			wantHint: "Pass --force to overwrite it",
			wantCLI:  true,
		},
		{
			name:     "missing file",
			err:      fmt.Errorf("read x: %w", os.ErrNotExist),
			wantHint: "Check the path and try again",
			wantCLI:  true,
		},
		{
			name:     "ValidationError",
			err:      &study.ValidationError{Field: "target", Message: "must be a YYYY-MM-DD date"},
			wantHint: "must be a YYYY-MM-DD date",
			wantCLI:  true,
		},
		{
			name: "TransitionError",
			err: &study.TransitionError{
				TaskID: "t1",
				From:   study.StatusDone,
				Event:  "complete",
			},
			wantHint: "Task 't1' is already done",
			wantCLI:  true,
		},
		{
			name: "unmapped error passes through",
			err:  errors.New("something else"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			switch {
			case tt.err == nil:
				if got != nil {
					t.Fatalf("MapError(nil) = %v", got)
				}
			case !tt.wantCLI:
				if got != tt.err {
					t.Fatalf("MapError changed an unmapped error to %v", got)
				}
			default:
				var cliErr *CLIError
				if !errors.As(got, &cliErr) {
					t.Fatalf("MapError returned %T, want *CLIError", got)
				}
				if cliErr.Hint != tt.wantHint {
					t.Errorf("hint = %q, want %q", cliErr.Hint, tt.wantHint)
				}
				if !errors.Is(cliErr, tt.err) {
					t.Error("mapped error lost its cause")
				}
			}
		})
	}
}

func TestMapErrorKeepsCLIError(t *testing.T) {
	e := NewCLIError("custom", "hint", nil)
	if MapError(e) != error(e) {
		t.Fatal("an existing CLIError should be returned unchanged")
	}
}

func TestExitCode(t *testing.T) {
	if ExitCode(nil) != 0 {
		t.Error("nil error should exit 0")
	}
	if ExitCode(errors.New("boom")) != 1 {
		t.Error("plain errors should exit 1")
	}
	if got := ExitCode(MapError(&study.ValidationError{Field: "x", Message: "y"})); got != 2 {
		t.Errorf("validation errors should exit 2, got %d", got)
	}
}
