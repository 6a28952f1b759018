package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/bskcorona-github/studyflow/internal/infrastructure/config"
	"github.com/bskcorona-github/studyflow/internal/infrastructure/wiring"
	"github.com/bskcorona-github/studyflow/pkg/application"
	"github.com/bskcorona-github/studyflow/pkg/domain/planning"
	"github.com/bskcorona-github/studyflow/pkg/domain/study"
)

// run executes the root command with a config file in a temp dir.
func run(t *testing.T, stdin, configYAML string, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{"GEMINI_API_KEY", "STUDYFLOW_AI_PROVIDER", "STUDYFLOW_AI_MODEL", "STUDYFLOW_DATA_DIR"} {
		t.Setenv(key, "")
	}

	path := filepath.Join(t.TempDir(), config.DefaultFile)
	if configYAML != "" {
		if err := os.WriteFile(path, []byte(configYAML), 0600); err != nil {
			t.Fatal(err)
		}
	}

	var out bytes.Buffer
	RootCmd.SetIn(strings.NewReader(stdin))
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(append([]string{"--config", path}, args...))
	t.Cleanup(func() {
		RootCmd.SetIn(nil)
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
		extractPlan, suggestJSON, initForce = false, false, false
		suggestSubject, suggestDescription, suggestTarget = "", "", ""
	})

	err := RootCmd.Execute()
	return out.String(), err
}

func TestExecuteHelp(t *testing.T) {
	out, err := run(t, "", "", "--help")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	for _, name := range []string{"serve", "extract", "suggest", "today", "config"} {
		if !strings.Contains(out, name) {
			t.Errorf("help does not list %q", name)
		}
	}
}

func TestExtractFromStdin(t *testing.T) {
	out, err := run(t, "Here are your tasks:\n[\"Read ch.1\", \"Do 10 problems\"]\nGood luck!", "", "extract")
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	var got planning.Extraction
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	want := planning.Extraction{
		Tasks:  []string{"Read ch.1", "Do 10 problems"},
		Source: planning.SourceEmbeddedJSON,
		Reason: planning.ReasonOK,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("extraction mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractPlanFromFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "answer.txt")
	raw := "```json\n{\"dailyTasks\": [{\"day\": 1, \"tasks\": [{\"title\": \"Read\"}, {\"title\": \"Write\"}]}]}\n```"
	if err := os.WriteFile(file, []byte(raw), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "", "", "extract", "--plan", file)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	var got planning.PlanExtraction
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if got.Plan.TaskCount() != 2 {
		t.Errorf("TaskCount = %d, want 2", got.Plan.TaskCount())
	}
}

func TestExtractMissingFile(t *testing.T) {
	_, err := run(t, "", "", "extract", filepath.Join(t.TempDir(), "missing.txt"))
	var cliErr *CLIError
	if !errors.As(MapError(err), &cliErr) || cliErr.Message != "file not found" {
		t.Fatalf("expected file not found, got %v", err)
	}
}

func TestSuggestWithMockProvider(t *testing.T) {
	out, err := run(t, "", "ai:\n  provider: mock\n", "suggest", "--subject", "Go", "--target", "2026-12-01", "--json")
	if err != nil {
		t.Fatalf("suggest failed: %v", err)
	}

	var tasks []string
	if err := json.Unmarshal([]byte(out), &tasks); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if len(tasks) != 4 || tasks[0] != "Survey the material and list the main topics" {
		t.Errorf("unexpected tasks: %v", tasks)
	}
}

func TestSuggestInvalidTarget(t *testing.T) {
	_, err := run(t, "", "ai:\n  provider: mock\n", "suggest", "--subject", "Go", "--target", "next week")
	if !errors.Is(err, study.ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestInvalidConfigFails(t *testing.T) {
	_, err := run(t, "", "log:\n  level: loud\n", "extract")
	if err == nil || !strings.Contains(err.Error(), "log.level") {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.DefaultFile)

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetArgs(nil)
		initForce = false
	})

	RootCmd.SetArgs([]string{"--config", path, "config", "init"})
	if err := RootCmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	RootCmd.SetArgs([]string{"--config", path, "config", "init"})
	if err := RootCmd.Execute(); !errors.Is(err, config.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	out.Reset()
	RootCmd.SetArgs([]string{"--config", path, "config", "show"})
	if err := RootCmd.Execute(); err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out.String(), "session_ttl: 24h0m0s") || !strings.Contains(out.String(), "provider: gemini") {
		t.Errorf("unexpected config output:\n%s", out.String())
	}
}

func TestTodayModel(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Storage.DataDir = t.TempDir()
	cfg.AI.Provider = "mock"

	services, err := wiring.BuildAppServices(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("build services: %v", err)
	}
	defer services.Close()

	user := &study.User{Email: "learner@example.com", Name: "Learner", GoogleSubject: "sub-1"}
	if err := services.Store.UpsertUser(ctx, user); err != nil {
		t.Fatalf("upsert user: %v", err)
	}
	created, err := services.Goals.Create(ctx, user.ID, application.CreateGoalInput{
		Title:       "Go",
		Field:       "Programming",
		Goal:        "Write a CLI",
		Deadline:    time.Now().AddDate(0, 1, 0).Format(study.DateLayout),
		DaysPerWeek: 5,
		HoursPerDay: 1,
		SkipPlan:    true,
	})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if _, err := services.Tasks.Create(ctx, user.ID, application.CreateTaskInput{GoalID: created.Goal.ID, Title: "Read the cobra docs"}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	m := newTodayModel(ctx, services.Tasks, user)
	next, _ := m.Update(m.Init()())
	m = next.(todayModel)
	if len(m.items) != 1 || m.items[0].Title != "Read the cobra docs" {
		t.Fatalf("unexpected items: %+v", m.items)
	}
	if !strings.Contains(m.View(), "0 of 1 tasks done") {
		t.Errorf("unexpected view:\n%s", m.View())
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = next.(todayModel)
	if cmd == nil {
		t.Fatal("space should toggle the selected task")
	}
	next, cmd = m.Update(cmd())
	m = next.(todayModel)
	if cmd == nil {
		t.Fatal("a toggle should reload the list")
	}
	next, _ = m.Update(cmd())
	m = next.(todayModel)
	if !m.items[0].IsComplete() {
		t.Error("task should be done after toggling")
	}
	if !strings.Contains(m.View(), "1 of 1 tasks done") {
		t.Errorf("unexpected view:\n%s", m.View())
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}
