package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bskcorona-github/studyflow/pkg/domain/ai"
)

// MockProvider returns canned answers. With Response empty it answers like a
// chatty model would: a fenced study plan for plan prompts and a fenced task
// array for everything else.
type MockProvider struct {
	Model    string
	Response string
	Err      error
	Now      func() time.Time

	mu    sync.Mutex
	calls []ai.CompletionRequest
}

func (m *MockProvider) ID() string {
	return "mock:" + m.Model
}

func (m *MockProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}

	text := m.Response
	if text == "" {
		text = m.canned(req)
	}
	return &ai.CompletionResponse{
		Text:  text,
		Model: m.Model,
		Usage: ai.TokenUsage{
			InputTokens:  len(strings.Fields(req.System + " " + req.Prompt)),
			OutputTokens: len(strings.Fields(text)),
		},
	}, nil
}

// Calls returns the requests received so far.
func (m *MockProvider) Calls() []ai.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ai.CompletionRequest(nil), m.calls...)
}

func (m *MockProvider) canned(req ai.CompletionRequest) string {
	now := time.Now()
	if m.Now != nil {
		now = m.Now()
	}
	day := func(offset int) string { return now.AddDate(0, 0, offset).Format("2006-01-02") }

	if strings.Contains(req.Prompt, "dailyTasks") {
		return fmt.Sprintf("Here is a plan you can start today:\n```json\n"+`{
  "summary": "Build fundamentals first, then practice with timed drills.",
  "recommendedMaterials": ["Official guide", "Flashcard app"],
  "dailyTasks": [
    {"day": 1, "date": %q, "tasks": [
      {"title": "Survey the exam format", "description": "Read the section overview and note weak areas.", "estimatedMinutes": 30},
      {"title": "Core vocabulary", "description": "Learn 30 new words with flashcards.", "estimatedMinutes": 30}
    ]},
    {"day": 2, "date": %q, "tasks": [
      {"title": "Timed practice set", "description": "Solve 20 questions under time pressure and review mistakes.", "estimatedMinutes": 60}
    ]},
    {"day": 3, "date": %q, "tasks": [
      {"title": "Review and self-test", "description": "Redo missed questions and test yourself on vocabulary.", "estimatedMinutes": 45}
    ]}
  ]
}`+"\n```\nGood luck!", day(0), day(1), day(2))
	}

	return "Here are your tasks:\n```json\n" + `[
  "Survey the material and list the main topics",
  "Study the first topic for 45 minutes",
  "Solve ten practice problems",
  "Review mistakes and write a short summary"
]` + "\n```"
}
