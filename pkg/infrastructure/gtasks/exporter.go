// Package gtasks copies a goal's study plan into Google Tasks.
package gtasks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"github.com/bskcorona-github/studyflow/pkg/application"
	"github.com/bskcorona-github/studyflow/pkg/domain/study"
)

// APITimeout bounds a whole export.
const APITimeout = 30 * time.Second

// Exporter implements application.GoalExporter.
type Exporter struct {
	config   *oauth2.Config
	endpoint string
}

var _ application.GoalExporter = (*Exporter)(nil)

func NewExporter(config *oauth2.Config) *Exporter {
	return &Exporter{config: config}
}

// NewExporterWithEndpoint sends API calls to endpoint (tests).
func NewExporterWithEndpoint(config *oauth2.Config, endpoint string) *Exporter {
	return &Exporter{config: config, endpoint: endpoint}
}

// ExportGoal creates a task list named after the goal and inserts every
// task with its day as due date. The returned token may have been refreshed.
func (e *Exporter) ExportGoal(ctx context.Context, rawToken []byte, goal *study.Goal) (*application.ExportResult, error) {
	var token oauth2.Token
	if err := json.Unmarshal(rawToken, &token); err != nil {
		return nil, fmt.Errorf("invalid stored token: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	// Token source that auto-refreshes
	source := oauth2.ReuseTokenSource(&token, e.config.TokenSource(ctx, &token))
	opts := []option.ClientOption{option.WithHTTPClient(oauth2.NewClient(ctx, source))}
	if e.endpoint != "" {
		opts = append(opts, option.WithEndpoint(e.endpoint))
	}
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create tasks service: %w", err)
	}

	list, err := svc.Tasklists.Insert(&tasks.TaskList{Title: goal.Title}).Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err)
	}

	exported := 0
	for _, day := range goal.Schedules {
		for _, t := range day.Tasks {
			item := &tasks.Task{
				Title: t.Title,
				Notes: notes(t),
				Due:   day.Date.UTC().Format(time.RFC3339),
			}
			if t.IsComplete() {
				item.Status = "completed"
			}
			if _, err := svc.Tasks.Insert(list.Id, item).Context(ctx).Do(); err != nil {
				return nil, wrapError(err)
			}
			exported++
		}
	}

	result := &application.ExportResult{ListID: list.Id, Exported: exported}
	if current, err := source.Token(); err == nil {
		if result.Token, err = json.Marshal(current); err != nil {
			return nil, fmt.Errorf("encode token: %w", err)
		}
	}
	return result, nil
}

func notes(t study.Task) string {
	var parts []string
	if t.Description != "" {
		parts = append(parts, t.Description)
	}
	if t.EstimatedMinutes > 0 {
		parts = append(parts, fmt.Sprintf("Estimated: %d min", t.EstimatedMinutes))
	}
	return strings.Join(parts, "\n")
}

// wrapError turns API failures into short messages.
func wrapError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "context deadline exceeded"):
		return fmt.Errorf("google tasks request timed out: %w", err)
	case strings.Contains(msg, "401"), strings.Contains(msg, "403"):
		return fmt.Errorf("%w: google token expired or revoked", study.ErrNotConnected)
	}
	return fmt.Errorf("google tasks: %w", err)
}
