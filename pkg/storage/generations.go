package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bskcorona-github/studyflow/pkg/domain/study"
)

func (r *SQLiteRepository) RecordGeneration(ctx context.Context, g *study.GenerationRecord) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = r.stamp()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO generations (id, user_id, kind, model, input_tokens, output_tokens, source, task_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, string(g.Kind), g.Model, g.InputTokens, g.OutputTokens, g.Source, g.TaskCount, millis(g.CreatedAt))
	if err != nil {
		return fmt.Errorf("record generation: %w", err)
	}
	return nil
}

// ListGenerations returns the user's most recent generations first.
func (r *SQLiteRepository) ListGenerations(ctx context.Context, userID string, limit int) ([]study.GenerationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, kind, model, input_tokens, output_tokens, source, task_count, created_at
		 FROM generations WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()

	out := []study.GenerationRecord{}
	for rows.Next() {
		var g study.GenerationRecord
		var kind string
		var created int64
		if err := rows.Scan(&g.ID, &g.UserID, &kind, &g.Model, &g.InputTokens, &g.OutputTokens, &g.Source, &g.TaskCount, &created); err != nil {
			return nil, err
		}
		g.Kind = study.GenerationKind(kind)
		g.CreatedAt = fromMillis(created)
		out = append(out, g)
	}
	return out, rows.Err()
}
