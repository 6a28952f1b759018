package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bskcorona-github/studyflow/pkg/domain/study"
)

const taskColumns = `id, goal_id, schedule_id, title, description, estimated_minutes, status, created_at`

func scanTask(row rowScanner) (*study.Task, error) {
	var t study.Task
	var status string
	var created int64
	if err := row.Scan(&t.ID, &t.GoalID, &t.ScheduleID, &t.Title, &t.Description, &t.EstimatedMinutes, &status, &created); err != nil {
		return nil, err
	}
	t.Status = study.ParseStatus(status)
	t.CreatedAt = fromMillis(created)
	return &t, nil
}

func (r *SQLiteRepository) insertTask(ctx context.Context, q execQuerier, t *study.Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = r.stamp()
	}
	if !t.Status.IsValid() {
		t.Status = study.StatusPending
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.GoalID, t.ScheduleID, t.Title, t.Description, t.EstimatedMinutes, string(t.Status), millis(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id string) (*study.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, study.ErrTaskNotFound)
	}
	return t, nil
}

func (r *SQLiteRepository) FindOrCreateSchedule(ctx context.Context, goalID string, day time.Time) (*study.Schedule, error) {
	id, err := findOrCreateSchedule(ctx, r.db, goalID, day)
	if err != nil {
		return nil, err
	}
	return scanSchedule(r.db.QueryRowContext(ctx,
		`SELECT id, goal_id, date, is_complete, progress FROM schedules WHERE id = ?`, id))
}

func (r *SQLiteRepository) CreateTask(ctx context.Context, t *study.Task) error {
	return r.insertTask(ctx, r.db, t)
}

func (r *SQLiteRepository) UpdateTask(ctx context.Context, t *study.Task) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, estimated_minutes = ?, status = ? WHERE id = ?`,
		t.Title, t.Description, t.EstimatedMinutes, string(t.Status), t.ID)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return study.ErrTaskNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return study.ErrTaskNotFound
	}
	return nil
}

func (r *SQLiteRepository) ScheduleTasks(ctx context.Context, scheduleID string) ([]study.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE schedule_id = ? ORDER BY created_at, rowid`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("list schedule tasks: %w", err)
	}
	defer rows.Close()

	tasks := []study.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (r *SQLiteRepository) UpdateScheduleProgress(ctx context.Context, scheduleID string, progress float64, complete bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE schedules SET progress = ?, is_complete = ? WHERE id = ?`, progress, complete, scheduleID)
	if err != nil {
		return fmt.Errorf("update schedule progress: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListTasks(ctx context.Context, userID string, filter study.TaskFilter) ([]study.TaskDetail, error) {
	var (
		where = []string{"g.user_id = ?"}
		args  = []any{userID}
	)
	if filter.Date != nil {
		where = append(where, "s.date = ?")
		args = append(args, dayText(*filter.Date))
	}
	if filter.GoalID != "" {
		where = append(where, "t.goal_id = ?")
		args = append(args, filter.GoalID)
	}

	query := `SELECT t.id, t.goal_id, t.schedule_id, t.title, t.description, t.estimated_minutes, t.status, t.created_at,
			g.title, g.field, s.date, s.progress
		FROM tasks t
		JOIN schedules s ON s.id = t.schedule_id
		JOIN goals g ON g.id = t.goal_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY s.date, t.created_at, t.rowid`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := []study.TaskDetail{}
	for rows.Next() {
		var d study.TaskDetail
		var status, date string
		var created int64
		err := rows.Scan(&d.ID, &d.GoalID, &d.ScheduleID, &d.Title, &d.Description, &d.EstimatedMinutes, &status, &created,
			&d.GoalTitle, &d.GoalField, &date, &d.ScheduleProgress)
		if err != nil {
			return nil, err
		}
		d.Status = study.ParseStatus(status)
		d.CreatedAt = fromMillis(created)
		if d.ScheduleDate, err = parseDayText(date); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
