package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bskcorona-github/studyflow/pkg/domain/study"
)

const goalColumns = `id, user_id, title, field, description, deadline, days_per_week, hours_per_day, summary, materials, created_at`

func scanGoal(row rowScanner) (*study.Goal, error) {
	var g study.Goal
	var deadline, materials string
	var created int64
	err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Field, &g.Description, &deadline,
		&g.DaysPerWeek, &g.HoursPerDay, &g.Summary, &materials, &created)
	if err != nil {
		return nil, err
	}
	if g.Deadline, err = parseDayText(deadline); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(materials), &g.Materials); err != nil {
		return nil, fmt.Errorf("corrupt materials for goal %s: %w", g.ID, err)
	}
	g.CreatedAt = fromMillis(created)
	return &g, nil
}

func encodeMaterials(materials []string) (string, error) {
	if materials == nil {
		materials = []string{}
	}
	data, err := json.Marshal(materials)
	return string(data), err
}

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g *study.Goal) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = r.stamp()
	}
	materials, err := encodeMaterials(g.Materials)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO goals (`+goalColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.Title, g.Field, g.Description, dayText(g.Deadline),
		g.DaysPerWeek, g.HoursPerDay, g.Summary, materials, millis(g.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, id string) (*study.Goal, error) {
	g, err := scanGoal(r.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, study.ErrGoalNotFound)
	}
	return g, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, userID string) ([]study.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	goals := []study.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

// DeleteGoal removes the goal; schedules and tasks go with it through
// ON DELETE CASCADE.
func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return study.ErrGoalNotFound
	}
	return nil
}

func (r *SQLiteRepository) SavePlan(ctx context.Context, goalID, summary string, materials []string, schedules []study.Schedule) error {
	encoded, err := encodeMaterials(materials)
	if err != nil {
		return err
	}
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE goals SET summary = ?, materials = ? WHERE id = ?`, summary, encoded, goalID)
		if err != nil {
			return fmt.Errorf("update goal plan: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return study.ErrGoalNotFound
		}

		touched := map[string]bool{}
		for i := range schedules {
			s := &schedules[i]
			s.GoalID = goalID
			id, err := findOrCreateSchedule(ctx, tx, goalID, s.Date)
			if err != nil {
				return err
			}
			s.ID = id
			touched[id] = true

			for j := range s.Tasks {
				t := &s.Tasks[j]
				t.GoalID = goalID
				t.ScheduleID = id
				if err := r.insertTask(ctx, tx, t); err != nil {
					return err
				}
			}
		}
		for id := range touched {
			if err := recount(ctx, tx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// recount refreshes a day's progress from its tasks after bulk inserts.
func recount(ctx context.Context, tx *sql.Tx, scheduleID string) error {
	var done, total int
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(status = 'done'), 0), COUNT(*) FROM tasks WHERE schedule_id = ?`, scheduleID).
		Scan(&done, &total)
	if err != nil {
		return fmt.Errorf("count tasks: %w", err)
	}
	tally := study.Tally{Done: done, Total: total}
	_, err = tx.ExecContext(ctx, `UPDATE schedules SET progress = ?, is_complete = ? WHERE id = ?`,
		tally.Progress(), tally.Complete(), scheduleID)
	return err
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func findOrCreateSchedule(ctx context.Context, q execQuerier, goalID string, day time.Time) (string, error) {
	_, err := q.ExecContext(ctx,
		`INSERT INTO schedules (id, goal_id, date) VALUES (?, ?, ?) ON CONFLICT(goal_id, date) DO NOTHING`,
		uuid.NewString(), goalID, dayText(day))
	if err != nil {
		return "", fmt.Errorf("insert schedule: %w", err)
	}
	var id string
	err = q.QueryRowContext(ctx, `SELECT id FROM schedules WHERE goal_id = ? AND date = ?`, goalID, dayText(day)).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("find schedule: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) LoadSchedules(ctx context.Context, goalID string) ([]study.Schedule, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, goal_id, date, is_complete, progress FROM schedules WHERE goal_id = ? ORDER BY date`, goalID)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	schedules := []study.Schedule{}
	index := map[string]int{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[s.ID] = len(schedules)
		schedules = append(schedules, *s)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	taskRows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE goal_id = ? ORDER BY created_at, rowid`, goalID)
	if err != nil {
		return nil, fmt.Errorf("list goal tasks: %w", err)
	}
	defer taskRows.Close()
	for taskRows.Next() {
		t, err := scanTask(taskRows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[t.ScheduleID]; ok {
			schedules[i].Tasks = append(schedules[i].Tasks, *t)
		}
	}
	if err := taskRows.Err(); err != nil {
		return nil, err
	}
	for i := range schedules {
		if schedules[i].Tasks == nil {
			schedules[i].Tasks = []study.Task{}
		}
	}
	return schedules, nil
}

func scanSchedule(row rowScanner) (*study.Schedule, error) {
	var s study.Schedule
	var date string
	if err := row.Scan(&s.ID, &s.GoalID, &date, &s.IsComplete, &s.Progress); err != nil {
		return nil, err
	}
	day, err := parseDayText(date)
	if err != nil {
		return nil, err
	}
	s.Date = day
	return &s, nil
}
