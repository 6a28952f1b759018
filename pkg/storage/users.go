package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bskcorona-github/studyflow/pkg/domain/study"
)

const userColumns = `id, email, name, COALESCE(google_subject, ''), token, created_at`

func scanUser(row rowScanner) (*study.User, error) {
	var u study.User
	var created int64
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.GoogleSubject, &u.Token, &created); err != nil {
		return nil, err
	}
	u.CreatedAt = fromMillis(created)
	return &u, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (r *SQLiteRepository) UpsertUser(ctx context.Context, u *study.User) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := scanUser(tx.QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM users
			 WHERE (google_subject IS NOT NULL AND google_subject = ?) OR email = ?
			 ORDER BY google_subject IS NULL LIMIT 1`,
			u.GoogleSubject, u.Email))
		switch {
		case errors.Is(err, sql.ErrNoRows):
			u.ID = uuid.NewString()
			u.CreatedAt = r.stamp()
			var token any
			if len(u.Token) > 0 {
				token = u.Token
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO users (id, email, name, google_subject, token, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
				u.ID, u.Email, u.Name, nullable(u.GoogleSubject), token, millis(u.CreatedAt))
			if err != nil {
				return fmt.Errorf("insert user: %w", err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("find user: %w", err)
		}

		u.ID = existing.ID
		u.CreatedAt = existing.CreatedAt
		if len(u.Token) == 0 {
			u.Token = existing.Token
		}
		if u.GoogleSubject == "" {
			u.GoogleSubject = existing.GoogleSubject
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE users SET email = ?, name = ?, google_subject = ?, token = ? WHERE id = ?`,
			u.Email, u.Name, nullable(u.GoogleSubject), u.Token, u.ID)
		if err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (*study.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, study.ErrUserNotFound)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*study.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		return nil, notFound(err, study.ErrUserNotFound)
	}
	return u, nil
}

func (r *SQLiteRepository) SaveToken(ctx context.Context, userID string, token []byte) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET token = ? WHERE id = ?`, token, userID)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return study.ErrUserNotFound
	}
	return nil
}

func (r *SQLiteRepository) CreateSession(ctx context.Context, s *study.Session) error {
	if s.Token == "" {
		s.Token = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
		s.Token, s.UserID, millis(s.ExpiresAt))
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetSession(ctx context.Context, token string, now time.Time) (*study.Session, error) {
	// Expired sessions are purged lazily on lookup.
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, millis(now)); err != nil {
		return nil, fmt.Errorf("purge sessions: %w", err)
	}

	var s study.Session
	var expires int64
	err := r.db.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at FROM sessions WHERE token = ?`, token).
		Scan(&s.Token, &s.UserID, &expires)
	if err != nil {
		return nil, notFound(err, study.ErrSessionNotFound)
	}
	s.ExpiresAt = fromMillis(expires)
	return &s, nil
}

func (r *SQLiteRepository) DeleteSession(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}
