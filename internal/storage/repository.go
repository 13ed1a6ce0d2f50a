package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"finweb/internal/log"
	"finweb/internal/session"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores sessions in a local SQLite database.
type SQLiteRepository struct {
	db     *sql.DB
	now    func() time.Time
	logger *log.Logger
}

var _ session.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		now:    time.Now,
		logger: logger.WithComponent(log.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Save(ctx context.Context, s session.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, email, token, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			email = excluded.email,
			token = excluded.token,
			expires_at = excluded.expires_at`,
		s.ID, s.User.ID, s.User.Email, s.Token, s.CreatedAt.Unix(), s.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (session.Session, error) {
	var (
		s                  session.Session
		created, expiresAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, email, token, created_at, expires_at
		FROM sessions WHERE id = ? AND expires_at > ?`,
		id, r.now().Unix()).
		Scan(&s.ID, &s.User.ID, &s.User.Email, &s.Token, &created, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Session{}, session.ErrNotFound
	}
	if err != nil {
		return session.Session{}, fmt.Errorf("get session: %w", err)
	}
	s.CreatedAt = time.Unix(created, 0).UTC()
	s.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	return s, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CleanExpired deletes expired sessions and returns how many were removed.
// It lets a cache.Manager purge the table on its cleanup schedule.
func (r *SQLiteRepository) CleanExpired() int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, r.now().Unix())
	if err != nil {
		r.logger.Error("Failed to purge expired sessions", log.FieldError, err.Error())
		return 0
	}
	n, _ := res.RowsAffected()
	return int(n)
}
