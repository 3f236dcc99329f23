package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrUserExists = errors.New("user already exists")
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id         SERIAL PRIMARY KEY,
	login      TEXT NOT NULL UNIQUE,
	email      TEXT NOT NULL,
	password   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS analyses (
	id         TEXT PRIMARY KEY,
	user_id    INTEGER NOT NULL REFERENCES users(id),
	kind       TEXT NOT NULL,
	input      TEXT NOT NULL,
	result     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS analyses_user_created ON analyses (user_id, created_at DESC);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	login      TEXT NOT NULL UNIQUE,
	email      TEXT NOT NULL,
	password   TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS analyses (
	id         TEXT PRIMARY KEY,
	user_id    INTEGER NOT NULL REFERENCES users(id),
	kind       TEXT NOT NULL,
	input      TEXT NOT NULL,
	result     TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS analyses_user_created ON analyses (user_id, created_at DESC);
`

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

type Repository interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	GetByLogin(ctx context.Context, login string) (int, string, error)
}

// Analysis is one stored calculation. Input and Result hold JSON documents.
type Analysis struct {
	ID        string    `db:"id"`
	UserID    int       `db:"user_id"`
	Kind      string    `db:"kind"`
	Input     string    `db:"input"`
	Result    string    `db:"result"`
	CreatedAt time.Time `db:"created_at"`
}

type Store struct {
	db *sqlx.DB
}

// Open connects to PostgreSQL ("postgres") or SQLite ("sqlite") and applies
// the schema.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if driver == "postgres" && !strings.Contains(dsn, "sslmode=") {
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			dsn += "?sslmode=require"
		} else {
			dsn += " sslmode=require"
		}
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	switch driver {
	case "postgres":
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	case "sqlite":
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	s := &Store{db: db}
	if err := s.migrate(ctx, driver); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context, driver string) error {
	schema := postgresSchema
	if driver == "sqlite" {
		schema = sqliteSchema
		if _, err := s.db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
			return fmt.Errorf("pragma fk: %w", err)
		}
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := s.db.Rebind("INSERT INTO users (login, email, password) VALUES (?, ?, ?) RETURNING id")
	err := s.db.QueryRowxContext(ctx, query, login, email, password).Scan(&id)
	if isUniqueViolation(err) {
		return 0, ErrUserExists
	}
	return id, err
}

// GetByLogin returns the user id and password hash.
func (s *Store) GetByLogin(ctx context.Context, login string) (int, string, error) {
	var row struct {
		ID       int    `db:"id"`
		Password string `db:"password"`
	}
	err := s.db.GetContext(ctx, &row, s.db.Rebind("SELECT id, password FROM users WHERE login = ?"), login)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", ErrNotFound
	}
	if err != nil {
		return 0, "", err
	}
	return row.ID, row.Password, nil
}

// SaveAnalysis assigns an id and timestamp when missing and stores a.
func (s *Store) SaveAnalysis(ctx context.Context, a *Analysis) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	query := s.db.Rebind(`INSERT INTO analyses (id, user_id, kind, input, result, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query, a.ID, a.UserID, a.Kind, a.Input, a.Result, a.CreatedAt)
	return err
}

// ListAnalyses returns the newest analyses of a user first.
func (s *Store) ListAnalyses(ctx context.Context, userID, limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 50
	}
	out := []Analysis{}
	query := s.db.Rebind(`SELECT id, user_id, kind, input, result, created_at
		FROM analyses WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`)
	if err := s.db.SelectContext(ctx, &out, query, userID, limit); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetAnalysis(ctx context.Context, userID int, id string) (Analysis, error) {
	var a Analysis
	query := s.db.Rebind(`SELECT id, user_id, kind, input, result, created_at
		FROM analyses WHERE id = ? AND user_id = ?`)
	err := s.db.GetContext(ctx, &a, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return Analysis{}, ErrNotFound
	}
	return a, err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
