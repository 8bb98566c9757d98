package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect identifies the SQL backend behind a Store.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Store gives read access to exam results and the lesson catalog, plus the
// writes needed to seed them.
type Store struct {
	db           *sql.DB
	dialect      Dialect
	sq           squirrel.StatementBuilderType
	queryTimeout time.Duration
}

// DialectFor picks the backend for a DSN. postgres:// and postgresql://
// URLs go to Postgres, anything else is treated as a SQLite path.
func DialectFor(dsn string) Dialect {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// ParsePostgresURL validates a PostgreSQL connection URL.
func ParsePostgresURL(url string) (*pgx.ConnConfig, error) {
	if url == "" {
		return nil, fmt.Errorf("database URL is empty")
	}
	cfg, err := pgx.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}
	return cfg, nil
}

// New opens the store described by dsn and creates the schema if needed.
func New(dsn string) (*Store, error) {
	dialect := DialectFor(dsn)

	var (
		db  *sql.DB
		err error
	)
	switch dialect {
	case DialectPostgres:
		if _, err := ParsePostgresURL(dsn); err != nil {
			return nil, err
		}
		db, err = sql.Open("pgx", dsn)
	default:
		db, err = sql.Open("sqlite", dsn+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
		if err == nil {
			// One connection keeps ":memory:" databases shared and serializes writers.
			db.SetMaxOpenConns(1)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{
		db:      db,
		dialect: dialect,
		sq:      squirrel.StatementBuilder.PlaceholderFormat(placeholderFor(dialect)),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func placeholderFor(d Dialect) squirrel.PlaceholderFormat {
	if d == DialectPostgres {
		return squirrel.Dollar
	}
	return squirrel.Question
}

// SetQueryTimeout bounds every store call. Zero or negative disables it.
func (s *Store) SetQueryTimeout(d time.Duration) {
	s.queryTimeout = d
}

// Dialect reports the backend in use.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

func (s *Store) migrate() error {
	schema := sqliteSchema
	if s.dialect == DialectPostgres {
		schema = postgresSchema
	}
	_, err := s.db.Exec(schema)
	return err
}

// difficulty uses NUMERIC affinity so "1" and "2" are stored as numbers and
// sort before labels such as "advanced".
const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS exam_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id TEXT NOT NULL,
		subject_name TEXT,
		score REAL
	);

	CREATE INDEX IF NOT EXISTS idx_exam_results_student ON exam_results(student_id);

	CREATE TABLE IF NOT EXISTS lessons (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		subject TEXT NOT NULL,
		title TEXT NOT NULL,
		difficulty NUMERIC NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_lessons_subject ON lessons(subject);

	CREATE TABLE IF NOT EXISTS imported_files (
		path TEXT PRIMARY KEY,
		hash TEXT NOT NULL,
		imported_at DATETIME NOT NULL
	);
	`

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS exam_results (
		id BIGSERIAL PRIMARY KEY,
		student_id TEXT NOT NULL,
		subject_name TEXT,
		score DOUBLE PRECISION
	);

	CREATE INDEX IF NOT EXISTS idx_exam_results_student ON exam_results(student_id);

	CREATE TABLE IF NOT EXISTS lessons (
		id BIGSERIAL PRIMARY KEY,
		subject TEXT NOT NULL,
		title TEXT NOT NULL,
		difficulty TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_lessons_subject ON lessons(subject);

	CREATE TABLE IF NOT EXISTS imported_files (
		path TEXT PRIMARY KEY,
		hash TEXT NOT NULL,
		imported_at TIMESTAMPTZ NOT NULL
	);
	`
