package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite

	"github.com/okian/aeroscore/pkg/logger"
	"github.com/okian/aeroscore/pkg/metrics"
)

// Driver selects the SQL backend.
type Driver string

// Supported drivers.
const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

const defaultSQLiteDSN = "file:aeroscore.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

// ParseDriver maps a config value to a Driver.
func ParseDriver(s string) (Driver, error) {
	switch Driver(s) {
	case DriverSQLite, DriverPostgres:
		return Driver(s), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedDriver, s)
}

// SQLStore implements Store on database/sql for SQLite and Postgres. Both
// drivers accept $N placeholders, so queries are shared.
type SQLStore struct {
	db           *sql.DB
	driver       Driver
	maxOpenConns int
	log          logger.Logger
}

// Open connects to the database and ensures the schema exists.
func Open(ctx context.Context, driver Driver, dsn string, opts ...Option) (*SQLStore, error) {
	s := &SQLStore{driver: driver, log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}

	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite"
		if dsn == "" {
			dsn = defaultSQLiteDSN
		}
		// one writer; shared-cache connections would otherwise contend for table locks
		if s.maxOpenConns == 0 {
			s.maxOpenConns = 1
		}
	case DriverPostgres:
		drvName = "pgx"
		if dsn == "" {
			dsn = "postgres://localhost:5432/aeroscore?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if s.maxOpenConns > 0 {
		db.SetMaxOpenConns(s.maxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	s.db = db

	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.log.Info(ctx, "store ready", logger.String("driver", string(driver)))
	return s, nil
}

// Migrate creates any missing tables.
func (s *SQLStore) Migrate(ctx context.Context) error {
	schema := schemaSQLite
	if s.driver == DriverPostgres {
		schema = schemaPostgres
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// observe records latency for op and counts unexpected failures.
func observe(op string, start time.Time, err *error) {
	metrics.RecordStoreQueryLatency(op, float64(time.Since(start).Microseconds())/1000.0)
	if *err != nil && !errors.Is(*err, ErrNotFound) && !errors.Is(*err, ErrConflict) {
		metrics.RecordStoreError(op)
	}
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// inTx runs fn in a transaction, committing on success.
func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func millis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// mustAffect maps a zero-row result to ErrNotFound.
func mustAffect(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS judges (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('principal','execution','artistry','difficulty'))
);

-- display names label raw scores in extended rankings
CREATE UNIQUE INDEX IF NOT EXISTS judges_display_name ON judges ((first_name || ' ' || last_name));

CREATE TABLE IF NOT EXISTS competitors (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  category TEXT NOT NULL,
  club TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS competitor_members (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  competitor_id INTEGER NOT NULL REFERENCES competitors(id) ON DELETE CASCADE,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  age INTEGER NOT NULL,
  sex TEXT NOT NULL CHECK (sex IN ('M','F'))
);

CREATE TABLE IF NOT EXISTS scores (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  judge_id INTEGER NOT NULL REFERENCES judges(id) ON DELETE CASCADE,
  competitor_id INTEGER NOT NULL REFERENCES competitors(id) ON DELETE CASCADE,
  value REAL NOT NULL,
  score_type TEXT NOT NULL CHECK (score_type IN ('execution','artistry','difficulty','difficulty_penalization','line_penalization','principal_penalization')),
  created_at INTEGER NOT NULL,
  UNIQUE (judge_id, competitor_id, score_type)
);

CREATE TABLE IF NOT EXISTS validated_competitors (
  competitor_id INTEGER PRIMARY KEY REFERENCES competitors(id) ON DELETE CASCADE,
  total_score REAL NOT NULL,
  validated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS current_vote (
  competitor_id INTEGER PRIMARY KEY REFERENCES competitors(id) ON DELETE CASCADE,
  started_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS show_competitor (
  competitor_id INTEGER PRIMARY KEY REFERENCES competitors(id) ON DELETE CASCADE,
  started_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS judges (
  id BIGSERIAL PRIMARY KEY,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('principal','execution','artistry','difficulty'))
);

-- display names label raw scores in extended rankings
CREATE UNIQUE INDEX IF NOT EXISTS judges_display_name ON judges ((first_name || ' ' || last_name));

CREATE TABLE IF NOT EXISTS competitors (
  id BIGSERIAL PRIMARY KEY,
  category TEXT NOT NULL,
  club TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS competitor_members (
  id BIGSERIAL PRIMARY KEY,
  competitor_id BIGINT NOT NULL REFERENCES competitors(id) ON DELETE CASCADE,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  age INTEGER NOT NULL,
  sex CHAR(1) NOT NULL CHECK (sex IN ('M','F'))
);

CREATE TABLE IF NOT EXISTS scores (
  id BIGSERIAL PRIMARY KEY,
  judge_id BIGINT NOT NULL REFERENCES judges(id) ON DELETE CASCADE,
  competitor_id BIGINT NOT NULL REFERENCES competitors(id) ON DELETE CASCADE,
  value DOUBLE PRECISION NOT NULL,
  score_type TEXT NOT NULL CHECK (score_type IN ('execution','artistry','difficulty','difficulty_penalization','line_penalization','principal_penalization')),
  created_at BIGINT NOT NULL,
  UNIQUE (judge_id, competitor_id, score_type)
);

CREATE TABLE IF NOT EXISTS validated_competitors (
  competitor_id BIGINT PRIMARY KEY REFERENCES competitors(id) ON DELETE CASCADE,
  total_score DOUBLE PRECISION NOT NULL,
  validated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS current_vote (
  competitor_id BIGINT PRIMARY KEY REFERENCES competitors(id) ON DELETE CASCADE,
  started_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS show_competitor (
  competitor_id BIGINT PRIMARY KEY REFERENCES competitors(id) ON DELETE CASCADE,
  started_at BIGINT NOT NULL
);
`
