package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/loykin/httpstep/internal/constants"
)

// Dialect implements connector.Dialect for SQLite.
type Dialect struct{}

func NewDialect() *Dialect {
	return &Dialect{}
}

// Placeholder returns SQLite-style placeholders (?)
func (s *Dialect) Placeholder(int) string {
	return "?"
}

// TimeToStorage stores times as RFC3339Nano text.
func (s *Dialect) TimeToStorage(t time.Time) interface{} {
	return t.Format(time.RFC3339Nano)
}

// TimeFromStorage parses the text column written by TimeToStorage. The
// driver may also hand back a time.Time for columns it recognizes.
func (s *Dialect) TimeFromStorage(val interface{}) (time.Time, error) {
	switch v := val.(type) {
	case time.Time:
		return v, nil
	case string:
		return time.Parse(time.RFC3339Nano, v)
	case []byte:
		return time.Parse(time.RFC3339Nano, string(v))
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("sqlite: unexpected ran_at type %T", val)
	}
}

// Connect opens the database with a single writer connection.
func (s *Dialect) Connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	db.SetMaxOpenConns(constants.DefaultSQLiteMaxConnections)
	db.SetMaxIdleConns(constants.DefaultSQLiteMaxIdleConns)
	db.SetConnMaxLifetime(constants.DefaultMaxConnLifetime)
	db.SetConnMaxIdleTime(constants.DefaultMaxIdleTime)
	return db, nil
}

func (s *Dialect) EnsureStatement(table string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s ("+
		"id INTEGER PRIMARY KEY AUTOINCREMENT, "+
		"run_id TEXT NOT NULL, name TEXT NOT NULL, method TEXT NOT NULL, url TEXT NOT NULL, "+
		"status_code INTEGER NOT NULL, outcome TEXT NOT NULL, error TEXT NOT NULL, "+
		"duration_ms INTEGER NOT NULL, body TEXT NULL, ran_at TEXT NOT NULL)", table)
}

func (s *Dialect) DriverName() string {
	return "sqlite"
}
