package postgresql

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/loykin/httpstep/internal/constants"
)

// Dialect implements connector.Dialect for PostgreSQL.
type Dialect struct{}

func NewDialect() *Dialect {
	return &Dialect{}
}

// Placeholder returns PostgreSQL-style placeholders ($1, $2, etc.)
func (p *Dialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

// TimeToStorage passes times through; the column is TIMESTAMPTZ.
func (p *Dialect) TimeToStorage(t time.Time) interface{} {
	return t
}

func (p *Dialect) TimeFromStorage(val interface{}) (time.Time, error) {
	switch v := val.(type) {
	case time.Time:
		return v.UTC(), nil
	case *time.Time:
		if v == nil {
			return time.Time{}, nil
		}
		return v.UTC(), nil
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("postgresql: unexpected ran_at type %T", val)
	}
}

// Connect opens a small pool through the pgx stdlib driver.
func (p *Dialect) Connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL connection: %w", err)
	}
	db.SetMaxOpenConns(constants.DefaultPostgresMaxConnections)
	db.SetMaxIdleConns(constants.DefaultPostgresMaxIdleConns)
	db.SetConnMaxLifetime(constants.DefaultMaxConnLifetime)
	db.SetConnMaxIdleTime(constants.DefaultMaxIdleTime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL database: %w", err)
	}
	return db, nil
}

func (p *Dialect) EnsureStatement(table string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s ("+
		"id BIGSERIAL PRIMARY KEY, "+
		"run_id TEXT NOT NULL, name TEXT NOT NULL, method TEXT NOT NULL, url TEXT NOT NULL, "+
		"status_code INTEGER NOT NULL, outcome TEXT NOT NULL, error TEXT NOT NULL, "+
		"duration_ms BIGINT NOT NULL, body TEXT NULL, ran_at TIMESTAMPTZ NOT NULL)", table)
}

func (p *Dialect) DriverName() string {
	return "postgresql"
}
