package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/loykin/httpstep/internal/common"
	"github.com/loykin/httpstep/internal/store/connector"
	_ "modernc.org/sqlite"
)

// Store is the SQLite history backend.
type Store struct {
	db      *sql.DB
	dialect *Dialect
	DSN     string
}

func NewStore() *Store {
	return &Store{dialect: NewDialect()}
}

// Load accepts either "dsn" or "path".
func (s *Store) Load(config map[string]interface{}) error {
	if dsn, ok := config["dsn"].(string); ok && dsn != "" {
		s.DSN = dsn
		return nil
	}
	if path, ok := config["path"].(string); ok && path != "" {
		timeout, ok := config["busy_timeout_ms"].(int)
		if !ok || timeout <= 0 {
			timeout = defaultBusyTimeoutMS
		}
		s.DSN = fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", path, timeout)
	}
	return nil
}

// Connect opens the database; an unset DSN means an in-memory database.
func (s *Store) Connect() (*sql.DB, error) {
	if s.DSN == "" {
		s.DSN = ":memory:"
	}
	db, err := s.dialect.Connect(s.DSN)
	if err != nil {
		return nil, err
	}
	s.db = db
	common.GetLogger().WithStore("sqlite").Debug("SQLite database connection established")
	return db, nil
}

func (s *Store) Ensure(table string) error {
	q := s.dialect.EnsureStatement(table)
	if _, err := s.db.Exec(q); err != nil {
		common.GetLogger().WithStore("sqlite").Error("failed to create run table", "error", err, "table", table)
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

func (s *Store) RecordRun(ctx context.Context, table string, r connector.Run) error {
	return connector.InsertRun(ctx, s.db, s.dialect, table, r)
}

func (s *Store) ListRuns(ctx context.Context, table string, limit int) ([]connector.Run, error) {
	return connector.QueryRuns(ctx, s.db, s.dialect, table, limit)
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
