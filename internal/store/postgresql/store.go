package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/loykin/httpstep/internal/common"
	"github.com/loykin/httpstep/internal/store/connector"
)

// Store is the PostgreSQL history backend.
type Store struct {
	db      *sql.DB
	dialect *Dialect
	DSN     string
}

func NewStore() *Store {
	return &Store{dialect: NewDialect()}
}

func (p *Store) Load(config map[string]interface{}) error {
	dsn, _ := config["dsn"].(string)
	if dsn == "" {
		return errors.New("postgres dsn is required")
	}
	p.DSN = dsn
	return nil
}

func (p *Store) Connect() (*sql.DB, error) {
	if p.DSN == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := p.dialect.Connect(p.DSN)
	if err != nil {
		return nil, err
	}
	p.db = db
	common.GetLogger().WithStore("postgresql").Debug("PostgreSQL database connection established")
	return db, nil
}

func (p *Store) Ensure(table string) error {
	q := p.dialect.EnsureStatement(table)
	if _, err := p.db.Exec(q); err != nil {
		common.GetLogger().WithStore("postgresql").Error("failed to create run table", "error", err, "table", table)
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

func (p *Store) RecordRun(ctx context.Context, table string, r connector.Run) error {
	return connector.InsertRun(ctx, p.db, p.dialect, table, r)
}

func (p *Store) ListRuns(ctx context.Context, table string, limit int) ([]connector.Run, error) {
	return connector.QueryRuns(ctx, p.db, p.dialect, table, limit)
}

func (p *Store) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}
