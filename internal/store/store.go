package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/loykin/httpstep/internal/common"
	"github.com/loykin/httpstep/internal/constants"
	"github.com/loykin/httpstep/internal/store/connector"
	"github.com/loykin/httpstep/internal/store/postgresql"
	"github.com/loykin/httpstep/internal/store/sqlite"
)

// Run is one recorded step activation.
type Run = connector.Run

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store records step runs in SQLite or PostgreSQL.
type Store struct {
	connector connector.Connector
	table     string
	driver    string
}

// Open connects to the configured backend and ensures the run table.
func Open(cfg Config) (*Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	var c connector.Connector
	switch driver {
	case "", DriverSqlite:
		driver = DriverSqlite
		c = sqlite.NewStore()
		if cfg.DriverConfig == nil {
			cfg.DriverConfig = &SqliteConfig{Path: constants.DefaultHistoryFile}
		}
	case DriverPostgresql, "postgres":
		driver = DriverPostgresql
		c = postgresql.NewStore()
		if cfg.DriverConfig == nil {
			return nil, fmt.Errorf("store: postgresql requires a driver config")
		}
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", cfg.Driver)
	}

	table := strings.TrimSpace(cfg.TableName)
	if table == "" {
		table = constants.DefaultStepRunTable
	}
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("store: invalid table name %q", table)
	}

	logger := common.GetLogger().WithStore(driver)
	if err := c.Load(cfg.DriverConfig.ToMap()); err != nil {
		return nil, fmt.Errorf("store: load %s config: %w", driver, err)
	}
	if _, err := c.Connect(); err != nil {
		logger.Error("failed to connect history store", "error", err)
		return nil, err
	}
	if err := c.Ensure(table); err != nil {
		_ = c.Close()
		return nil, err
	}
	logger.Debug("history store ready", "table", table)
	return &Store{connector: c, table: table, driver: driver}, nil
}

// Driver returns the normalized backend name.
func (s *Store) Driver() string { return s.driver }

// RecordRun appends one run.
func (s *Store) RecordRun(ctx context.Context, r Run) error {
	if r.RanAt.IsZero() {
		r.RanAt = time.Now()
	}
	return s.connector.RecordRun(ctx, s.table, r)
}

// ListRuns returns up to limit runs, newest first (all when limit <= 0).
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	return s.connector.ListRuns(ctx, s.table, limit)
}

func (s *Store) Close() error {
	if s == nil || s.connector == nil {
		return nil
	}
	return s.connector.Close()
}
