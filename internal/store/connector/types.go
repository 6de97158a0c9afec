package connector

import (
	"context"
	"database/sql"
	"time"
)

// Run is one row of the step run history.
// Body is nil unless response bodies are saved.
type Run struct {
	ID         int64
	RunID      string
	Name       string
	Method     string
	URL        string
	StatusCode int
	Outcome    string
	Error      string
	DurationMs int64
	Body       *string
	RanAt      time.Time
}

// Dialect captures what differs between the SQL backends.
type Dialect interface {
	Placeholder(index int) string
	TimeToStorage(t time.Time) interface{}
	TimeFromStorage(val interface{}) (time.Time, error)
	EnsureStatement(table string) string
	DriverName() string
}

// Connector is implemented by every history backend.
type Connector interface {
	Load(config map[string]interface{}) error
	Connect() (*sql.DB, error)
	Ensure(table string) error
	RecordRun(ctx context.Context, table string, r Run) error
	ListRuns(ctx context.Context, table string, limit int) ([]Run, error)
	Close() error
}
