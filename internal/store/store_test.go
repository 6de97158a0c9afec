package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// helper to open a store in a temporary file path
func openTempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	st, err := Open(Config{Driver: DriverSqlite, DriverConfig: &SqliteConfig{Path: path}})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestOpen_EmptyHistory(t *testing.T) {
	st := openTempStore(t)
	runs, err := st.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected no runs, got %v", runs)
	}
	if st.Driver() != DriverSqlite {
		t.Fatalf("driver = %q", st.Driver())
	}
}

func TestRecordAndListRuns(t *testing.T) {
	st := openTempStore(t)
	ctx := context.Background()
	body := `{"status":"UP"}`
	at := time.Date(2025, 3, 4, 5, 6, 7, 8000, time.UTC)

	first := Run{RunID: "r1", Name: "health", Method: "GET", URL: "http://svc/health", StatusCode: 200,
		Outcome: "success", DurationMs: 12, Body: &body, RanAt: at}
	second := Run{RunID: "r2", Name: "health", Method: "GET", URL: "http://svc/health", StatusCode: 503,
		Outcome: "validation_error", Error: "validation: status: unexpected status code 503", DurationMs: 7}
	for _, r := range []Run{first, second} {
		if err := st.RecordRun(ctx, r); err != nil {
			t.Fatalf("RecordRun(%s): %v", r.RunID, err)
		}
	}

	runs, err := st.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunID != "r2" || runs[1].RunID != "r1" {
		t.Fatalf("expected newest first, got %s,%s", runs[0].RunID, runs[1].RunID)
	}
	if runs[0].Body != nil || runs[0].Error == "" || runs[0].StatusCode != 503 {
		t.Fatalf("unexpected second run %+v", runs[0])
	}
	if runs[0].RanAt.IsZero() {
		t.Fatalf("ran_at should default to now")
	}
	got := runs[1]
	if got.Body == nil || *got.Body != body || !got.RanAt.Equal(at) || got.DurationMs != 12 || got.ID == 0 {
		t.Fatalf("first run not round-tripped: %+v", got)
	}

	limited, err := st.ListRuns(ctx, 1)
	if err != nil || len(limited) != 1 || limited[0].RunID != "r2" {
		t.Fatalf("ListRuns(1) = %v, %v", limited, err)
	}
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	cfg := Config{DriverConfig: &SqliteConfig{Path: path}, TableName: "custom_runs"}
	st, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := st.RecordRun(context.Background(), Run{RunID: "a", Name: "n", Method: "GET", URL: "u", Outcome: "success"}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	_ = st.Close()

	st, err = Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = st.Close() }()
	runs, err := st.ListRuns(context.Background(), 0)
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected 1 persisted run, got %v %v", runs, err)
	}
}

func TestOpen_Errors(t *testing.T) {
	cases := []Config{
		{Driver: "mysql"},
		{Driver: DriverSqlite, TableName: "runs; DROP TABLE x"},
		{Driver: DriverPostgresql},
		{Driver: DriverPostgresql, DriverConfig: &PostgresConfig{}},
	}
	for _, cfg := range cases {
		if st, err := Open(cfg); err == nil {
			_ = st.Close()
			t.Errorf("Open(%+v) should fail", cfg)
		}
	}
}

func TestPostgresConfig_ToMap(t *testing.T) {
	c := &PostgresConfig{Host: "db", User: "u", Password: "p@ss", DBName: "hist"}
	dsn, _ := c.ToMap()["dsn"].(string)
	if dsn != "postgres://u:p%40ss@db:5432/hist?sslmode=disable" {
		t.Fatalf("dsn = %q", dsn)
	}
	c = &PostgresConfig{DSN: " postgres://x/y ", Host: "ignored"}
	if dsn, _ := c.ToMap()["dsn"].(string); dsn != "postgres://x/y" {
		t.Fatalf("explicit dsn should win, got %q", dsn)
	}
}

func TestSqliteConfig_ToMap(t *testing.T) {
	m := (&SqliteConfig{Path: "h.db"}).ToMap()
	if m["path"] != "h.db" || m["busy_timeout_ms"] != 5000 {
		t.Fatalf("defaults = %v", m)
	}
	if m := (&SqliteConfig{Path: "h.db", BusyTimeoutMS: 250}).ToMap(); m["busy_timeout_ms"] != 250 {
		t.Fatalf("busy timeout = %v", m["busy_timeout_ms"])
	}
}
