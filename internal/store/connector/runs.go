package connector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const runColumns = "run_id, name, method, url, status_code, outcome, error, duration_ms, body, ran_at"

// InsertRun writes r into table using d's placeholders and time encoding.
func InsertRun(ctx context.Context, db *sql.DB, d Dialect, table string, r Run) error {
	ph := make([]string, 10)
	for i := range ph {
		ph[i] = d.Placeholder(i + 1)
	}
	ranAt := r.RanAt
	if ranAt.IsZero() {
		ranAt = time.Now()
	}
	q := fmt.Sprintf("INSERT INTO %s(%s) VALUES(%s)", table, runColumns, strings.Join(ph, ", "))
	var body interface{}
	if r.Body != nil {
		body = *r.Body
	}
	if _, err := db.ExecContext(ctx, q,
		r.RunID, r.Name, r.Method, r.URL, r.StatusCode, r.Outcome, r.Error, r.DurationMs, body,
		d.TimeToStorage(ranAt.UTC()),
	); err != nil {
		return fmt.Errorf("%s: insert run: %w", d.DriverName(), err)
	}
	return nil
}

// QueryRuns returns the newest runs first; limit <= 0 means no limit.
func QueryRuns(ctx context.Context, db *sql.DB, d Dialect, table string, limit int) ([]Run, error) {
	q := fmt.Sprintf("SELECT id, %s FROM %s ORDER BY id DESC", runColumns, table)
	var args []interface{}
	if limit > 0 {
		q += " LIMIT " + d.Placeholder(1)
		args = append(args, limit)
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: list runs: %w", d.DriverName(), err)
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		var (
			r     Run
			body  sql.NullString
			ranAt interface{}
		)
		if err := rows.Scan(&r.ID, &r.RunID, &r.Name, &r.Method, &r.URL, &r.StatusCode,
			&r.Outcome, &r.Error, &r.DurationMs, &body, &ranAt); err != nil {
			return nil, fmt.Errorf("%s: scan run: %w", d.DriverName(), err)
		}
		if body.Valid {
			s := body.String
			r.Body = &s
		}
		if r.RanAt, err = d.TimeFromStorage(ranAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
