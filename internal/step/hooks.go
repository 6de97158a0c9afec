package step

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/loykin/httpstep/internal/metrics"
	"github.com/loykin/httpstep/internal/store"
)

// HistoryHook records every run in st. Response bodies are kept only when
// saveBody is set.
func HistoryHook(st *store.Store, saveBody bool) Hook {
	return HookFunc(func(ctx context.Context, r *Report) error {
		run := store.Run{
			RunID:      r.RunID,
			Name:       r.Name,
			Method:     r.Method,
			URL:        r.URL,
			StatusCode: r.StatusCode,
			Outcome:    r.Outcome(),
			DurationMs: r.Duration.Milliseconds(),
			RanAt:      r.StartedAt,
		}
		if r.Err != nil {
			run.Error = r.Err.Error()
		}
		if saveBody && r.Result != nil {
			b := string(r.Result.Body)
			run.Body = &b
		}
		return st.RecordRun(ctx, run)
	})
}

// MetricsHook writes a Prometheus textfile for every run.
func MetricsHook(path string) Hook {
	return HookFunc(func(_ context.Context, r *Report) error {
		s := metrics.Sample{
			Step:       r.Name,
			Outcome:    r.Outcome(),
			StatusCode: r.StatusCode,
			Duration:   r.Duration,
			FinishedAt: r.StartedAt.Add(r.Duration),
		}
		if r.Result != nil {
			s.ResponseBytes = len(r.Result.Body)
		}
		return metrics.WriteSample(path, s)
	})
}

// OutputFileHook appends the extracted outputs of a successful run to path
// as name=value lines, sorted by name. Multi-line values use the
// name<<DELIM heredoc form.
func OutputFileHook(path string) Hook {
	return HookFunc(func(_ context.Context, r *Report) error {
		if r.Err != nil || len(r.Outputs) == 0 {
			return nil
		}
		return appendOutputs(path, r.Outputs)
	})
}

func appendOutputs(path string, outputs map[string]string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("output file: %w", err)
		}
	}
	names := make([]string, 0, len(outputs))
	for k := range outputs {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		v := outputs[name]
		if strings.ContainsAny(v, "\r\n") {
			delim := "HTTPSTEP_EOF"
			for strings.Contains(v, delim) {
				delim += "_"
			}
			fmt.Fprintf(&b, "%s<<%s\n%s\n%s\n", name, delim, v, delim)
			continue
		}
		fmt.Fprintf(&b, "%s=%s\n", name, v)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("output file: %w", err)
	}
	if _, err := f.WriteString(b.String()); err != nil {
		_ = f.Close()
		return fmt.Errorf("output file: %w", err)
	}
	return f.Close()
}
