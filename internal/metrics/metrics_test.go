package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "httpstep.prom")
	err := WriteSample(path, Sample{
		Step: "health", Outcome: "success", StatusCode: 200,
		Duration: 1500 * time.Millisecond, ResponseBytes: 42,
		FinishedAt: time.Unix(1700000000, 0),
	})
	if err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	out := string(raw)
	for _, want := range []string{
		`httpstep_last_run_success{outcome="success",step="health"} 1`,
		`httpstep_last_run_duration_seconds{step="health"} 1.5`,
		`httpstep_last_status_code{step="health"} 200`,
		`httpstep_response_bytes{step="health"} 42`,
		`httpstep_last_run_timestamp_seconds{step="health"} 1.7e+09`,
		"# TYPE httpstep_last_run_success gauge",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestObserve_FailureAndDefaultStep(t *testing.T) {
	c := NewCollectors()
	c.Observe(Sample{Outcome: "transport_error"})
	mfs, err := c.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := false
	for _, mf := range mfs {
		if mf.GetName() != "httpstep_last_run_success" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["step"] == "default" && labels["outcome"] == "transport_error" && m.GetGauge().GetValue() == 0 {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected failing sample under step=default")
	}
}
