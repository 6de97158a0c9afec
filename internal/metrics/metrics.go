package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sample is the outcome of one step activation as exported to Prometheus.
type Sample struct {
	Step          string
	Outcome       string
	StatusCode    int
	Duration      time.Duration
	ResponseBytes int
	FinishedAt    time.Time
}

// Collectors holds the gauges written for a step.
type Collectors struct {
	registry *prometheus.Registry

	success   *prometheus.GaugeVec
	duration  *prometheus.GaugeVec
	status    *prometheus.GaugeVec
	bytes     *prometheus.GaugeVec
	timestamp *prometheus.GaugeVec
}

// NewCollectors registers the step gauges on a private registry.
func NewCollectors() *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		success: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "httpstep_last_run_success",
			Help: "1 when the last run of the step passed, 0 otherwise",
		}, []string{"step", "outcome"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "httpstep_last_run_duration_seconds",
			Help: "Wall time of the last run of the step",
		}, []string{"step"}),
		status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "httpstep_last_status_code",
			Help: "HTTP status code of the last response, 0 when none was received",
		}, []string{"step"}),
		bytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "httpstep_response_bytes",
			Help: "Size of the last response body",
		}, []string{"step"}),
		timestamp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "httpstep_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}, []string{"step"}),
	}
	c.registry.MustRegister(c.success, c.duration, c.status, c.bytes, c.timestamp)
	return c
}

// Observe sets every gauge from s.
func (c *Collectors) Observe(s Sample) {
	step := s.Step
	if step == "" {
		step = "default"
	}
	ok := 0.0
	if s.Outcome == "success" {
		ok = 1
	}
	c.success.WithLabelValues(step, s.Outcome).Set(ok)
	c.duration.WithLabelValues(step).Set(s.Duration.Seconds())
	c.status.WithLabelValues(step).Set(float64(s.StatusCode))
	c.bytes.WithLabelValues(step).Set(float64(s.ResponseBytes))
	finished := s.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	c.timestamp.WithLabelValues(step).Set(float64(finished.UnixNano()) / 1e9)
}

// Gatherer exposes the private registry.
func (c *Collectors) Gatherer() prometheus.Gatherer { return c.registry }

// WriteTextfile writes the registry in the text exposition format for
// node_exporter's textfile collector. The file is replaced atomically.
func (c *Collectors) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("metrics: create dir: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}

// WriteSample is a shortcut for a single observation written to path.
func WriteSample(path string, s Sample) error {
	c := NewCollectors()
	c.Observe(s)
	return c.WriteTextfile(path)
}
