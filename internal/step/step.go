package step

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/loykin/httpstep/internal/common"
	"github.com/loykin/httpstep/internal/errdefs"
	"github.com/loykin/httpstep/internal/executor"
	"github.com/loykin/httpstep/internal/observer"
	"github.com/loykin/httpstep/internal/params"
	"github.com/loykin/httpstep/internal/request"
	"github.com/loykin/httpstep/internal/response"
)

// Config is everything one step activation needs.
type Config struct {
	Name string

	URL           string
	ResponseRegex string
	// Verbose enables lifecycle event recording for ObserverEvents
	// (observer.DefaultEvents when empty).
	Verbose        bool
	ObserverEvents []observer.EventKind

	Method       string
	AuthUser     string
	AuthPassword string
	AuthScheme   string

	Headers         params.Set
	TransportConfig params.Set
	PostParameters  params.Set

	StatusCodes    []int
	Outputs        map[string]string
	OutputsMissing string
}

func (c Config) requestInput() request.Input {
	return request.Input{
		URL:             c.URL,
		Method:          c.Method,
		AuthUser:        c.AuthUser,
		AuthPassword:    c.AuthPassword,
		AuthScheme:      c.AuthScheme,
		Headers:         c.Headers,
		TransportConfig: c.TransportConfig,
		PostParameters:  c.PostParameters,
	}
}

func (c Config) rules() response.Rules {
	return response.Rules{
		Pattern:        c.ResponseRegex,
		StatusCodes:    c.StatusCodes,
		Outputs:        c.Outputs,
		OutputsMissing: c.OutputsMissing,
	}
}

// Report describes one finished activation, successful or not.
type Report struct {
	RunID      string
	Name       string
	Method     string
	URL        string
	StatusCode int
	Matched    bool
	Outputs    map[string]string
	Events     []observer.Event
	Result     *executor.Result
	StartedAt  time.Time
	Duration   time.Duration
	Err        error
}

// Outcome is "success" or the class of the failure.
func (r *Report) Outcome() string { return errdefs.Kind(r.Err) }

// Succeeded reports whether the step passed.
func (r *Report) Succeeded() bool { return r.Err == nil }

// Sender performs the HTTP exchange. *executor.Executor implements it.
type Sender interface {
	Send(ctx context.Context, spec request.Spec, rec *observer.Recorder) (*executor.Result, error)
}

// Hook runs after every activation. Hook failures are logged and never
// change the step outcome.
type Hook interface {
	AfterRun(ctx context.Context, r *Report) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, r *Report) error

func (f HookFunc) AfterRun(ctx context.Context, r *Report) error { return f(ctx, r) }

// Controller sequences one step: build request, optionally record events,
// send, validate, report.
type Controller struct {
	sender Sender
	logger *common.Logger
	hooks  []Hook
}

type Option func(*Controller)

func WithSender(s Sender) Option { return func(c *Controller) { c.sender = s } }

func WithLogger(l *common.Logger) Option { return func(c *Controller) { c.logger = l } }

func WithHooks(h ...Hook) Option { return func(c *Controller) { c.hooks = append(c.hooks, h...) } }

// NewController returns a Controller; by default it sends with a fresh
// executor.Executor and logs through the global logger.
func NewController(opts ...Option) *Controller {
	c := &Controller{}
	for _, o := range opts {
		o(c)
	}
	if c.logger == nil {
		c.logger = common.GetLogger()
	}
	if c.sender == nil {
		c.sender = executor.New(c.logger)
	}
	return c
}

// Prepare validates cfg and compiles everything the run needs without any
// network activity.
func (c *Controller) Prepare(cfg Config) (request.Spec, *response.Validator, error) {
	spec, err := request.Build(cfg.requestInput())
	if err != nil {
		return request.Spec{}, nil, err
	}
	v, err := response.NewValidator(cfg.rules(), c.logger.WithStep(cfg.Name))
	if err != nil {
		return request.Spec{}, nil, err
	}
	return spec, v, nil
}

// Run executes the step once. The returned Report is never nil; its Err is
// the same error Run returns.
func (c *Controller) Run(ctx context.Context, cfg Config) (*Report, error) {
	rep := &Report{
		RunID:     uuid.NewString(),
		Name:      cfg.Name,
		Method:    cfg.Method,
		URL:       cfg.URL,
		StartedAt: time.Now(),
	}
	base := c.logger.WithStep(cfg.Name).WithRun(rep.RunID)
	logger := base.WithComponent("step")

	err := c.run(ctx, cfg, rep, base)
	rep.Err = err
	rep.Duration = time.Since(rep.StartedAt)
	if err != nil {
		logger.Error("step failed", "error", err, "outcome", rep.Outcome(), "duration", rep.Duration)
	} else {
		logger.Info("step succeeded", "status", rep.StatusCode, "duration", rep.Duration)
	}

	for _, h := range c.hooks {
		if herr := h.AfterRun(ctx, rep); herr != nil {
			logger.Warn("post-run hook failed", "error", herr)
		}
	}
	return rep, err
}

func (c *Controller) run(ctx context.Context, cfg Config, rep *Report, base *common.Logger) error {
	spec, validator, err := c.Prepare(cfg)
	if err != nil {
		return err
	}
	rep.Method, rep.URL = spec.Method, spec.URL

	var rec *observer.Recorder
	if cfg.Verbose {
		rec = observer.NewRecorder(cfg.ObserverEvents, base)
		base.Debug("observer enabled", "events", rec.Kinds())
	}

	res, err := c.sender.Send(ctx, spec, rec)
	rep.Events = rec.Events()
	if err != nil {
		if errdefs.IsConfig(err) {
			return err
		}
		return errdefs.Transport("send", spec.URL, err)
	}
	rep.Result = res
	rep.StatusCode = res.StatusCode

	verdict, err := validator.Check(res.StatusCode, res.Body)
	if err != nil {
		return err
	}
	rep.Matched = verdict.Matched
	rep.Outputs = verdict.Outputs
	return nil
}
