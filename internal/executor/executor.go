package executor

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/loykin/httpstep/internal/common"
	"github.com/loykin/httpstep/internal/errdefs"
	"github.com/loykin/httpstep/internal/httpc"
	"github.com/loykin/httpstep/internal/observer"
	"github.com/loykin/httpstep/internal/request"
)

const formContentType = "application/x-www-form-urlencoded"

// Result is the raw outcome of one exchange. It is never modified after Send
// returns.
type Result struct {
	StatusCode int
	Status     string
	Proto      string
	Header     http.Header
	Body       []byte
}

// Executor performs exactly one HTTP exchange per Send call.
type Executor struct {
	// Transport replaces the per-call *http.Transport when set.
	Transport http.RoundTripper
	Logger    *common.Logger
}

// New returns an Executor using a fresh transport for every call.
func New(logger *common.Logger) *Executor {
	return &Executor{Logger: logger}
}

func (e *Executor) logger() *common.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return common.GetLogger()
}

// Send transmits spec and returns the response unmodified. rec may be nil.
// Setup faults are ConfigErrors; anything that goes wrong on the wire is a
// TransportError. There are no retries.
func (e *Executor) Send(ctx context.Context, spec request.Spec, rec *observer.Recorder) (*Result, error) {
	logger := e.logger().WithComponent("executor").WithRequest(spec.Method, spec.URL)

	opts, err := httpc.ParseOptions(spec.TransportConfig)
	if err != nil {
		return nil, err
	}
	h := httpc.Httpc{Options: opts, Base: e.Transport, Logger: logger}
	if rec != nil {
		h.Wrap = rec.WrapTransport
	}
	client, err := h.New()
	if err != nil {
		return nil, err
	}
	if spec.HasAuth() {
		if err := httpc.ApplyAuth(client, spec.AuthScheme, spec.AuthUser, spec.AuthPassword); err != nil {
			return nil, err
		}
	}

	req := client.R().SetContext(rec.Trace(ctx))
	var host string
	for _, hd := range spec.Headers.Pairs() {
		if strings.EqualFold(hd.Name, "Host") {
			host = hd.Value
			continue
		}
		req.Header.Add(hd.Name, hd.Value)
	}
	if host != "" {
		client.SetPreRequestHook(func(_ *resty.Client, r *http.Request) error {
			r.Host = host
			return nil
		})
	}
	if spec.SendsPostParameters() {
		if req.Header.Get("Content-Type") == "" {
			req.Header.Set("Content-Type", formContentType)
		}
		req.SetBody(spec.PostParameters.Encode())
	}

	logger.Debug("sending request", "headers", spec.Headers.Len(), "post_parameters", spec.SendsPostParameters())
	resp, err := req.Execute(spec.Method, spec.URL)
	if err != nil {
		logger.Error("request failed", "error", err)
		return nil, errdefs.Transport("send", spec.URL, err)
	}

	res := &Result{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Proto:      resp.Proto(),
		Header:     resp.Header().Clone(),
		Body:       append([]byte(nil), resp.Body()...),
	}
	logger.Debug("response received", "status", res.StatusCode, "bytes", len(res.Body), "elapsed", resp.Time())
	return res, nil
}
