package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/loykin/httpstep/internal/common"
	"github.com/loykin/httpstep/internal/constants"
	"github.com/loykin/httpstep/internal/errdefs"
	"github.com/tidwall/gjson"
)

// Rules are the response expectations of a step.
type Rules struct {
	Pattern     string
	StatusCodes []int
	// Outputs maps an output name to a gjson path evaluated on the body.
	Outputs        map[string]string
	OutputsMissing string
}

// Verdict is what a successful check produced.
type Verdict struct {
	Outcome
	Outputs map[string]string
}

// Validator checks responses against compiled Rules.
type Validator struct {
	pattern       *Pattern
	statusCodes   map[int]struct{}
	outputs       map[string]string
	failOnMissing bool
	logger        *common.Logger
}

// NewValidator compiles rules. Bad patterns, status codes or output settings
// are ConfigErrors.
func NewValidator(rules Rules, logger *common.Logger) (*Validator, error) {
	p, err := Compile(rules.Pattern)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = common.GetLogger()
	}
	v := &Validator{pattern: p, logger: logger.WithComponent("response")}

	for _, code := range rules.StatusCodes {
		if code < 100 || code > 999 {
			return nil, errdefs.Config("status codes", "invalid status code %d", code)
		}
		if v.statusCodes == nil {
			v.statusCodes = make(map[int]struct{}, len(rules.StatusCodes))
		}
		v.statusCodes[code] = struct{}{}
	}

	switch strings.ToLower(strings.TrimSpace(rules.OutputsMissing)) {
	case "", constants.OutputsMissingSkip:
	case constants.OutputsMissingFail:
		v.failOnMissing = true
	default:
		return nil, errdefs.Config("outputs", "outputs_missing must be %q or %q, got %q",
			constants.OutputsMissingSkip, constants.OutputsMissingFail, rules.OutputsMissing)
	}
	for name, path := range rules.Outputs {
		if strings.TrimSpace(name) == "" || strings.TrimSpace(path) == "" {
			return nil, errdefs.Config("outputs", "output %q needs a name and a path", name)
		}
	}
	if len(rules.Outputs) > 0 {
		v.outputs = make(map[string]string, len(rules.Outputs))
		for k, p := range rules.Outputs {
			v.outputs[k] = p
		}
	}
	return v, nil
}

// Pattern returns the compiled body pattern.
func (v *Validator) Pattern() *Pattern { return v.pattern }

// Check applies the status code set, then the body pattern, then output
// extraction. Any unmet expectation is a ValidationError.
func (v *Validator) Check(statusCode int, body []byte) (Verdict, error) {
	if len(v.statusCodes) > 0 {
		if _, ok := v.statusCodes[statusCode]; !ok {
			return Verdict{}, errdefs.Validation("status", "unexpected status code %d (allowed: %s)", statusCode, v.allowedCodes())
		}
	}

	if !v.pattern.Match(body) {
		return Verdict{}, errdefs.Validation("response body", "the received response body did not match the given pattern %q", v.pattern.String())
	}
	verdict := Verdict{Outcome: Outcome{Matched: true}}
	if !v.pattern.Empty() {
		v.logger.Info("the response body matched the provided pattern", "pattern", v.pattern.String())
	}

	if len(v.outputs) > 0 {
		outs, err := v.extract(body)
		if err != nil {
			return Verdict{}, err
		}
		verdict.Outputs = outs
	}
	return verdict, nil
}

func (v *Validator) allowedCodes() string {
	codes := make([]int, 0, len(v.statusCodes))
	for c := range v.statusCodes {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ",")
}

// extract evaluates every output path on a JSON body.
func (v *Validator) extract(body []byte) (map[string]string, error) {
	names := make([]string, 0, len(v.outputs))
	for name := range v.outputs {
		names = append(names, name)
	}
	sort.Strings(names)

	isJSON := gjson.ValidBytes(body)
	out := make(map[string]string, len(names))
	for _, name := range names {
		path := v.outputs[name]
		var res gjson.Result
		if isJSON {
			res = gjson.GetBytes(body, path)
		}
		if !res.Exists() {
			if v.failOnMissing {
				return nil, errdefs.Validation("outputs", "output %s: path %q not found in response", name, path)
			}
			v.logger.Debug("output path not found", "output", name, "path", path)
			continue
		}
		out[name] = resultString(res)
	}
	return out, nil
}

// resultString renders scalars as plain text and objects/arrays as compact JSON.
func resultString(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return r.String()
	case gjson.Number:
		return r.Raw
	case gjson.True, gjson.False:
		return fmt.Sprintf("%t", r.Bool())
	case gjson.Null:
		return ""
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(r.Raw)); err != nil {
			return r.Raw
		}
		return buf.String()
	}
}
