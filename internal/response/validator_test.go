package response

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/loykin/httpstep/internal/common"
	"github.com/loykin/httpstep/internal/errdefs"
)

func newTestValidator(t *testing.T, rules Rules) (*Validator, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	v, err := NewValidator(rules, common.NewTextLogger(&buf, common.LogLevelDebug))
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	return v, &buf
}

func TestValidator_PatternMatchLogsOnce(t *testing.T) {
	v, buf := newTestValidator(t, Rules{Pattern: "ok"})
	verdict, err := v.Check(200, []byte("all ok"))
	if err != nil || !verdict.Matched {
		t.Fatalf("expected match, got %+v %v", verdict, err)
	}
	if n := strings.Count(buf.String(), "the response body matched the provided pattern"); n != 1 {
		t.Fatalf("expected one success message, got %d:\n%s", n, buf.String())
	}
}

func TestValidator_NoPatternNoMessage(t *testing.T) {
	v, buf := newTestValidator(t, Rules{})
	if _, err := v.Check(500, nil); err != nil {
		t.Fatalf("empty rules must accept everything: %v", err)
	}
	if strings.Contains(buf.String(), "matched the provided pattern") {
		t.Fatalf("no success message expected without a pattern")
	}
}

func TestValidator_Mismatch(t *testing.T) {
	v, _ := newTestValidator(t, Rules{Pattern: "ok"})
	_, err := v.Check(200, []byte("fail"))
	if !errdefs.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if errdefs.ExitCode(err) != errdefs.ExitValidation {
		t.Fatalf("exit code = %d", errdefs.ExitCode(err))
	}
}

func TestValidator_StatusCodes(t *testing.T) {
	v, _ := newTestValidator(t, Rules{StatusCodes: []int{200, 204}})
	if _, err := v.Check(204, nil); err != nil {
		t.Fatalf("204 should be allowed: %v", err)
	}
	_, err := v.Check(500, []byte("ok"))
	if !errdefs.IsValidation(err) || !strings.Contains(err.Error(), "200,204") {
		t.Fatalf("expected ValidationError listing allowed codes, got %v", err)
	}
}

func TestValidator_Outputs(t *testing.T) {
	body := []byte(`{"id": 42, "name": "svc", "ok": true, "ratio": 0.5, "tags": ["a", "b"], "nested": {"k": "v"}}`)
	v, _ := newTestValidator(t, Rules{Outputs: map[string]string{
		"id": "id", "name": "name", "ok": "ok", "ratio": "ratio", "tags": "tags", "nested": "nested", "missing": "nope",
	}})
	verdict, err := v.Check(200, body)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	want := map[string]string{"id": "42", "name": "svc", "ok": "true", "ratio": "0.5", "tags": `["a","b"]`, "nested": `{"k":"v"}`}
	if !reflect.DeepEqual(verdict.Outputs, want) {
		t.Fatalf("outputs = %v, want %v", verdict.Outputs, want)
	}
}

func TestValidator_OutputsMissingFail(t *testing.T) {
	v, _ := newTestValidator(t, Rules{Outputs: map[string]string{"id": "id"}, OutputsMissing: "fail"})
	if _, err := v.Check(200, []byte("not json")); !errdefs.IsValidation(err) {
		t.Fatalf("expected ValidationError for missing output, got %v", err)
	}
}

func TestNewValidator_ConfigErrors(t *testing.T) {
	cases := []Rules{
		{Pattern: "(bad"},
		{StatusCodes: []int{42}},
		{OutputsMissing: "explode"},
		{Outputs: map[string]string{"x": " "}},
	}
	for _, rules := range cases {
		if _, err := NewValidator(rules, nil); !errdefs.IsConfig(err) {
			t.Errorf("NewValidator(%+v) error = %v, want ConfigError", rules, err)
		}
	}
}
