package httpstep

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_PublicAPI(t *testing.T) {
	forms := make(chan []string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		forms <- r.PostForm["name"]
		_, _ = fmt.Fprint(w, "hello world")
	}))
	defer srv.Close()

	SetDefaultLogger(NewLogger(LogLevelError))
	defer SetDefaultLogger(NewLogger(LogLevelInfo))

	var hooked bool
	rep, err := Run(context.Background(), Step{
		URL:            srv.URL,
		Method:         "POST",
		ResponseRegex:  "/hello/",
		PostParameters: NewParams(Param{Name: "name", Value: "a"}, Param{Name: "name", Value: "b"}),
		Verbose:        true,
		ObserverEvents: ParseEvents("connect,disconnect"),
	}, HookFunc(func(context.Context, *Report) error { hooked = true; return nil }))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := <-forms
	if !rep.Succeeded() || strings.Join(got, ",") != "a,b" || !hooked {
		t.Fatalf("unexpected result %+v got=%v hooked=%v", rep, got, hooked)
	}
	if len(rep.Events) != 2 || rep.Events[0].Kind != EventConnect || rep.Events[1].Kind != EventDisconnect {
		t.Fatalf("events = %+v", rep.Events)
	}
}

func TestCheckAndErrors(t *testing.T) {
	err := Check(Step{})
	if !IsConfigError(err) || ExitCode(err) != 2 {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if err := Check(Step{URL: "https://example.test", ResponseRegex: "/ok/i"}); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if IsTransportError(nil) || IsValidationError(err) || ExitCode(nil) != 0 {
		t.Fatalf("nil error helpers misbehave")
	}
	if len(DefaultEvents()) != 6 {
		t.Fatalf("default events = %v", DefaultEvents())
	}
}

func TestLoadStepFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "s.yaml")
	if err := os.WriteFile(p, []byte("name: x\nurl: http://example.test/\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	f, err := LoadStepFile(p)
	if err != nil {
		t.Fatalf("LoadStepFile: %v", err)
	}
	if s := f.ToStepConfig(nil); s.Name != "x" || s.URL != "http://example.test/" {
		t.Fatalf("unexpected step %+v", s)
	}
}

func TestMasking(t *testing.T) {
	defer EnableMasking(true)
	EnableMasking(true)
	if out := MaskSensitiveData("Authorization: Bearer abc.def"); strings.Contains(out, "abc.def") {
		t.Fatalf("token leaked: %q", out)
	}
	EnableMasking(false)
	if IsMaskingEnabled() {
		t.Fatalf("masking should be off")
	}
}
