package security

import (
	"errors"
	"strings"
	"testing"
)

func TestTemplateChecker_Allows(t *testing.T) {
	c := NewTemplateChecker()
	for _, s := range []string{
		"",
		"plain text with } and {",
		"{{.env.token}}",
		"Bearer {{ .env.token }}",
		`{{printf "%s:%s" .env.user .env.pass}}`,
		`{{if .env.debug}}1{{else}}0{{end}}`,
		`{{range $k, $v := .env}}{{$k}}={{$v}};{{end}}`,
		`{{index .env "x-key" | urlquery}}`,
		`{{with .env.host}}https://{{.}}{{end}}`,
	} {
		if err := c.Check(s); err != nil {
			t.Errorf("Check(%q) = %v", s, err)
		}
	}
}

func TestTemplateChecker_Rejects(t *testing.T) {
	c := NewTemplateChecker()
	for _, s := range []string{
		`{{define "x"}}a{{end}}{{template "x"}}`,
		`{{template "y"}}`,
		`{{exec "rm"}}`,
		`{{call .env.fn}}`,
		`{{.env.a`,
	} {
		err := c.Check(s)
		if !errors.Is(err, ErrForbiddenTemplate) {
			t.Errorf("Check(%q) = %v, want ErrForbiddenTemplate", s, err)
		}
	}
}

func TestTemplateChecker_Depth(t *testing.T) {
	c := NewTemplateChecker()
	c.MaxDepth = 2
	deep := strings.Repeat("{{if .env.a}}", 4) + "x" + strings.Repeat("{{end}}", 4)
	if err := c.Check(deep); !errors.Is(err, ErrExcessiveDepth) {
		t.Fatalf("expected depth error, got %v", err)
	}
	if err := c.Check("{{if .env.a}}x{{end}}"); err != nil {
		t.Fatalf("shallow template rejected: %v", err)
	}
}
