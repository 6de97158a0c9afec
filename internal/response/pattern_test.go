package response

import (
	"testing"

	"github.com/loykin/httpstep/internal/errdefs"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		pattern string
		want    bool
	}{
		{"empty pattern matches anything", "whatever", "", true},
		{"empty pattern matches empty body", "", "", true},
		{"search not anchored", "status: ok", "ok", true},
		{"no match", "status: fail", "ok", false},
		{"case sensitive by default", "OK", "ok", false},
		{"delimited case insensitive", "Status: OK", "/ok/i", true},
		{"hash delimiter", "a\nb", "#a.b#s", true},
		{"dot does not cross newline", "a\nb", "a.b", false},
		{"anchors whole text by default", "x\nok\ny", "^ok$", false},
		{"multiline modifier", "x\nok\ny", "/^ok$/m", true},
		{"brace delimiter", "hello", "{hell}", true},
		{"utf8 modifier is ignored", "héllo", "/h.llo/u", true},
		{"ungreedy modifier", "<a><b>", "/<.+>/U", true},
		{"character class stays raw", "b", "[abc]", true},
		{"groups stay raw", "ab", "(a)(b)", true},
		{"paren with non-modifier suffix stays raw", "okx", "(ok)x", true},
		{"escaped delimiter", "a/b", `/a\/b/`, true},
		{"trailing symbol means raw", "aaa", "(a)+", true},
		{"anchored modifier matches at start", "ok then more", "/ok/A", true},
		{"anchored modifier rejects later match", "not ok", "/ok/A", false},
		{"anchored ignores line starts", "x\nok", "/ok/Am", false},
		{"anchored alternation is grouped", "zb", "/a|b/A", false},
		{"dollar end only modifier", "ok", "/ok$/D", true},
		{"dollar does not match before final newline", "ok\n", "/ok$/D", false},
		{"json body", `{"status":"UP"}`, `"status":\s*"UP"`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate([]byte(tt.body), tt.pattern)
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if got.Matched != tt.want {
				t.Fatalf("Validate(%q, %q) = %v, want %v", tt.body, tt.pattern, got.Matched, tt.want)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	for _, p := range []string{"(unclosed", "/ok/x", "/ok/e", "a{2,1}", `/\p{Nope}/`} {
		_, err := Compile(p)
		if !errdefs.IsConfig(err) {
			t.Errorf("Compile(%q) error = %v, want ConfigError", p, err)
		}
	}
}

func TestPattern_EmptyAndString(t *testing.T) {
	p, err := Compile("")
	if err != nil || !p.Empty() || !p.Match(nil) {
		t.Fatalf("empty pattern should compile and match: %v", err)
	}
	var nilPattern *Pattern
	if !nilPattern.Match([]byte("x")) || nilPattern.String() != "" {
		t.Fatalf("nil pattern should behave as empty")
	}
	p, _ = Compile("/ok/i")
	if p.String() != "/ok/i" || p.Empty() {
		t.Fatalf("String() should keep the source, got %q", p.String())
	}
}
