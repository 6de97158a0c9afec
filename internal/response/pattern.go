package response

import (
	"regexp"
	"strings"

	"github.com/loykin/httpstep/internal/errdefs"
)

// Pattern is a compiled response body pattern. The zero value (empty
// pattern) matches every body.
type Pattern struct {
	source string
	re     *regexp.Regexp
}

// delimiters maps each accepted opening delimiter to its closer. '[' and
// '<' are left out so character classes and markup stay plain expressions.
var delimiters = map[byte]byte{
	'/': '/', '#': '#', '~': '~', '!': '!', '@': '@', '%': '%', '|': '|', '`': '`',
	'(': ')', '{': '}',
}

// modifiers understood after a closing delimiter. 'u' and 'D' carry no
// flag: RE2 always matches UTF-8 and its '$' only matches at the end of
// text. 'A' anchors the match at the start of the body. 'x' has no RE2
// equivalent and is rejected.
var modifierFlags = map[byte]string{'i': "i", 'm': "m", 's': "s", 'U': "U", 'u': "", 'D': "", 'A': ""}

// Compile parses pattern. A pattern wrapped in delimiters ("/ok/i",
// "#a.b#s", "{x}m") is unwrapped and its trailing modifiers are mapped to
// RE2 flags; anything else is compiled as a plain RE2 expression.
func Compile(pattern string) (*Pattern, error) {
	if pattern == "" {
		return &Pattern{}, nil
	}
	expr := pattern
	if body, mods, ok := splitDelimited(pattern); ok {
		var flags strings.Builder
		anchored := strings.IndexByte(mods, 'A') >= 0
		for i := 0; i < len(mods); i++ {
			f, known := modifierFlags[mods[i]]
			if !known {
				return nil, errdefs.Config("response pattern", "unsupported pattern modifier %q in %q", mods[i], pattern)
			}
			if f != "" && !strings.Contains(flags.String(), f) {
				flags.WriteString(f)
			}
		}
		expr = body
		if anchored {
			expr = `\A(?:` + body + ")"
		}
		if flags.Len() > 0 {
			expr = "(?" + flags.String() + ")" + expr
		}
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errdefs.Config("response pattern", "invalid pattern %q: %v", pattern, err)
	}
	return &Pattern{source: pattern, re: re}, nil
}

// splitDelimited recognizes delimiter syntax: a known opener whose closer
// is followed only by letters. Bracket openers pair with their matching
// closer and only count as delimiters when every trailing letter is a known
// modifier, so "(a)(b)" and "(ok)x" stay plain expressions.
func splitDelimited(p string) (body, mods string, ok bool) {
	if len(p) < 2 {
		return "", "", false
	}
	closer, known := delimiters[p[0]]
	if !known {
		return "", "", false
	}
	bracket := closer != p[0]
	var end int
	if bracket {
		end = matchingBracket(p, p[0], closer)
	} else {
		end = strings.LastIndexByte(p, closer)
	}
	if end <= 0 {
		return "", "", false
	}
	mods = p[end+1:]
	for i := 0; i < len(mods); i++ {
		c := mods[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return "", "", false
		}
		if _, flag := modifierFlags[c]; bracket && !flag {
			return "", "", false
		}
	}
	return p[1:end], mods, true
}

// matchingBracket returns the index of the closer balancing p[0], skipping
// escaped characters, or -1.
func matchingBracket(p string, open, closer byte) int {
	depth := 0
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '\\':
			i++
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// Empty reports whether the pattern accepts every body.
func (p *Pattern) Empty() bool { return p == nil || p.re == nil }

// Match reports whether the pattern occurs anywhere in body.
func (p *Pattern) Match(body []byte) bool {
	if p.Empty() {
		return true
	}
	return p.re.Match(body)
}

func (p *Pattern) String() string {
	if p == nil {
		return ""
	}
	return p.source
}

// Outcome is the result of checking a body against a pattern.
type Outcome struct {
	Matched bool
}

// Validate compiles pattern and reports whether body satisfies it. The only
// error is a ConfigError for a pattern that does not compile.
func Validate(body []byte, pattern string) (Outcome, error) {
	p, err := Compile(pattern)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Matched: p.Match(body)}, nil
}
