package env

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

type Str string

func (s Str) String() string { return string(s) }

// Val is any value that renders to a string.
type Val interface {
	String() string
}

// Map is a generic value map where each value can be a plain string (Str)
// or a computed value implementing String().
type Map map[string]Val

func FromStringMap(m map[string]string) Map {
	if m == nil {
		return nil
	}
	out := Map{}
	for k, v := range m {
		out[k] = Str(v)
	}
	return out
}

// Env supports layered variables:
// - Global: variables from the step file `env:` list and process environment
// - Local: variables set for a single step run (e.g. CLI --var overrides)
// Lookup and rendering give precedence to Local over Global.
type Env struct {
	mu     sync.RWMutex
	Global Map `yaml:"-" json:"-" mapstructure:"-"`
	Local  Map `yaml:"-" json:"env" mapstructure:"env"`
	sealed bool
}

// New returns a pointer to Env with all internal maps initialized.
func New() *Env {
	return &Env{Global: Map{}, Local: Map{}}
}

// Seal marks the Env as immutable for Set operations.
func (e *Env) Seal() {
	if e != nil {
		e.mu.Lock()
		e.sealed = true
		e.mu.Unlock()
	}
}

// Clone performs a copy of the Env maps. Computed values are copied by reference.
func (e *Env) Clone() *Env {
	if e == nil {
		return New()
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := New()
	for k, v := range e.Global {
		out.Global[k] = v
	}
	for k, v := range e.Local {
		out.Local[k] = v
	}
	return out
}

// SetString sets a string into "global" or "local". Returns error if sealed.
func (e *Env) SetString(mapName, key, val string) error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sealed {
		return fmt.Errorf("env: sealed (immutable)")
	}
	m := &e.Global
	if strings.EqualFold(strings.TrimSpace(mapName), "local") {
		m = &e.Local
	}
	if *m == nil {
		*m = Map{}
	}
	(*m)[key] = Str(val)
	return nil
}

// SetFromOS copies the named process environment variable into Global under key.
// It reports whether the variable was set and non-empty.
func (e *Env) SetFromOS(key, envVar string) (bool, error) {
	val := os.Getenv(envVar)
	if err := e.SetString("global", key, val); err != nil {
		return false, err
	}
	return val != "", nil
}

// UnmarshalYAML allows decoding a plain mapping under the `env` key directly into Local.
func (e *Env) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		return nil
	}
	var m map[string]string
	if err := value.Decode(&m); err != nil {
		return err
	}
	e.Local = FromStringMap(m)
	return nil
}

// Lookup searches Local first, then Global.
func (e *Env) Lookup(key string) (string, bool) {
	if e == nil {
		return "", false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if v, ok := e.Local[key]; ok && v != nil {
		return v.String(), true
	}
	if v, ok := e.Global[key]; ok && v != nil {
		return v.String(), true
	}
	return "", false
}

// merged returns a combined map (Global then overridden by Local).
func (e *Env) merged() map[string]string {
	m := map[string]string{}
	if e == nil {
		return m
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	for k, v := range e.Global {
		if v != nil {
			m[k] = v.String()
		}
	}
	for k, v := range e.Local {
		if v != nil {
			m[k] = v.String()
		}
	}
	return m
}

func (e *Env) dataForTemplate() map[string]interface{} {
	return map[string]interface{}{"env": e.merged()}
}

// RenderGoTemplate renders strings like {{.env.token}} with text/template.
// Values that fail to parse or reference a missing key are returned unchanged.
func (e *Env) RenderGoTemplate(s string) string {
	out, err := e.RenderGoTemplateErr(s)
	if err != nil {
		return s
	}
	return out
}

// RenderGoTemplateErr behaves like RenderGoTemplate but returns an error when
// the template cannot be parsed or executed (including missing keys).
func (e *Env) RenderGoTemplateErr(s string) (string, error) {
	if !strings.Contains(s, "{{") {
		return s, nil
	}
	t, err := template.New("gotmpl").Option("missingkey=error").Parse(s)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, e.dataForTemplate()); err != nil {
		return "", err
	}
	return buf.String(), nil
}
