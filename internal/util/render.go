package util

import (
	"github.com/loykin/httpstep/internal/params"
	"github.com/loykin/httpstep/pkg/env"
)

// RenderString renders Go template references ({{.env.NAME}}) in s.
// Templates that fail to render are returned unchanged.
func RenderString(s string, e *env.Env) string {
	if e == nil {
		return s
	}
	return e.RenderGoTemplate(s)
}

// RenderParams renders every value of set; names are left as written.
func RenderParams(set params.Set, e *env.Env) params.Set {
	if e == nil || set.Len() == 0 {
		return set
	}
	return set.Map(func(_, v string) string { return e.RenderGoTemplate(v) })
}

// RenderStringMap walks a string map and renders every value.
func RenderStringMap(in map[string]string, e *env.Env) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = RenderString(v, e)
	}
	return out
}
