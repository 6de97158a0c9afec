package util

import (
	"reflect"
	"testing"

	"github.com/loykin/httpstep/internal/params"
	"github.com/loykin/httpstep/pkg/env"
)

func newEnv() *env.Env {
	return &env.Env{Global: env.FromStringMap(map[string]string{
		"name":  "Alice",
		"token": "s3cr3t",
	})}
}

func TestRenderString(t *testing.T) {
	e := newEnv()
	cases := []struct{ in, want string }{
		{"no templating here", "no templating here"},
		{"Hello, {{.env.name}}!", "Hello, Alice!"},
		{"${.name}", "${.name}"},
		{"${{.env.name}}", "$Alice"},
		{"{{.env.missing}}", "{{.env.missing}}"},
		{"{{ broken", "{{ broken"},
	}
	for _, c := range cases {
		if got := RenderString(c.in, e); got != c.want {
			t.Errorf("RenderString(%q) = %q, want %q", c.in, got, c.want)
		}
	}
	if got := RenderString("{{.env.name}}", nil); got != "{{.env.name}}" {
		t.Fatalf("nil env should leave input alone, got %q", got)
	}
}

func TestRenderParams_KeepsOrderAndNames(t *testing.T) {
	in := params.New(
		params.Param{Name: "Authorization", Value: "Bearer {{.env.token}}"},
		params.Param{Name: "{{.env.name}}", Value: "x"},
		params.Param{Name: "Authorization", Value: "plain"},
	)
	got := RenderParams(in, newEnv()).Pairs()
	want := []params.Param{
		{Name: "Authorization", Value: "Bearer s3cr3t"},
		{Name: "{{.env.name}}", Value: "x"},
		{Name: "Authorization", Value: "plain"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("RenderParams = %v, want %v", got, want)
	}
	if in.Pairs()[0].Value != "Bearer {{.env.token}}" {
		t.Fatalf("input set must not be modified")
	}
}

func TestRenderStringMap(t *testing.T) {
	if RenderStringMap(nil, newEnv()) != nil {
		t.Fatalf("nil map should stay nil")
	}
	got := RenderStringMap(map[string]string{"who": "{{.env.name}}"}, newEnv())
	if got["who"] != "Alice" {
		t.Fatalf("got %v", got)
	}
}
