package security

import (
	"errors"
	"fmt"
	"strings"
	"text/template/parse"
)

var (
	ErrForbiddenTemplate = errors.New("template not allowed")
	ErrExcessiveDepth    = errors.New("template nesting too deep")
)

// TemplateChecker limits step file templates to reading variables through
// a small set of pure functions. Nested template definitions and calls are
// rejected.
type TemplateChecker struct {
	MaxDepth         int
	AllowedFunctions map[string]bool
}

func NewTemplateChecker() *TemplateChecker {
	allowed := map[string]bool{}
	for _, fn := range []string{
		"print", "printf", "println", "len", "index", "slice",
		"eq", "ne", "lt", "le", "gt", "ge", "and", "or", "not",
		"urlquery", "html", "js",
	} {
		allowed[fn] = true
	}
	return &TemplateChecker{MaxDepth: 5, AllowedFunctions: allowed}
}

// Check parses s with the allowed function set and walks the tree. Strings
// without "{{" are accepted untouched.
func (c *TemplateChecker) Check(s string) error {
	if !strings.Contains(s, "{{") {
		return nil
	}
	funcs := make(map[string]any, len(c.AllowedFunctions))
	for name, ok := range c.AllowedFunctions {
		if ok {
			funcs[name] = true
		}
	}
	trees, err := parse.Parse("step", s, "{{", "}}", funcs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrForbiddenTemplate, err)
	}
	if len(trees) != 1 {
		return fmt.Errorf("%w: template definitions", ErrForbiddenTemplate)
	}
	for _, tree := range trees {
		if err := c.walk(tree.Root, 0); err != nil {
			return err
		}
	}
	return nil
}

func (c *TemplateChecker) walk(node parse.Node, depth int) error {
	if depth > c.MaxDepth {
		return ErrExcessiveDepth
	}
	switch n := node.(type) {
	case nil:
		return nil
	case *parse.ListNode:
		if n == nil {
			return nil
		}
		for _, child := range n.Nodes {
			if err := c.walk(child, depth); err != nil {
				return err
			}
		}
	case *parse.ActionNode:
		return c.pipe(n.Pipe, depth)
	case *parse.IfNode:
		return c.branch(&n.BranchNode, depth)
	case *parse.RangeNode:
		return c.branch(&n.BranchNode, depth)
	case *parse.WithNode:
		return c.branch(&n.BranchNode, depth)
	case *parse.TemplateNode:
		return fmt.Errorf("%w: template call %q", ErrForbiddenTemplate, n.Name)
	}
	return nil
}

func (c *TemplateChecker) branch(b *parse.BranchNode, depth int) error {
	if err := c.pipe(b.Pipe, depth+1); err != nil {
		return err
	}
	if err := c.walk(b.List, depth+1); err != nil {
		return err
	}
	return c.walk(b.ElseList, depth+1)
}

func (c *TemplateChecker) pipe(p *parse.PipeNode, depth int) error {
	if p == nil {
		return nil
	}
	if depth > c.MaxDepth {
		return ErrExcessiveDepth
	}
	for _, cmd := range p.Cmds {
		for _, arg := range cmd.Args {
			if err := c.arg(arg, depth); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *TemplateChecker) arg(node parse.Node, depth int) error {
	switch a := node.(type) {
	case *parse.IdentifierNode:
		if !c.AllowedFunctions[a.Ident] {
			return fmt.Errorf("%w: function %q", ErrForbiddenTemplate, a.Ident)
		}
	case *parse.PipeNode:
		return c.pipe(a, depth+1)
	case *parse.ChainNode:
		return c.arg(a.Node, depth)
	}
	return nil
}
