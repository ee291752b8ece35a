package template

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

var rootSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "resource", Required: true},
		{Name: "description"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "locals"},
	},
}

// Template is a parsed template document. It is immutable and safe to
// evaluate concurrently.
type Template struct {
	Path        string
	Description string
	Resource    hcl.Expression
	// Locals are ordered so that each follows everything it refers to.
	Locals []*Local
	// Called lists every function the document calls, sorted.
	Called []string
}

// Local is one named value from a locals block.
type Local struct {
	Name string
	Expr hcl.Expression
}

// Parse parses src as a template document. filename is used in diagnostics.
func Parse(src []byte, filename string) (*Template, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}

	content, diags := file.Body.Content(rootSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid template %s: %w", filename, diags)
	}

	t := &Template{Path: filename, Resource: content.Attributes["resource"].Expr}

	if attr, ok := content.Attributes["description"]; ok {
		if diags := gohcl.DecodeExpression(attr.Expr, nil, &t.Description); diags.HasErrors() {
			return nil, fmt.Errorf("invalid description in %s: %w", filename, diags)
		}
	}

	localAttrs := make(hcl.Attributes)
	for _, block := range content.Blocks {
		attrs, diags := block.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid locals block in %s: %w", filename, diags)
		}
		for name, attr := range attrs {
			if prev, dup := localAttrs[name]; dup {
				return nil, fmt.Errorf("invalid locals block in %s: %w", filename, hcl.Diagnostics{{
					Severity: hcl.DiagError,
					Summary:  "Duplicate local value definition",
					Detail:   fmt.Sprintf("A local value named %q was already defined at %s.", name, prev.Range),
					Subject:  attr.Range.Ptr(),
				}})
			}
			localAttrs[name] = attr
		}
	}

	locals, diags := orderLocals(localAttrs)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid locals in %s: %w", filename, diags)
	}
	t.Locals = locals

	refs, diags := localReferences(t.Resource)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid resource in %s: %w", filename, diags)
	}
	for name := range refs {
		if _, ok := localAttrs[name]; !ok {
			return nil, fmt.Errorf("invalid resource in %s: local value %q has not been declared", filename, name)
		}
	}

	exprs := []hcl.Expression{t.Resource}
	for _, l := range t.Locals {
		exprs = append(exprs, l.Expr)
	}
	t.Called = calledFunctions(exprs...)
	return t, nil
}

// Evaluate evaluates the locals in order and then the resource expression.
// base supplies functions and the input variable; it is not modified.
func (t *Template) Evaluate(base *hcl.EvalContext) (cty.Value, hcl.Diagnostics) {
	ctx := base.NewChild()
	ctx.Variables = map[string]cty.Value{}
	values := make(map[string]cty.Value, len(t.Locals))
	for _, l := range t.Locals {
		ctx.Variables[localRoot] = cty.ObjectVal(values)
		v, diags := l.Expr.Value(ctx)
		if diags.HasErrors() {
			return cty.DynamicVal, diags
		}
		values[l.Name] = v
	}
	ctx.Variables[localRoot] = cty.ObjectVal(values)
	return t.Resource.Value(ctx)
}
