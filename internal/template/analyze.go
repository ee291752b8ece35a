package template

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

const (
	inputRoot = "input"
	localRoot = "local"
)

// calledFunctions walks the syntax trees of exprs and returns the names of
// every function they call, sorted.
func calledFunctions(exprs ...hcl.Expression) []string {
	functions := make(map[string]struct{})
	for _, expr := range exprs {
		node, ok := expr.(hclsyntax.Node)
		if !ok {
			continue
		}
		hclsyntax.VisitAll(node, func(n hclsyntax.Node) hcl.Diagnostics {
			if call, ok := n.(*hclsyntax.FunctionCallExpr); ok {
				functions[call.Name] = struct{}{}
			}
			return nil
		})
	}
	return slices.Sorted(maps.Keys(functions))
}

// localReferences returns the names of the locals expr refers to and reports
// references to unknown root variables.
func localReferences(expr hcl.Expression) (map[string]struct{}, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	refs := make(map[string]struct{})
	for _, traversal := range expr.Variables() {
		switch traversal.RootName() {
		case inputRoot:
		case localRoot:
			if len(traversal) < 2 {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid local reference",
					Detail:   "A reference to \"local\" must be followed by the name of a local value.",
					Subject:  traversal.SourceRange().Ptr(),
				})
				continue
			}
			if attr, ok := traversal[1].(hcl.TraverseAttr); ok {
				refs[attr.Name] = struct{}{}
			}
		default:
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unknown variable",
				Detail:   fmt.Sprintf("There is no variable named %q. Templates can refer to \"input\" and \"local\".", traversal.RootName()),
				Subject:  traversal.SourceRange().Ptr(),
			})
		}
	}
	return refs, diags
}

// orderLocals returns locals so that every local follows the locals it
// refers to. Ties are broken by name. References to undeclared locals and
// cycles are reported as diagnostics.
func orderLocals(attrs hcl.Attributes) ([]*Local, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	deps := make(map[string]map[string]struct{}, len(attrs))
	for name, attr := range attrs {
		refs, refDiags := localReferences(attr.Expr)
		diags = append(diags, refDiags...)
		for ref := range refs {
			if _, ok := attrs[ref]; !ok {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Reference to undeclared local value",
					Detail:   fmt.Sprintf("A local value named %q has not been declared.", ref),
					Subject:  attr.Expr.Range().Ptr(),
				})
				delete(refs, ref)
			}
		}
		deps[name] = refs
	}
	if diags.HasErrors() {
		return nil, diags
	}

	ordered := make([]*Local, 0, len(attrs))
	done := make(map[string]struct{}, len(attrs))
	for len(done) < len(attrs) {
		var ready []string
		for name, refs := range deps {
			if _, ok := done[name]; ok {
				continue
			}
			if allDone(refs, done) {
				ready = append(ready, name)
			}
		}
		if len(ready) == 0 {
			var cycle []string
			for name := range deps {
				if _, ok := done[name]; !ok {
					cycle = append(cycle, name)
				}
			}
			slices.Sort(cycle)
			return nil, append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Cyclic local values",
				Detail:   fmt.Sprintf("The local values %s refer to each other in a cycle.", strings.Join(cycle, ", ")),
				Subject:  attrs[cycle[0]].Range.Ptr(),
			})
		}
		slices.Sort(ready)
		for _, name := range ready {
			done[name] = struct{}{}
			ordered = append(ordered, &Local{Name: name, Expr: attrs[name].Expr})
		}
	}
	return ordered, diags
}

func allDone(refs, done map[string]struct{}) bool {
	for ref := range refs {
		if _, ok := done[ref]; !ok {
			return false
		}
	}
	return true
}
