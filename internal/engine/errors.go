package engine

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/cdf2fhir/internal/precondition"
	"github.com/vk/cdf2fhir/internal/record"
	"github.com/vk/cdf2fhir/internal/store"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

const inputVariable = "input"

var (
	ErrUnknownModule    = errors.New("unknown module")
	ErrUnknownFunction  = errors.New("template calls a function that is not bound")
	ErrUnexpectedResult = errors.New("template produced an unexpected result")
)

// EvaluationError is any failure of one target other than a precondition
// violation.
type EvaluationError struct {
	Target Target
	Err    error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("error while evaluating template %q with module %q: %v", e.Target.Template, e.Target.Module, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// diagnosticsError recovers the Go error behind failed evaluation
// diagnostics. An error returned by a called function wins over HCL's own
// diagnostics, and a precondition violation wins over everything. Failed
// lookups in the input object are reported as the error r returns for the
// same lookup.
func diagnosticsError(diags hcl.Diagnostics, r store.Reader) error {
	var callErr error
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		extra, ok := d.Extra.(hclsyntax.FunctionCallDiagExtra)
		if !ok {
			continue
		}
		err := extra.FunctionCallError()
		if err == nil {
			continue
		}
		if errors.Is(err, precondition.ErrViolation) {
			return err
		}
		if callErr == nil {
			callErr = fmt.Errorf("%s: %w", extra.CalledFunctionName(), err)
		}
	}
	if callErr != nil {
		return callErr
	}

	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		if path, ok := inputPath(d); ok {
			if err := lookupInput(r, path); err != nil {
				return fmt.Errorf("%s: %w", d.Subject, err)
			}
			continue
		}
		if d.Summary == "Unsupported attribute" {
			return fmt.Errorf("%w: %s: %s", record.ErrUndefinedField, d.Subject, d.Detail)
		}
	}
	return diags
}

// inputPath reports whether d comes from a traversal rooted at the input
// object and returns the variable and wave keys up to the failing step.
// Keys that cannot be recovered as strings are returned as empty strings.
func inputPath(d *hcl.Diagnostic) ([]string, bool) {
	if d.Subject == nil {
		return nil, false
	}

	var traversal hcl.Traversal
	switch expr := d.Expression.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		traversal = expr.Traversal
		for i, step := range traversal {
			if step.SourceRange() == *d.Subject {
				traversal = traversal[:i+1]
				break
			}
		}
	case *hclsyntax.IndexExpr:
		coll, ok := expr.Collection.(*hclsyntax.ScopeTraversalExpr)
		if !ok || d.EvalContext == nil {
			return nil, false
		}
		key, diags := expr.Key.Value(d.EvalContext)
		if diags.HasErrors() {
			key = cty.NullVal(cty.String)
		}
		traversal = append(coll.Traversal[:len(coll.Traversal):len(coll.Traversal)], hcl.TraverseIndex{Key: key})
	default:
		return nil, false
	}

	if traversal.IsRelative() || traversal.RootName() != inputVariable {
		return nil, false
	}
	path := make([]string, 0, len(traversal)-1)
	for _, step := range traversal[1:] {
		path = append(path, stepKey(step))
	}
	return path, true
}

func stepKey(step hcl.Traverser) string {
	switch s := step.(type) {
	case hcl.TraverseAttr:
		return s.Name
	case hcl.TraverseIndex:
		if !s.Key.IsKnown() || s.Key.IsNull() {
			return ""
		}
		v, err := convert.Convert(s.Key, cty.String)
		if err != nil {
			return ""
		}
		return v.AsString()
	}
	return ""
}

// lookupInput repeats a failed variable or wave lookup against r. It returns
// nil when the path is not such a lookup or r holds the key after all.
func lookupInput(r store.Reader, path []string) error {
	switch {
	case len(path) == 1 && path[0] != "":
		_, err := r.Assessments(path[0])
		return err
	case len(path) == 2 && path[0] != "" && path[1] != "":
		_, err := r.Value(path[0], path[1])
		return err
	}
	return nil
}
