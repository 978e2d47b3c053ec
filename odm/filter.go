package odm

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// FilterVariable is the name under which a document is bound in filter expressions.
const FilterVariable = "doc"

var filterEnvironment *cel.Env

func init() {
	var err error
	if filterEnvironment, err = cel.NewEnv(
		cel.Variable(FilterVariable, cel.MapType(cel.StringType, cel.DynType)),
		cel.CrossTypeNumericComparisons(true),
	); err != nil {
		panic(err)
	}
}

// Filter is a compiled CEL predicate over documents,
// e.g. `doc.age >= 18 && doc.email.endsWith("@example.com")`.
type Filter struct {
	expr    string
	program cel.Program
}

// CompileFilter compiles a filter expression. An empty expression yields a
// nil filter that matches every document.
func CompileFilter(expr string) (*Filter, error) {
	if expr == "" {
		return nil, nil
	}
	ast, iss := filterEnvironment.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, iss.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("%w: expression must evaluate to bool, got %s", ErrInvalidFilter, out)
	}
	program, err := filterEnvironment.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	return &Filter{expr: expr, program: program}, nil
}

// Match reports whether the document satisfies the filter.
// Documents for which evaluation fails, e.g. because a referenced key is
// missing, do not match.
func (f *Filter) Match(doc Document) bool {
	if f == nil {
		return true
	}
	out, _, err := f.program.Eval(map[string]any{FilterVariable: map[string]any(doc)})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}

func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}
