package executor

import (
	"github.com/cockroachdb/errors"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/hupe1980/hypergo/catalog"
	"github.com/hupe1980/hypergo/core"
)

// StatementExprs bundles the statement-level compiled expressions. They are
// compiled once per statement and shared by reference into every chunk's
// result relation; all of them are immutable after compilation.
type StatementExprs struct {
	CheckOptions []*CheckOption
	RowFilter    *RowFilter
	Returning    *Projection

	// ConflictSet and ConflictWhere describe the statement's conflict
	// resolution. They are carried and shared like the other fields, but
	// conflict-aware application (including conflict-driven index opening)
	// remains the caller's concern.
	ConflictSet   *Projection
	ConflictWhere *RowFilter
}

// CheckOption is a named boolean constraint evaluated against every inserted
// row.
type CheckOption struct {
	Name string
	Expr string

	prog *vm.Program
}

// CompileCheckOption compiles the source into a check option. The expression
// must evaluate to a boolean.
func CompileCheckOption(name, src string) (*CheckOption, error) {
	prog, err := expr.Compile(src, expr.AsBool())
	if err != nil {
		return nil, errors.Wrapf(err, "compiling check option %q", name)
	}
	return &CheckOption{Name: name, Expr: src, prog: prog}, nil
}

// Eval evaluates the option against a row environment.
func (c *CheckOption) Eval(env map[string]any) (bool, error) {
	out, err := expr.Run(c.prog, env)
	if err != nil {
		return false, errors.Wrapf(err, "evaluating check option %q", c.Name)
	}
	return out.(bool), nil
}

// RowFilter is a boolean predicate deciding whether a row qualifies for
// insertion. Rows that do not qualify are skipped silently.
type RowFilter struct {
	Expr string

	prog *vm.Program
}

// CompileRowFilter compiles the source into a row filter.
func CompileRowFilter(src string) (*RowFilter, error) {
	prog, err := expr.Compile(src, expr.AsBool())
	if err != nil {
		return nil, errors.Wrapf(err, "compiling row filter %q", src)
	}
	return &RowFilter{Expr: src, prog: prog}, nil
}

// Eval evaluates the filter against a row environment.
func (f *RowFilter) Eval(env map[string]any) (bool, error) {
	out, err := expr.Run(f.prog, env)
	if err != nil {
		return false, errors.Wrapf(err, "evaluating row filter %q", f.Expr)
	}
	return out.(bool), nil
}

// Projection computes an output row from a row environment, one compiled
// expression per output column. Used for RETURNING clauses and conflict-set
// projections.
type Projection struct {
	Columns []string

	progs []*vm.Program
}

// CompileProjection compiles column name/expression pairs in the given order.
func CompileProjection(columns []string, exprs []string) (*Projection, error) {
	if len(columns) != len(exprs) {
		return nil, errors.AssertionFailedf("projection needs one expression per column: %d vs %d", len(columns), len(exprs))
	}
	progs := make([]*vm.Program, len(exprs))
	for i, src := range exprs {
		prog, err := expr.Compile(src)
		if err != nil {
			return nil, errors.Wrapf(err, "compiling projection of %q", columns[i])
		}
		progs[i] = prog
	}
	return &Projection{Columns: columns, progs: progs}, nil
}

// Eval computes the projected row.
func (p *Projection) Eval(env map[string]any) (core.Row, error) {
	out := make(core.Row, len(p.progs))
	for i, prog := range p.progs {
		v, err := expr.Run(prog, env)
		if err != nil {
			return nil, errors.Wrapf(err, "evaluating projection of %q", p.Columns[i])
		}
		out[i] = v
	}
	return out, nil
}

// RowEnv builds the expression environment for a row: column name to value.
func RowEnv(desc *catalog.TableDescriptor, row core.Row) map[string]any {
	env := make(map[string]any, len(desc.Columns))
	for i, col := range desc.Columns {
		if i < len(row) {
			env[col.Name] = row[i]
		} else {
			env[col.Name] = nil
		}
	}
	return env
}
