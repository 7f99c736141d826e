package builtin

import (
	"log/slog"
	"strconv"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/automaton/state"
)

// programs caches compiled expressions by source hash.
var programs sync.Map

// exprEnv is the environment an Expr expression is evaluated in.
type exprEnv struct {
	Params map[string]string `expr:"params"`
	Count  int               `expr:"count"`
	Kinds  map[string]int    `expr:"kinds"`
	Items  []map[string]any  `expr:"items"`
}

func makeExprEnv(st *state.State, params state.Params) exprEnv {
	env := exprEnv{
		Params: map[string]string(params.Clone()),
		Count:  st.Len(),
		Kinds:  st.Kinds(),
		Items:  make([]map[string]any, 0, st.Len()),
	}

	for _, it := range st.Items {
		env.Items = append(env.Items, map[string]any{
			"kind":     it.Kind,
			"id":       it.ID,
			"refs":     it.Refs,
			"metadata": map[string]string(it.Metadata),
			"source":   it.Source,
		})
	}

	return env
}

// compileExpr compiles source as a boolean expression over [exprEnv].
func compileExpr(source string) (*vm.Program, error) {
	key := strconv.FormatUint(xxh3.HashString(source), 36)

	if p, ok := programs.Load(key); ok {
		return p.(*vm.Program), nil
	}

	program, err := expr.Compile(source, expr.Env(exprEnv{}), expr.AsBool())
	if err != nil {
		return nil, ErrExpression.Wrap(err).
			With(slog.String("source", source))
	}

	programs.Store(key, program)

	return program, nil
}

// evalExpr evaluates source against st and params.
func evalExpr(source string, st *state.State, params state.Params) (bool, error) {
	program, err := compileExpr(source)
	if err != nil {
		return false, err
	}

	out, err := expr.Run(program, makeExprEnv(st, params))
	if err != nil {
		return false, ErrExpression.Wrap(err).
			With(slog.String("source", source))
	}

	ok, _ := out.(bool)

	return ok, nil
}
