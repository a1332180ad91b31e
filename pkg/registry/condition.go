package registry

import (
	"fmt"
	"maps"
	"runtime"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// Env is what when-conditions can see.
type Env struct {
	OS   string
	Arch string
	Vars map[string]string
}

// DefaultEnv describes the running process with the given variables.
func DefaultEnv(vars map[string]string) Env {
	return Env{OS: runtime.GOOS, Arch: runtime.GOARCH, Vars: vars}
}

func (e Env) values() map[string]any {
	vars := make(map[string]any, len(e.Vars))
	for k, v := range e.Vars {
		vars[k] = v
	}
	return map[string]any{
		"os":   e.OS,
		"arch": e.Arch,
		"vars": vars,
	}
}

// Condition is a compiled when-expression.
type Condition struct {
	source  string
	program *exprvm.Program
}

// CompileCondition compiles expression. Unknown identifiers evaluate to nil
// instead of failing compilation.
func CompileCondition(expression string) (*Condition, error) {
	program, err := exprlang.Compile(expression,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, err
	}
	return &Condition{source: expression, program: program}, nil
}

// String returns the expression source.
func (c *Condition) String() string { return c.source }

// Eval runs the condition against env.
func (c *Condition) Eval(env Env) (bool, error) {
	out, err := exprlang.Run(c.program, env.values())
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q produced %T, want bool", c.source, out)
	}
	return b, nil
}

// WithVars returns a copy of env with extra variables layered on top.
func (e Env) WithVars(extra map[string]string) Env {
	vars := maps.Clone(e.Vars)
	if vars == nil {
		vars = make(map[string]string, len(extra))
	}
	maps.Copy(vars, extra)
	e.Vars = vars
	return e
}
