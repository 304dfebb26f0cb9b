// Package rules provides a small interpreted expression representation for
// trading rules: comparison and boolean nodes over named per-bar values.
// Rules arrive as data and are evaluated by this package; they are never
// executed as code.
package rules

import (
	"errors"
	"fmt"
)

// ErrMissingValue marks evaluation against an environment that lacks a
// referenced name, typically an indicator still warming up. Callers usually
// treat it as "no signal on this bar".
var ErrMissingValue = errors.New("rules: missing value")

// Env supplies named values for the current and previous bar. Prev reports
// ok=false on the first bar or when the previous bar lacks the name.
type Env interface {
	Value(name string) (float64, bool)
	Prev(name string) (float64, bool)
}

// Expr is a boolean rule node.
type Expr interface {
	Eval(env Env) (bool, error)
}

// Value is a numeric rule node.
type Value interface {
	Amount(env Env) (float64, error)
}

// Ref reads a named value (an indicator column or "close") from the
// environment.
type Ref struct {
	Name string
}

func (r Ref) Amount(env Env) (float64, error) {
	v, ok := env.Value(r.Name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingValue, r.Name)
	}
	return v, nil
}

// Const is a numeric literal.
type Const struct {
	X float64
}

func (c Const) Amount(Env) (float64, error) {
	return c.X, nil
}

// CrossOver compares the A-B spread against the previous bar: +1 when A
// crosses above B on this bar, -1 when it crosses below, 0 otherwise.
type CrossOver struct {
	A, B Value
}

func (c CrossOver) Amount(env Env) (float64, error) {
	cur, err := spread(env, c.A, c.B, false)
	if err != nil {
		return 0, err
	}
	prev, err := spread(env, c.A, c.B, true)
	if err != nil {
		return 0, err
	}

	switch {
	case prev <= 0 && cur > 0:
		return +1, nil
	case prev >= 0 && cur < 0:
		return -1, nil
	}
	return 0, nil
}

func spread(env Env, a, b Value, prev bool) (float64, error) {
	e := env
	if prev {
		e = prevEnv{env}
	}
	av, err := a.Amount(e)
	if err != nil {
		return 0, err
	}
	bv, err := b.Amount(e)
	if err != nil {
		return 0, err
	}
	return av - bv, nil
}

// prevEnv shifts Value lookups one bar back.
type prevEnv struct {
	Env
}

func (p prevEnv) Value(name string) (float64, bool) {
	return p.Env.Prev(name)
}

// CmpOp is a comparison operator.
type CmpOp string

const (
	OpGT CmpOp = ">"
	OpGE CmpOp = ">="
	OpLT CmpOp = "<"
	OpLE CmpOp = "<="
	OpEQ CmpOp = "=="
	OpNE CmpOp = "!="
)

// Cmp compares two numeric nodes.
type Cmp struct {
	Op    CmpOp
	Left  Value
	Right Value
}

func (c Cmp) Eval(env Env) (bool, error) {
	l, err := c.Left.Amount(env)
	if err != nil {
		return false, err
	}
	r, err := c.Right.Amount(env)
	if err != nil {
		return false, err
	}

	switch c.Op {
	case OpGT:
		return l > r, nil
	case OpGE:
		return l >= r, nil
	case OpLT:
		return l < r, nil
	case OpLE:
		return l <= r, nil
	case OpEQ:
		return l == r, nil
	case OpNE:
		return l != r, nil
	}
	return false, fmt.Errorf("rules: unknown comparison operator %q", c.Op)
}

// And is true when all children are true. Evaluation is not short-circuited
// across missing values: any child error aborts.
type And struct {
	Exprs []Expr
}

func (a And) Eval(env Env) (bool, error) {
	for _, e := range a.Exprs {
		ok, err := e.Eval(env)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Or is true when any child is true.
type Or struct {
	Exprs []Expr
}

func (o Or) Eval(env Env) (bool, error) {
	for _, e := range o.Exprs {
		ok, err := e.Eval(env)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Not negates its child.
type Not struct {
	Expr Expr
}

func (n Not) Eval(env Env) (bool, error) {
	ok, err := n.Expr.Eval(env)
	if err != nil {
		return false, err
	}
	return !ok, nil
}
