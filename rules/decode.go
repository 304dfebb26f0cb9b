package rules

import (
	"fmt"
)

// RuleSpec is the file-friendly form of a boolean rule node. Exactly one
// field must be set.
type RuleSpec struct {
	Cmp *CmpSpec   `yaml:"cmp,omitempty" json:"cmp,omitempty"`
	All []RuleSpec `yaml:"all,omitempty" json:"all,omitempty"`
	Any []RuleSpec `yaml:"any,omitempty" json:"any,omitempty"`
	Not *RuleSpec  `yaml:"not,omitempty" json:"not,omitempty"`
}

// CmpSpec is a comparison between two numeric nodes.
type CmpSpec struct {
	Left  ValueSpec `yaml:"left" json:"left"`
	Op    string    `yaml:"op" json:"op"`
	Right ValueSpec `yaml:"right" json:"right"`
}

// ValueSpec is the file-friendly form of a numeric node. Exactly one field
// must be set.
type ValueSpec struct {
	Ref   string     `yaml:"ref,omitempty" json:"ref,omitempty"`
	Const *float64   `yaml:"const,omitempty" json:"const,omitempty"`
	Cross *CrossSpec `yaml:"cross,omitempty" json:"cross,omitempty"`
}

// CrossSpec is a crossover between two numeric nodes.
type CrossSpec struct {
	A ValueSpec `yaml:"a" json:"a"`
	B ValueSpec `yaml:"b" json:"b"`
}

// Compile turns a RuleSpec into an evaluatable Expr, rejecting ambiguous or
// empty nodes.
func (s RuleSpec) Compile() (Expr, error) {
	set := 0
	if s.Cmp != nil {
		set++
	}
	if len(s.All) > 0 {
		set++
	}
	if len(s.Any) > 0 {
		set++
	}
	if s.Not != nil {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("rules: node must set exactly one of cmp/all/any/not, got %d", set)
	}

	switch {
	case s.Cmp != nil:
		return s.Cmp.compile()
	case len(s.All) > 0:
		exprs, err := compileList(s.All)
		if err != nil {
			return nil, err
		}
		return And{Exprs: exprs}, nil
	case len(s.Any) > 0:
		exprs, err := compileList(s.Any)
		if err != nil {
			return nil, err
		}
		return Or{Exprs: exprs}, nil
	default:
		inner, err := s.Not.Compile()
		if err != nil {
			return nil, err
		}
		return Not{Expr: inner}, nil
	}
}

func compileList(specs []RuleSpec) ([]Expr, error) {
	exprs := make([]Expr, len(specs))
	for i, s := range specs {
		e, err := s.Compile()
		if err != nil {
			return nil, err
		}
		exprs[i] = e
	}
	return exprs, nil
}

func (c *CmpSpec) compile() (Expr, error) {
	op := CmpOp(c.Op)
	switch op {
	case OpGT, OpGE, OpLT, OpLE, OpEQ, OpNE:
	default:
		return nil, fmt.Errorf("rules: unknown comparison operator %q", c.Op)
	}

	left, err := c.Left.compile()
	if err != nil {
		return nil, err
	}
	right, err := c.Right.compile()
	if err != nil {
		return nil, err
	}
	return Cmp{Op: op, Left: left, Right: right}, nil
}

func (v ValueSpec) compile() (Value, error) {
	set := 0
	if v.Ref != "" {
		set++
	}
	if v.Const != nil {
		set++
	}
	if v.Cross != nil {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("rules: value must set exactly one of ref/const/cross, got %d", set)
	}

	switch {
	case v.Ref != "":
		return Ref{Name: v.Ref}, nil
	case v.Const != nil:
		return Const{X: *v.Const}, nil
	default:
		a, err := v.Cross.A.compile()
		if err != nil {
			return nil, err
		}
		b, err := v.Cross.B.compile()
		if err != nil {
			return nil, err
		}
		return CrossOver{A: a, B: b}, nil
	}
}
