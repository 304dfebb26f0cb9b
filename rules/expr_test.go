package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapEnv is a simple two-bar environment for expression tests.
type mapEnv struct {
	cur  map[string]float64
	prev map[string]float64
}

func (e mapEnv) Value(name string) (float64, bool) {
	v, ok := e.cur[name]
	return v, ok
}

func (e mapEnv) Prev(name string) (float64, bool) {
	v, ok := e.prev[name]
	return v, ok
}

func TestCmpOperators(t *testing.T) {
	t.Parallel()

	env := mapEnv{cur: map[string]float64{"x": 5}}

	tests := []struct {
		op       CmpOp
		right    float64
		expected bool
	}{
		{OpGT, 4, true},
		{OpGT, 5, false},
		{OpGE, 5, true},
		{OpLT, 6, true},
		{OpLE, 4, false},
		{OpEQ, 5, true},
		{OpNE, 5, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.op), func(t *testing.T) {
			t.Parallel()
			got, err := Cmp{Op: tt.op, Left: Ref{"x"}, Right: Const{tt.right}}.Eval(env)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRefMissingValue(t *testing.T) {
	t.Parallel()

	env := mapEnv{cur: map[string]float64{}}
	_, err := Cmp{Op: OpGT, Left: Ref{"RSI"}, Right: Const{30}}.Eval(env)
	assert.ErrorIs(t, err, ErrMissingValue)
}

func TestBooleanNodes(t *testing.T) {
	t.Parallel()

	env := mapEnv{cur: map[string]float64{"a": 1, "b": 2}}
	aPos := Cmp{Op: OpGT, Left: Ref{"a"}, Right: Const{0}}
	bNeg := Cmp{Op: OpLT, Left: Ref{"b"}, Right: Const{0}}

	got, err := And{Exprs: []Expr{aPos, bNeg}}.Eval(env)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = Or{Exprs: []Expr{aPos, bNeg}}.Eval(env)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = Not{Expr: bNeg}.Eval(env)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestCrossOver(t *testing.T) {
	t.Parallel()

	cross := CrossOver{A: Ref{"fast"}, B: Ref{"slow"}}

	tests := []struct {
		name     string
		prev     map[string]float64
		cur      map[string]float64
		expected float64
	}{
		{
			name:     "cross_above",
			prev:     map[string]float64{"fast": 1, "slow": 2},
			cur:      map[string]float64{"fast": 3, "slow": 2},
			expected: +1,
		},
		{
			name:     "cross_below",
			prev:     map[string]float64{"fast": 3, "slow": 2},
			cur:      map[string]float64{"fast": 1, "slow": 2},
			expected: -1,
		},
		{
			name:     "no_cross",
			prev:     map[string]float64{"fast": 3, "slow": 2},
			cur:      map[string]float64{"fast": 4, "slow": 2},
			expected: 0,
		},
		{
			name:     "touch_then_rise",
			prev:     map[string]float64{"fast": 2, "slow": 2},
			cur:      map[string]float64{"fast": 3, "slow": 2},
			expected: +1,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := cross.Amount(mapEnv{cur: tt.cur, prev: tt.prev})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCrossOverNoPrevBar(t *testing.T) {
	t.Parallel()

	cross := CrossOver{A: Ref{"fast"}, B: Ref{"slow"}}
	_, err := cross.Amount(mapEnv{cur: map[string]float64{"fast": 1, "slow": 2}})
	assert.ErrorIs(t, err, ErrMissingValue)
}

func TestCompile(t *testing.T) {
	t.Parallel()

	thirty := 30.0
	spec := RuleSpec{
		All: []RuleSpec{
			{Cmp: &CmpSpec{Left: ValueSpec{Ref: "RSI"}, Op: "<", Right: ValueSpec{Const: &thirty}}},
			{Cmp: &CmpSpec{
				Left: ValueSpec{Cross: &CrossSpec{
					A: ValueSpec{Ref: "MACD"},
					B: ValueSpec{Ref: "MACD_SIGNAL"},
				}},
				Op:    ">",
				Right: ValueSpec{Const: new(float64)},
			}},
		},
	}

	expr, err := spec.Compile()
	require.NoError(t, err)

	env := mapEnv{
		prev: map[string]float64{"MACD": -1, "MACD_SIGNAL": 0},
		cur:  map[string]float64{"RSI": 25, "MACD": 1, "MACD_SIGNAL": 0},
	}
	got, err := expr.Eval(env)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestCompileRejectsBadSpecs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		spec RuleSpec
	}{
		{"empty", RuleSpec{}},
		{"ambiguous", RuleSpec{
			Cmp: &CmpSpec{Left: ValueSpec{Ref: "x"}, Op: ">", Right: ValueSpec{Const: new(float64)}},
			Not: &RuleSpec{},
		}},
		{"bad_op", RuleSpec{
			Cmp: &CmpSpec{Left: ValueSpec{Ref: "x"}, Op: "~", Right: ValueSpec{Const: new(float64)}},
		}},
		{"empty_value", RuleSpec{
			Cmp: &CmpSpec{Left: ValueSpec{}, Op: ">", Right: ValueSpec{Const: new(float64)}},
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.spec.Compile()
			assert.Error(t, err)
		})
	}
}
