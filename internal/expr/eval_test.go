package expr

import (
	"testing"

	"github.com/kunquat/kqsynth/internal/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalNoEnv(t *testing.T, s string) project.Value {
	t.Helper()
	v, err := Eval(s, MapEnv{}, project.None, NewLCGRandom(1))
	require.NoError(t, err)
	return v
}

func TestArithmeticPrecedence(t *testing.T) {
	v := evalNoEnv(t, "(1 + 2) * 3")
	assert.Equal(t, project.KindInt, v.Kind)
	assert.Equal(t, int64(9), v.Int)
}

func TestTsFunction(t *testing.T) {
	v := evalNoEnv(t, "ts(1, 0)")
	assert.Equal(t, project.KindTstamp, v.Kind)
	assert.Equal(t, int64(1), v.Ts.Beats)
	assert.Equal(t, int32(0), v.Ts.Rem)
}

func TestRandFunctionInRange(t *testing.T) {
	v := evalNoEnv(t, "rand(1.0)")
	assert.Equal(t, project.KindFloat, v.Kind)
	assert.GreaterOrEqual(t, v.Float, 0.0)
	assert.Less(t, v.Float, 1.0)
}

func TestDivisionByZeroIsFormatError(t *testing.T) {
	_, err := Eval("1 / 0", MapEnv{}, project.None, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zero")
}

func TestLogicalAnd(t *testing.T) {
	v := evalNoEnv(t, "true & false")
	assert.Equal(t, project.KindBool, v.Kind)
	assert.False(t, v.Bool)
}

func TestModuloSignFollowsDivisor(t *testing.T) {
	v := evalNoEnv(t, "-1 % 3")
	assert.Equal(t, project.KindInt, v.Kind)
	assert.Equal(t, int64(2), v.Int)
}

func TestZeroToZeroIsError(t *testing.T) {
	_, err := Eval("0 ^ 0", MapEnv{}, project.None, nil)
	require.Error(t, err)
}

func TestNegativeExponentPromotesToFloat(t *testing.T) {
	v := evalNoEnv(t, "2 ^ -1")
	assert.Equal(t, project.KindFloat, v.Kind)
	assert.InDelta(t, 0.5, v.Float, 1e-9)
}

func TestIntDivisionExactYieldsInt(t *testing.T) {
	v := evalNoEnv(t, "6 / 2")
	assert.Equal(t, project.KindInt, v.Kind)
	assert.Equal(t, int64(3), v.Int)
}

func TestIntDivisionInexactYieldsFloat(t *testing.T) {
	v := evalNoEnv(t, "7 / 2")
	assert.Equal(t, project.KindFloat, v.Kind)
	assert.InDelta(t, 3.5, v.Float, 1e-9)
}

func TestEnvironmentVariableLookup(t *testing.T) {
	env := MapEnv{"cutoff": project.FloatVal(880)}
	v, err := Eval("cutoff * 2", env, project.None, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1760.0, v.Float, 1e-9)
}

func TestUndefinedVariableErrors(t *testing.T) {
	_, err := Eval("nope + 1", MapEnv{}, project.None, nil)
	require.Error(t, err)
}

func TestMetaDollarBinding(t *testing.T) {
	v, err := Eval("$ + 1", MapEnv{}, project.IntVal(41), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int)
}

func TestFunctionArgSubExpressionsRecurse(t *testing.T) {
	v := evalNoEnv(t, "ts(1 + 1, 2 * 3)")
	assert.Equal(t, int64(2), v.Ts.Beats)
	assert.Equal(t, int32(6), v.Ts.Rem)
}

func TestDeepNestingExceedsStackDepth(t *testing.T) {
	expr := ""
	for i := 0; i < 40; i++ {
		expr += "("
	}
	expr += "1"
	for i := 0; i < 40; i++ {
		expr += ")"
	}
	_, err := Eval(expr, MapEnv{}, project.None, nil)
	require.Error(t, err)
}

func TestStringEquality(t *testing.T) {
	v := evalNoEnv(t, "'abc' = 'abc'")
	assert.True(t, v.Bool)
}

func TestDoubleQuotedEscapes(t *testing.T) {
	v := evalNoEnv(t, `"a\tb"`)
	assert.Equal(t, "a\tb", v.Str)
}
