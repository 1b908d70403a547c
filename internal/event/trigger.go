package event

import (
	"github.com/kunquat/kqsynth/internal/expr"
	"github.com/kunquat/kqsynth/internal/project"
)

// Arg is a parsed trigger argument.
type Arg struct {
	Value project.Value
}

// ParseConst parses a literal of the declared parameter type (trigger_const
// path, spec.md §4.9).
func ParseConst(vt ValueType, raw project.Value) (project.Value, error) {
	return Coerce(vt, raw)
}

// ParseExpr evaluates an expression over env with meta bound to $ (trigger
// path), then coerces the result to the declared parameter type.
func ParseExpr(vt ValueType, exprStr string, env expr.Env, meta project.Value, rnd expr.Random) (project.Value, error) {
	v, err := expr.Eval(exprStr, env, meta, rnd)
	if err != nil {
		return project.None, err
	}
	return Coerce(vt, v)
}

// Coerce converts v to the declared type vt (Int<->Float promotion,
// Int->Tstamp conversion; all other mismatches fail), per spec.md §4.9.
func Coerce(vt ValueType, v project.Value) (project.Value, error) {
	switch vt {
	case ValueNone:
		return project.None, nil
	case ValueBool:
		if v.Kind == project.KindBool {
			return v, nil
		}
	case ValueInt:
		if v.Kind == project.KindInt {
			return v, nil
		}
		if v.Kind == project.KindFloat {
			return project.IntVal(int64(v.Float)), nil
		}
	case ValueFloat:
		if v.Kind == project.KindFloat {
			return v, nil
		}
		if v.Kind == project.KindInt {
			return project.FloatVal(float64(v.Int)), nil
		}
	case ValueTstamp:
		if v.Kind == project.KindTstamp {
			return v, nil
		}
		if v.Kind == project.KindInt {
			return project.TstampVal(tstampFromBeats(v.Int)), nil
		}
	case ValueString:
		if v.Kind == project.KindString {
			return v, nil
		}
	case ValuePatInstRef:
		if v.Kind == project.KindPatInstRef {
			return v, nil
		}
	}
	return project.None, coerceErr(vt, v)
}
