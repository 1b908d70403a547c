package expr

import (
	"math"

	kqterrors "github.com/kunquat/kqsynth/internal/errors"
	"github.com/kunquat/kqsynth/internal/project"
	"github.com/kunquat/kqsynth/internal/tstamp"
)

// rank orders the arithmetic types for promotion: Int < Tstamp < Float.
func rank(k project.Kind) int {
	switch k {
	case project.KindInt:
		return 0
	case project.KindTstamp:
		return 1
	case project.KindFloat:
		return 2
	default:
		return -1
	}
}

func isArith(k project.Kind) bool { return rank(k) >= 0 }

func typeErr(msg string) error {
	return kqterrors.Newf("%s", msg).Component("expr").Category(kqterrors.CategoryFormat).Build()
}

// toFloat converts an arithmetic Value to float64.
func toFloat(v project.Value) float64 {
	switch v.Kind {
	case project.KindInt:
		return float64(v.Int)
	case project.KindTstamp:
		return v.Ts.ToFloat()
	case project.KindFloat:
		return v.Float
	}
	return 0
}

// promote brings a and b to their common arithmetic type (the lower-ranked
// operand promotes to the higher), per spec.md §4.4.
func promote(a, b project.Value) (project.Value, project.Value, project.Kind, error) {
	if !isArith(a.Kind) || !isArith(b.Kind) {
		return project.None, project.None, project.KindNone, typeErr("non-arithmetic operand to arithmetic operator")
	}
	if a.Kind == b.Kind {
		return a, b, a.Kind, nil
	}
	common := a.Kind
	if rank(b.Kind) > rank(a.Kind) {
		common = b.Kind
	}
	return convertTo(a, common), convertTo(b, common), common, nil
}

func convertTo(v project.Value, k project.Kind) project.Value {
	if v.Kind == k {
		return v
	}
	switch k {
	case project.KindTstamp:
		// Int -> Tstamp: the integer is a whole-beat count.
		return project.TstampVal(tstamp.New(v.Int, 0))
	case project.KindFloat:
		return project.FloatVal(toFloat(v))
	}
	return v
}

func arith(op string, a, b project.Value) (project.Value, error) {
	ca, cb, common, err := promote(a, b)
	if err != nil {
		return project.None, err
	}

	switch op {
	case "+":
		return addSub(common, ca, cb, true)
	case "-":
		return addSub(common, ca, cb, false)
	case "*":
		return multiply(common, ca, cb)
	case "/":
		return divide(common, ca, cb)
	case "%":
		return modulo(common, ca, cb)
	case "^":
		return power(ca, cb)
	}
	return project.None, typeErr("unknown arithmetic operator " + op)
}

func addSub(common project.Kind, a, b project.Value, add bool) (project.Value, error) {
	switch common {
	case project.KindInt:
		if add {
			return project.IntVal(a.Int + b.Int), nil
		}
		return project.IntVal(a.Int - b.Int), nil
	case project.KindTstamp:
		if add {
			return project.TstampVal(a.Ts.Add(b.Ts)), nil
		}
		return project.TstampVal(a.Ts.Sub(b.Ts)), nil
	case project.KindFloat:
		if add {
			return project.FloatVal(a.Float + b.Float), nil
		}
		return project.FloatVal(a.Float - b.Float), nil
	}
	return project.None, typeErr("unsupported arithmetic type")
}

func multiply(common project.Kind, a, b project.Value) (project.Value, error) {
	switch common {
	case project.KindInt:
		return project.IntVal(a.Int * b.Int), nil
	case project.KindTstamp:
		// Tstamp*Tstamp has no natural meaning; scale by the other's float value.
		return project.TstampVal(tstamp.FromFloat(a.Ts.ToFloat() * b.Ts.ToFloat())), nil
	case project.KindFloat:
		return project.FloatVal(a.Float * b.Float), nil
	}
	return project.None, typeErr("unsupported arithmetic type")
}

func divide(common project.Kind, a, b project.Value) (project.Value, error) {
	switch common {
	case project.KindInt:
		if b.Int == 0 {
			return project.None, typeErr("division by zero")
		}
		if a.Int%b.Int == 0 {
			return project.IntVal(a.Int / b.Int), nil
		}
		return project.FloatVal(float64(a.Int) / float64(b.Int)), nil
	case project.KindTstamp:
		bf := b.Ts.ToFloat()
		if bf == 0 {
			return project.None, typeErr("division by zero")
		}
		return project.FloatVal(a.Ts.ToFloat() / bf), nil
	case project.KindFloat:
		if b.Float == 0 {
			return project.None, typeErr("division by zero")
		}
		return project.FloatVal(a.Float / b.Float), nil
	}
	return project.None, typeErr("unsupported division type")
}

// modulo returns a result with the sign of the divisor (Python-style).
func modulo(common project.Kind, a, b project.Value) (project.Value, error) {
	switch common {
	case project.KindInt:
		if b.Int == 0 {
			return project.None, typeErr("modulo by zero")
		}
		m := a.Int % b.Int
		if m != 0 && (m < 0) != (b.Int < 0) {
			m += b.Int
		}
		return project.IntVal(m), nil
	default:
		af, bf := toFloat(a), toFloat(b)
		if bf == 0 {
			return project.None, typeErr("modulo by zero")
		}
		m := math.Mod(af, bf)
		if m != 0 && (m < 0) != (bf < 0) {
			m += bf
		}
		return project.FloatVal(m), nil
	}
}

// power implements exponentiation: 0^0 is an error; negative exponents
// promote the result to Float.
func power(a, b project.Value) (project.Value, error) {
	af, bf := toFloat(a), toFloat(b)
	if af == 0 && bf == 0 {
		return project.None, typeErr("0^0 is undefined")
	}
	if a.Kind == project.KindInt && b.Kind == project.KindInt && b.Int >= 0 {
		result := int64(1)
		base := a.Int
		for i := int64(0); i < b.Int; i++ {
			result *= base
		}
		return project.IntVal(result), nil
	}
	return project.FloatVal(math.Pow(af, bf)), nil
}

func negate(v project.Value) (project.Value, error) {
	switch v.Kind {
	case project.KindInt:
		return project.IntVal(-v.Int), nil
	case project.KindFloat:
		return project.FloatVal(-v.Float), nil
	case project.KindTstamp:
		return project.TstampVal(tstamp.New(-v.Ts.Beats, -int64(v.Ts.Rem))), nil
	default:
		return project.None, typeErr("unary - requires an arithmetic operand")
	}
}

func logicalNot(v project.Value) (project.Value, error) {
	if v.Kind != project.KindBool {
		return project.None, typeErr("! requires a Bool operand")
	}
	return project.BoolVal(!v.Bool), nil
}

func logical(op string, a, b project.Value) (project.Value, error) {
	if a.Kind != project.KindBool || b.Kind != project.KindBool {
		return project.None, typeErr(op + " requires Bool operands")
	}
	switch op {
	case "|":
		return project.BoolVal(a.Bool || b.Bool), nil
	case "&":
		return project.BoolVal(a.Bool && b.Bool), nil
	}
	return project.None, typeErr("unknown logical operator " + op)
}

func equals(a, b project.Value) (project.Value, error) {
	if a.Kind == project.KindNone || b.Kind == project.KindNone {
		return project.BoolVal(a.Kind == b.Kind), nil
	}
	if isArith(a.Kind) && isArith(b.Kind) {
		ca, cb, _, err := promote(a, b)
		if err != nil {
			return project.None, err
		}
		return project.BoolVal(arithEqual(ca, cb)), nil
	}
	if a.Kind != b.Kind {
		return project.None, typeErr("cannot compare mismatched types")
	}
	switch a.Kind {
	case project.KindBool:
		return project.BoolVal(a.Bool == b.Bool), nil
	case project.KindString:
		return project.BoolVal(a.Str == b.Str), nil
	case project.KindPatInstRef:
		return project.BoolVal(a.Pat == b.Pat), nil
	}
	return project.None, typeErr("unsupported equality comparison")
}

func arithEqual(a, b project.Value) bool {
	switch a.Kind {
	case project.KindInt:
		return a.Int == b.Int
	case project.KindFloat:
		return a.Float == b.Float
	case project.KindTstamp:
		return a.Ts.Cmp(b.Ts) == 0
	}
	return false
}

func compare(op string, a, b project.Value) (project.Value, error) {
	if !isArith(a.Kind) || !isArith(b.Kind) {
		if a.Kind == project.KindString && b.Kind == project.KindString {
			return compareInt(op, strCmp(a.Str, b.Str)), nil
		}
		return project.None, typeErr("relational operators require arithmetic or string operands")
	}
	ca, cb, common, err := promote(a, b)
	if err != nil {
		return project.None, err
	}
	var c int
	switch common {
	case project.KindInt:
		c = cmpInt64(ca.Int, cb.Int)
	case project.KindFloat:
		c = cmpFloat64(ca.Float, cb.Float)
	case project.KindTstamp:
		c = ca.Ts.Cmp(cb.Ts)
	}
	return compareInt(op, c), nil
}

func strCmp(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareInt(op string, c int) project.Value {
	switch op {
	case "<":
		return project.BoolVal(c < 0)
	case "<=":
		return project.BoolVal(c <= 0)
	case ">":
		return project.BoolVal(c > 0)
	case ">=":
		return project.BoolVal(c >= 0)
	}
	return project.BoolVal(false)
}
