// Package project models the core's sole contact point with the (out-of-scope)
// key-value project loader: a typed Value union and the Streader interface
// that the expression evaluator and event dispatch read from (spec.md §1, §4.4).
package project

import (
	"fmt"

	"github.com/kunquat/kqsynth/internal/tstamp"
)

// Kind identifies which field of a Value is populated.
type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindTstamp
	KindString
	KindPatInstRef
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindTstamp:
		return "Tstamp"
	case KindString:
		return "String"
	case KindPatInstRef:
		return "PatInstRef"
	default:
		return "Unknown"
	}
}

// PatInstRef refers to a pattern and one of its instance placements.
type PatInstRef struct {
	Pattern  int16
	Instance int16
}

// Value is the tagged-union type used by the expression evaluator and
// control-variable bindings (spec.md §4.4's type system).
type Value struct {
	Kind  Kind
	Bool  bool
	Int   int64
	Float float64
	Ts    tstamp.Tstamp
	Str   string
	Pat   PatInstRef
}

// None is the empty value.
var None = Value{Kind: KindNone}

func BoolVal(b bool) Value               { return Value{Kind: KindBool, Bool: b} }
func IntVal(i int64) Value               { return Value{Kind: KindInt, Int: i} }
func FloatVal(f float64) Value           { return Value{Kind: KindFloat, Float: f} }
func TstampVal(t tstamp.Tstamp) Value    { return Value{Kind: KindTstamp, Ts: t} }
func StringVal(s string) Value           { return Value{Kind: KindString, Str: s} }
func PatInstRefVal(p PatInstRef) Value   { return Value{Kind: KindPatInstRef, Pat: p} }

func (v Value) IsNone() bool { return v.Kind == KindNone }

func (v Value) String() string {
	switch v.Kind {
	case KindNone:
		return "None"
	case KindBool:
		return fmt.Sprintf("%v", v.Bool)
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindTstamp:
		return v.Ts.String()
	case KindString:
		return v.Str
	case KindPatInstRef:
		return fmt.Sprintf("(%d,%d)", v.Pat.Pattern, v.Pat.Instance)
	default:
		return "?"
	}
}
