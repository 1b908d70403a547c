package expr

import (
	kqterrors "github.com/kunquat/kqsynth/internal/errors"
	"github.com/kunquat/kqsynth/internal/project"
	"github.com/kunquat/kqsynth/internal/tstamp"
)

func callFunction(name string, args []project.Value, rnd Random) (project.Value, error) {
	switch name {
	case "ts":
		return fnTs(args)
	case "rand":
		return fnRand(args, rnd)
	case "pat":
		return fnPat(args)
	default:
		return project.None, typeErr("unknown function " + name)
	}
}

func fnTs(args []project.Value) (project.Value, error) {
	if len(args) != 2 {
		return project.None, typeErr("ts() takes exactly 2 arguments")
	}
	beats, err := asInt(args[0])
	if err != nil {
		return project.None, err
	}
	rem, err := asInt(args[1])
	if err != nil {
		return project.None, err
	}
	return project.TstampVal(tstamp.New(beats, rem)), nil
}

func fnRand(args []project.Value, rnd Random) (project.Value, error) {
	if len(args) != 1 {
		return project.None, typeErr("rand() takes exactly 1 argument")
	}
	if rnd == nil {
		return project.None, typeErr("rand() requires a random source")
	}
	max := toFloat(args[0])
	if !isArith(args[0].Kind) {
		return project.None, typeErr("rand() requires an arithmetic argument")
	}
	return project.FloatVal(rnd.Float64() * max), nil
}

func fnPat(args []project.Value) (project.Value, error) {
	if len(args) != 2 {
		return project.None, typeErr("pat() takes exactly 2 arguments")
	}
	num, err := asInt(args[0])
	if err != nil {
		return project.None, err
	}
	inst, err := asInt(args[1])
	if err != nil {
		return project.None, err
	}
	return project.PatInstRefVal(project.PatInstRef{Pattern: int16(num), Instance: int16(inst)}), nil
}

func asInt(v project.Value) (int64, error) {
	switch v.Kind {
	case project.KindInt:
		return v.Int, nil
	case project.KindFloat:
		return int64(v.Float), nil
	default:
		return 0, kqterrors.Newf("expected an integer argument").
			Component("expr").Category(kqterrors.CategoryExpr).Build()
	}
}
