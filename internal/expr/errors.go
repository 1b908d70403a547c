package expr

import kqterrors "github.com/kunquat/kqsynth/internal/errors"

func errBadLiteral(text string) error {
	return kqterrors.Newf("malformed numeric literal %q", text).
		Component("expr").Category(kqterrors.CategoryFormat).Build()
}

func errUnterminatedString() error {
	return kqterrors.Newf("unterminated string literal").
		Component("expr").Category(kqterrors.CategoryFormat).Build()
}

func errUnexpectedChar(r rune) error {
	return kqterrors.Newf("unexpected character %q in expression", r).
		Component("expr").Category(kqterrors.CategoryFormat).Build()
}
