package nexus

import (
	"errors"
	"fmt"
)

// Errors reported while reading NEXUS input. They are always wrapped in a
// *ParseError, so use errors.Is to test for them.
var (
	ErrMissingNexusTag           = errors.New("missing #NEXUS tag")
	ErrMissingToken              = errors.New("missing token")
	ErrMissingEOS                = errors.New("missing ';'")
	ErrUnexpectedToken           = errors.New("unexpected token")
	ErrInvalidNumber             = errors.New("invalid number")
	ErrInvalidList               = errors.New("invalid list")
	ErrUnterminated              = errors.New("unterminated input")
	ErrTaxaDimensions            = errors.New("number of taxa does not match dimensions")
	ErrDuplicateTranslations     = errors.New("duplicate translations")
	ErrDuplicateTreeNames        = errors.New("duplicate tree names")
	ErrTranslationForUnknownTaxa = errors.New("translation for unknown taxon")
	ErrUnknownTaxon              = errors.New("unknown taxon")
	ErrInvalidTree               = errors.New("invalid tree description")
	ErrMatrixLength              = errors.New("matrix row does not match dimensions")
)

// ParseError describes where and why NEXUS input could not be read.
type ParseError struct {
	Line   int
	Err    error
	Detail string
}

func (e *ParseError) Error() string {
	if len(e.Detail) == 0 {
		return fmt.Sprintf("Error on line %d: %s.", e.Line, e.Err)
	}
	return fmt.Sprintf("Error on line %d: %s: %s", e.Line, e.Err, e.Detail)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func errf(line int, err error, format string, v ...interface{}) error {
	return &ParseError{
		Line:   line,
		Err:    err,
		Detail: fmt.Sprintf(format, v...),
	}
}
