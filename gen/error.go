package gen

import (
	"go/token"

	"github.com/ardnew/interp/interp"
)

var (
	ErrNestingDepth = interp.NewError("marker calls nested too deeply")
	ErrUnbalanced   = interp.NewError("unbalanced brackets")
	ErrFormat       = interp.NewError("failed to format generated source")
	ErrReadSource   = interp.NewError("failed to read source")
	ErrWriteOutput  = interp.NewError("failed to write output")
	ErrWatch        = interp.NewError("failed to watch")
)

// PositionError locates a generator failure in a source file.
type PositionError struct {
	Pos token.Position
	Err error
}

func (e *PositionError) Error() string {
	return e.Pos.String() + ": " + e.Err.Error()
}

func (e *PositionError) Unwrap() error { return e.Err }
