package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds     = errors.New("index out of range")
	ErrEditDeclined    = errors.New("decline edit")
	ErrUnknownCommand  = errors.New("unknown command (try 'help')")
	ErrUsage           = errors.New("usage")
	ErrInvalidName     = errors.New("invalid variable name")
	ErrUnbound         = errors.New("no such variable")
	ErrNotSerializable = errors.New("value cannot be edited")
)
