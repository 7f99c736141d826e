package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds  = errors.New("index out of range")
	ErrNoDispatcher = errors.New("no dispatcher")
)
