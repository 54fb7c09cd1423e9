package bridge

import "errors"

var (
	// ErrInvalidStateToken indicates a textual state token that does
	// not match the "ON-<level>" / "OFF-<level>" notation.
	ErrInvalidStateToken = errors.New("bridge: invalid state token")

	// ErrUnknownCommand indicates a command name the bridge cannot
	// translate into an instruction.
	ErrUnknownCommand = errors.New("bridge: unknown command")

	// ErrMissingParameter indicates a command payload without a
	// parameter the command requires.
	ErrMissingParameter = errors.New("bridge: missing parameter")

	// ErrNotRunning indicates an operation on a bridge that has not
	// been started.
	ErrNotRunning = errors.New("bridge: not running")
)
