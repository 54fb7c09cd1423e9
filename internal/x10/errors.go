package x10

import "errors"

// Domain errors for the x10 protocol package.
var (
	// ErrInvalidNotation is returned when a textual address or state
	// token cannot be parsed. Textual input fails closed: the parser
	// never guesses.
	ErrInvalidNotation = errors.New("x10: invalid notation")

	// ErrInvalidFrame is returned when a wire frame is too short to
	// carry even a house code. Longer-but-malformed frames degrade to
	// less specific messages instead of failing.
	ErrInvalidFrame = errors.New("x10: invalid frame")
)
