package bridge

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nerrad567/powerline-core/internal/x10"
)

// StateToken is the textual form of a device state: "ON-75" means
// powered on at 75% brightness, "OFF-50" means powered off with a
// remembered level of 50%. The prefixes are case-sensitive.
type StateToken struct {
	On    bool
	Level int
}

// String renders the token in canonical notation.
func (t StateToken) String() string {
	prefix := "OFF"
	if t.On {
		prefix = "ON"
	}
	return fmt.Sprintf("%s-%d", prefix, x10.ClampLevel(t.Level))
}

// ParseStateToken parses a textual state token. Parsing is strict: the
// prefix must be upper-case "ON" or "OFF", the separator a single
// hyphen, and the level a bare decimal between 0 and 100.
func ParseStateToken(s string) (StateToken, error) {
	prefix, rest, ok := strings.Cut(s, "-")
	if !ok {
		return StateToken{}, fmt.Errorf("%w: %q", ErrInvalidStateToken, s)
	}

	var on bool
	switch prefix {
	case "ON":
		on = true
	case "OFF":
		on = false
	default:
		return StateToken{}, fmt.Errorf("%w: %q", ErrInvalidStateToken, s)
	}

	if rest == "" || len(rest) > 3 {
		return StateToken{}, fmt.Errorf("%w: %q", ErrInvalidStateToken, s)
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return StateToken{}, fmt.Errorf("%w: %q", ErrInvalidStateToken, s)
		}
	}

	level, err := strconv.Atoi(rest)
	if err != nil || level < 0 || level > 100 {
		return StateToken{}, fmt.Errorf("%w: %q", ErrInvalidStateToken, s)
	}

	return StateToken{On: on, Level: level}, nil
}
