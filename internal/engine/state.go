package engine

import "fmt"

// State is the last-known condition of one address.
//
// The zero value is not the default state: a device first seen by the
// engine starts off at full brightness, so switching it on without an
// explicit level lights it fully. Use DefaultState.
type State struct {
	On    bool
	Level int
}

// DefaultState is the state assumed for an address before any message
// has touched it.
func DefaultState() State {
	return State{On: false, Level: 100}
}

// MatchesSceneLevel reports whether the state conforms to a scene
// member's target level: level 0 means "off", any other level means
// "on at exactly that level".
func (s State) MatchesSceneLevel(level int) bool {
	if level == 0 {
		return !s.On
	}
	return s.On && s.Level == level
}

// String returns the textual state form, e.g. "ON-75".
func (s State) String() string {
	if s.On {
		return fmt.Sprintf("ON-%d", s.Level)
	}
	return fmt.Sprintf("OFF-%d", s.Level)
}
