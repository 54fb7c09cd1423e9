package engine

import "sort"

// Selection is one house's set of currently-addressed device numbers.
//
// The closed flag models the protocol's framing: an address run
// followed by commands, where the next address run after a command
// starts a fresh group instead of extending the old one.
type Selection struct {
	devices map[int]struct{}
	closed  bool
}

// NewSelection creates an empty, open selection.
func NewSelection() *Selection {
	return &Selection{devices: make(map[int]struct{})}
}

// Select adds a device to the selection. If the selection was closed
// by a command, it is replaced by {device} and reopened.
func (s *Selection) Select(device int) {
	if s.closed {
		s.devices = make(map[int]struct{})
		s.closed = false
	}
	s.devices[device] = struct{}{}
}

// Close marks the selection closed without clearing it: commands keep
// targeting the current group, but the next Select starts a new one.
func (s *Selection) Close() {
	s.closed = true
}

// DeselectAll clears and reopens the selection. Used after whole-house
// broadcasts, which bypass selection entirely.
func (s *Selection) DeselectAll() {
	s.devices = make(map[int]struct{})
	s.closed = false
}

// Contains reports whether a device is currently selected.
func (s *Selection) Contains(device int) bool {
	_, ok := s.devices[device]
	return ok
}

// Devices returns the selected device numbers in ascending order.
func (s *Selection) Devices() []int {
	devices := make([]int, 0, len(s.devices))
	for d := range s.devices {
		devices = append(devices, d)
	}
	sort.Ints(devices)
	return devices
}

// Empty reports whether nothing is selected.
func (s *Selection) Empty() bool {
	return len(s.devices) == 0
}
