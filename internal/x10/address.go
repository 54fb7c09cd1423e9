package x10

import (
	"fmt"
	"strconv"
)

// Address identifies either a single device (house + device 1-16) or a
// whole house (device 0).
//
// Addresses are comparable value types: equality and map keying work
// directly on the struct.
//
// Textual form: house letter optionally followed by the device number,
// e.g. "A5" for device 5 on house A, bare "A" for the whole house.
type Address struct {
	House  HouseCode
	Device int
}

// WholeHouse is the device number denoting "every unit on the house".
const WholeHouse = 0

// NewAddress creates a device address.
func NewAddress(house HouseCode, device int) Address {
	return Address{House: house, Device: device}
}

// NewHouseAddress creates a whole-house address.
func NewHouseAddress(house HouseCode) Address {
	return Address{House: house, Device: WholeHouse}
}

// IsHouse returns true if the address targets the whole house.
func (a Address) IsHouse() bool {
	return a.Device == WholeHouse
}

// IsValid returns true if the house code is defined and the device
// number is 0 (whole house) or 1-16.
func (a Address) IsValid() bool {
	return a.House.IsValid() && a.Device >= WholeHouse && a.Device <= MaxDevice
}

// String returns the textual form ("A5", or "A" for a house address).
func (a Address) String() string {
	if a.IsHouse() {
		return a.House.String()
	}
	return fmt.Sprintf("%s%d", a.House, a.Device)
}

// ParseAddress parses a textual address.
//
// Accepted forms:
//   - "A5": house A, device 5
//   - "P16": house P, device 16
//   - "A": whole house A
//
// Parsing is strict and case-sensitive; anything else returns
// ErrInvalidNotation.
//
// Parameters:
//   - s: Textual address
//
// Returns:
//   - Address: Parsed address
//   - error: ErrInvalidNotation if the notation is malformed
func ParseAddress(s string) (Address, error) {
	if s == "" {
		return Address{}, fmt.Errorf("%w: empty address", ErrInvalidNotation)
	}

	house, err := ParseHouseCode(s[:1])
	if err != nil {
		return Address{}, err
	}

	if len(s) == 1 {
		return NewHouseAddress(house), nil
	}

	device, err := strconv.Atoi(s[1:])
	if err != nil || device < MinDevice || device > MaxDevice {
		return Address{}, fmt.Errorf("%w: device number must be 1-16, got %q", ErrInvalidNotation, s[1:])
	}

	return NewAddress(house, device), nil
}
