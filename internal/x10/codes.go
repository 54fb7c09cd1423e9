package x10

import "fmt"

// HouseCode identifies one of the sixteen X10 house channels A-P.
//
// The numeric value is the dense index 0-15 (A=0 .. P=15) used to
// array-index per-house state. The protocol nibble transmitted on the
// wire follows a separate fixed encoding table; use Nibble and
// HouseCodeFromNibble to convert.
type HouseCode uint8

// House code constants in letter order.
const (
	HouseA HouseCode = iota
	HouseB
	HouseC
	HouseD
	HouseE
	HouseF
	HouseG
	HouseH
	HouseI
	HouseJ
	HouseK
	HouseL
	HouseM
	HouseN
	HouseO
	HouseP

	// HouseCount is the number of house codes.
	HouseCount = 16
)

// selectNibble is the X10 encoding table shared by house codes and
// device numbers: index 0 ("A" / device 1) through 15 ("P" / device 16).
// The encoding interleaves bits for powerline noise immunity and is
// fixed by the protocol.
var selectNibble = [16]byte{
	0x6, 0xE, 0x2, 0xA, // A-D / 1-4
	0x1, 0x9, 0x5, 0xD, // E-H / 5-8
	0x7, 0xF, 0x3, 0xB, // I-L / 9-12
	0x0, 0x8, 0x4, 0xC, // M-P / 13-16
}

// nibbleToIndex is the inverse of selectNibble.
var nibbleToIndex = [16]uint8{
	0x6: 0, 0xE: 1, 0x2: 2, 0xA: 3,
	0x1: 4, 0x9: 5, 0x5: 6, 0xD: 7,
	0x7: 8, 0xF: 9, 0x3: 10, 0xB: 11,
	0x0: 12, 0x8: 13, 0x4: 14, 0xC: 15,
}

// AllHouseCodes returns the sixteen house codes in letter order.
func AllHouseCodes() []HouseCode {
	codes := make([]HouseCode, HouseCount)
	for i := range codes {
		codes[i] = HouseCode(i)
	}
	return codes
}

// IsValid returns true if the house code is one of the sixteen defined
// values.
func (h HouseCode) IsValid() bool {
	return h < HouseCount
}

// Index returns the dense 0-15 index (A=0 .. P=15).
func (h HouseCode) Index() int {
	return int(h)
}

// Nibble returns the 4-bit protocol encoding of the house code.
func (h HouseCode) Nibble() byte {
	return selectNibble[h&0x0F]
}

// String returns the house letter ("A" .. "P").
func (h HouseCode) String() string {
	if !h.IsValid() {
		return fmt.Sprintf("HouseCode(%d)", uint8(h))
	}
	return string(rune('A' + h))
}

// ParseHouseCode parses a single house letter.
//
// Parameters:
//   - s: One letter "A".."P" (upper case only; notation is case-sensitive)
//
// Returns:
//   - HouseCode: Parsed house code
//   - error: ErrInvalidNotation if s is not a valid house letter
func ParseHouseCode(s string) (HouseCode, error) {
	if len(s) != 1 || s[0] < 'A' || s[0] > 'P' {
		return 0, fmt.Errorf("%w: house code must be A-P, got %q", ErrInvalidNotation, s)
	}
	return HouseCode(s[0] - 'A'), nil
}

// HouseCodeFromNibble recovers a house code from its protocol nibble.
//
// Returns:
//   - HouseCode: Decoded house code
//   - bool: False if the nibble has bits above the low four set
func HouseCodeFromNibble(n byte) (HouseCode, bool) {
	if n > 0x0F {
		return 0, false
	}
	return HouseCode(nibbleToIndex[n]), true
}

// Device number limits.
const (
	// MinDevice is the lowest addressable device number.
	MinDevice = 1

	// MaxDevice is the highest addressable device number.
	MaxDevice = 16
)

// DeviceNibble returns the 4-bit device-select encoding for a device
// number 1-16. Out-of-range numbers are clamped into range first; the
// codec never fails on numeric inputs.
func DeviceNibble(device int) byte {
	if device < MinDevice {
		device = MinDevice
	} else if device > MaxDevice {
		device = MaxDevice
	}
	return selectNibble[device-1]
}

// DeviceFromNibble recovers a 1-16 device number from its protocol
// nibble.
//
// Returns:
//   - int: Decoded device number (1-16)
//   - bool: False if the nibble has bits above the low four set
func DeviceFromNibble(n byte) (int, bool) {
	if n > 0x0F {
		return 0, false
	}
	return int(nibbleToIndex[n]) + 1, true
}

// CommandCode identifies one of the sixteen X10 operations. The numeric
// value is the 4-bit function nibble transmitted on the wire.
type CommandCode uint8

// Command code constants with their protocol nibbles.
const (
	CmdAllUnitsOff     CommandCode = 0x0
	CmdAllLightsOn     CommandCode = 0x1
	CmdOn              CommandCode = 0x2
	CmdOff             CommandCode = 0x3
	CmdDim             CommandCode = 0x4
	CmdBright          CommandCode = 0x5
	CmdAllLightsOff    CommandCode = 0x6
	CmdExtendedCode    CommandCode = 0x7
	CmdHailRequest     CommandCode = 0x8
	CmdHailAcknowledge CommandCode = 0x9
	CmdPresetDim1      CommandCode = 0xA
	CmdPresetDim2      CommandCode = 0xB
	CmdExtendedData    CommandCode = 0xC
	CmdStatusOn        CommandCode = 0xD
	CmdStatusOff       CommandCode = 0xE
	CmdStatusRequest   CommandCode = 0xF
)

// commandNames maps command codes to their canonical camelCase names.
// These names appear in trigger-event labels and logs.
var commandNames = [16]string{
	CmdAllUnitsOff:     "allUnitsOff",
	CmdAllLightsOn:     "allLightsOn",
	CmdOn:              "on",
	CmdOff:             "off",
	CmdDim:             "dim",
	CmdBright:          "bright",
	CmdAllLightsOff:    "allLightsOff",
	CmdExtendedCode:    "extendedCode",
	CmdHailRequest:     "hailRequest",
	CmdHailAcknowledge: "hailAcknowledge",
	CmdPresetDim1:      "presetDim1",
	CmdPresetDim2:      "presetDim2",
	CmdExtendedData:    "extendedData",
	CmdStatusOn:        "statusOn",
	CmdStatusOff:       "statusOff",
	CmdStatusRequest:   "statusRequest",
}

// IsValid returns true if the command code is one of the sixteen
// defined values.
func (c CommandCode) IsValid() bool {
	return c <= CmdStatusRequest
}

// Nibble returns the 4-bit protocol encoding of the command.
func (c CommandCode) Nibble() byte {
	return byte(c) & 0x0F
}

// IsHouseCommand returns true for the three whole-house broadcast
// commands, which address every responding unit on a house without a
// preceding address message.
func (c CommandCode) IsHouseCommand() bool {
	switch c {
	case CmdAllUnitsOff, CmdAllLightsOn, CmdAllLightsOff:
		return true
	default:
		return false
	}
}

// String returns the canonical command name (e.g., "allLightsOff").
func (c CommandCode) String() string {
	if !c.IsValid() {
		return fmt.Sprintf("CommandCode(%d)", uint8(c))
	}
	return commandNames[c]
}

// CommandCodeFromNibble recovers a command code from its protocol
// nibble.
//
// Returns:
//   - CommandCode: Decoded command
//   - bool: False if the nibble has bits above the low four set
func CommandCodeFromNibble(n byte) (CommandCode, bool) {
	if n > 0x0F {
		return 0, false
	}
	return CommandCode(n), true
}
