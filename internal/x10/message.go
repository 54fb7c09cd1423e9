package x10

import "fmt"

// MessageKind discriminates the Message variants.
type MessageKind uint8

// Message kinds.
const (
	KindAddress MessageKind = iota
	KindCommand
	KindBright
	KindDim
	KindExtended
	KindPresetDim
)

// String returns the kind name.
func (k MessageKind) String() string {
	switch k {
	case KindAddress:
		return "address"
	case KindCommand:
		return "command"
	case KindBright:
		return "bright"
	case KindDim:
		return "dim"
	case KindExtended:
		return "extended"
	case KindPresetDim:
		return "presetDim"
	default:
		return fmt.Sprintf("MessageKind(%d)", uint8(k))
	}
}

// Message is the closed set of wire-level message variants. It is a
// sealed sum type: the six concrete types in this file are the only
// implementations, so a type switch over them is exhaustive.
//
// A Message carries no house code of its own (except PresetDim, where
// the house nibble encodes the brightness step); the house comes from
// the frame the message travelled in.
type Message interface {
	// Kind identifies the variant.
	Kind() MessageKind

	// RequiresAddress reports whether the message must be preceded by
	// an address message on the wire. True for everything except a
	// whole-house broadcast command.
	RequiresAddress() bool

	// SetsLevelDirectly reports whether the message carries an
	// absolute brightness level (extended set-level and preset-dim do;
	// bright/dim are relative).
	SetsLevelDirectly() bool

	// ImpliedPower returns the on/off power the message implies, if
	// any. Only Command(on/off) and the extended set-level sub-command
	// with a nonzero level imply power.
	ImpliedPower() (on bool, ok bool)

	// ImpliedLevel returns the absolute brightness the message
	// implies, if any.
	ImpliedLevel() (level int, ok bool)

	fmt.Stringer

	sealed()
}

// AddressMessage selects a device on the frame's house. Successive
// address messages accumulate a multi-device selection until a command
// closes it.
type AddressMessage struct {
	Device int
}

// NewAddressMessage creates an address message for device 1-16
// (clamped).
func NewAddressMessage(device int) AddressMessage {
	if device < MinDevice {
		device = MinDevice
	} else if device > MaxDevice {
		device = MaxDevice
	}
	return AddressMessage{Device: device}
}

func (AddressMessage) Kind() MessageKind        { return KindAddress }
func (AddressMessage) RequiresAddress() bool    { return false }
func (AddressMessage) SetsLevelDirectly() bool  { return false }
func (AddressMessage) ImpliedPower() (bool, bool) { return false, false }
func (AddressMessage) ImpliedLevel() (int, bool)  { return 0, false }
func (AddressMessage) sealed()                  {}

func (m AddressMessage) String() string {
	return fmt.Sprintf("Address(%d)", m.Device)
}

// CommandMessage is the generic command variant: any function code with
// no interpreted payload. Bright/dim and extended messages whose
// payloads have unexpected shapes also degrade to this variant.
type CommandMessage struct {
	Code CommandCode
}

func (CommandMessage) Kind() MessageKind       { return KindCommand }
func (CommandMessage) SetsLevelDirectly() bool { return false }
func (CommandMessage) ImpliedLevel() (int, bool) { return 0, false }
func (CommandMessage) sealed()                 {}

func (m CommandMessage) RequiresAddress() bool {
	return !m.Code.IsHouseCommand()
}

func (m CommandMessage) ImpliedPower() (bool, bool) {
	switch m.Code {
	case CmdOn:
		return true, true
	case CmdOff:
		return false, true
	default:
		return false, false
	}
}

func (m CommandMessage) String() string {
	return fmt.Sprintf("Command(%s)", m.Code)
}

// BrightMessage raises brightness by a repeat count of 0-22 steps.
type BrightMessage struct {
	Repeat int
}

// NewBrightMessage creates a bright message with the repeat count
// clamped to 0..22.
func NewBrightMessage(repeat int) BrightMessage {
	return BrightMessage{Repeat: ClampRepeatCount(repeat)}
}

func (BrightMessage) Kind() MessageKind          { return KindBright }
func (BrightMessage) RequiresAddress() bool      { return true }
func (BrightMessage) SetsLevelDirectly() bool    { return false }
func (BrightMessage) ImpliedPower() (bool, bool) { return false, false }
func (BrightMessage) ImpliedLevel() (int, bool)  { return 0, false }
func (BrightMessage) sealed()                    {}

// LevelDelta returns the positive brightness change this message
// implies.
func (m BrightMessage) LevelDelta() int {
	return LevelDeltaFromRepeatCount(m.Repeat)
}

func (m BrightMessage) String() string {
	return fmt.Sprintf("Bright(%d)", m.Repeat)
}

// DimMessage lowers brightness by a repeat count of 0-22 steps.
type DimMessage struct {
	Repeat int
}

// NewDimMessage creates a dim message with the repeat count clamped to
// 0..22.
func NewDimMessage(repeat int) DimMessage {
	return DimMessage{Repeat: ClampRepeatCount(repeat)}
}

func (DimMessage) Kind() MessageKind          { return KindDim }
func (DimMessage) RequiresAddress() bool      { return true }
func (DimMessage) SetsLevelDirectly() bool    { return false }
func (DimMessage) ImpliedPower() (bool, bool) { return false, false }
func (DimMessage) ImpliedLevel() (int, bool)  { return 0, false }
func (DimMessage) sealed()                    {}

// LevelDelta returns the negative brightness change this message
// implies.
func (m DimMessage) LevelDelta() int {
	return -LevelDeltaFromRepeatCount(m.Repeat)
}

func (m DimMessage) String() string {
	return fmt.Sprintf("Dim(%d)", m.Repeat)
}

// Extended sub-command markers. Only set-level is interpreted; other
// sub-commands are carried opaquely and ignored by the state engine.
const (
	// ExtSubSetLevel is the extended "set output level" sub-command.
	ExtSubSetLevel byte = 0x31
)

// ExtendedMessage is the 3-byte extended-code variant. Byte layout:
//
//	Data[0]: device-select nibble in the low four bits
//	Data[1]: payload (6-bit level for set-level)
//	Data[2]: sub-command marker
type ExtendedMessage struct {
	Data [3]byte
}

// NewExtendedSetLevel creates an extended set-level message for a
// device and a 0-100 brightness percentage.
func NewExtendedSetLevel(device int, level int) ExtendedMessage {
	return ExtendedMessage{Data: [3]byte{
		DeviceNibble(device),
		LevelForExtendedCode(level),
		ExtSubSetLevel,
	}}
}

func (ExtendedMessage) Kind() MessageKind { return KindExtended }

// RequiresAddress is true even though the wire spec says an extended
// frame is self-addressing: real modules misbehave when the address
// message is omitted, so it is always sent. Deliberate deviation.
func (ExtendedMessage) RequiresAddress() bool { return true }

func (ExtendedMessage) sealed() {}

func (m ExtendedMessage) SetsLevelDirectly() bool {
	return m.IsSetLevel()
}

// IsSetLevel reports whether this is the set-level sub-command.
func (m ExtendedMessage) IsSetLevel() bool {
	return m.Data[2] == ExtSubSetLevel
}

// TargetDevice returns the device number encoded in the low nibble of
// the first payload byte.
func (m ExtendedMessage) TargetDevice() int {
	device, _ := DeviceFromNibble(m.Data[0] & 0x0F)
	return device
}

func (m ExtendedMessage) ImpliedPower() (bool, bool) {
	if m.IsSetLevel() && m.Data[1]&0x3F != 0 {
		return true, true
	}
	return false, false
}

func (m ExtendedMessage) ImpliedLevel() (int, bool) {
	if !m.IsSetLevel() {
		return 0, false
	}
	return LevelFromExtendedCode(m.Data[1]), true
}

func (m ExtendedMessage) String() string {
	return fmt.Sprintf("Extended(%02X %02X %02X)", m.Data[0], m.Data[1], m.Data[2])
}

// PresetDimMessage selects one of the 32 fixed brightness steps. The
// house code here is the level encoding from the preset-dim table, not
// an addressing house.
type PresetDimMessage struct {
	House HouseCode
	Code  CommandCode
}

// PresetDimForLevel constructs the preset-dim message whose table entry
// best matches a requested 0-100 level (ceiling match).
func PresetDimForLevel(level int) PresetDimMessage {
	entry := presetDimTable[LevelToPresetDimIndex(level)]
	return PresetDimMessage{House: entry.House, Code: entry.Command}
}

func (PresetDimMessage) Kind() MessageKind          { return KindPresetDim }
func (PresetDimMessage) RequiresAddress() bool      { return true }
func (PresetDimMessage) SetsLevelDirectly() bool    { return true }
func (PresetDimMessage) ImpliedPower() (bool, bool) { return false, false }
func (PresetDimMessage) sealed()                    {}

// Level returns the table brightness this message selects.
func (m PresetDimMessage) Level() int {
	level, _ := PresetDimLevel(m.House, m.Code)
	return level
}

func (m PresetDimMessage) ImpliedLevel() (int, bool) {
	return PresetDimLevel(m.House, m.Code)
}

func (m PresetDimMessage) String() string {
	return fmt.Sprintf("PresetDim(%s, %s)", m.House, m.Code)
}

// Encode builds the most specific Message for a decoded
// house/command/payload triple.
//
// Specific shapes:
//   - bright/dim with a 1-byte payload: repeat-count variant
//   - extendedCode with a 3-byte payload: extended variant
//   - presetDim1/presetDim2: preset-dim variant (payload ignored; the
//     house nibble is the payload)
//
// Any other payload shape degrades to the generic Command variant.
// Malformed lengths lose specificity, they never fail: wire input is
// hardware noise, not API input.
func Encode(house HouseCode, command CommandCode, payload []byte) Message {
	switch command {
	case CmdBright:
		if len(payload) == 1 {
			return NewBrightMessage(int(payload[0]))
		}
	case CmdDim:
		if len(payload) == 1 {
			return NewDimMessage(int(payload[0]))
		}
	case CmdExtendedCode:
		if len(payload) == 3 {
			return ExtendedMessage{Data: [3]byte{payload[0], payload[1], payload[2]}}
		}
	case CmdPresetDim1, CmdPresetDim2:
		return PresetDimMessage{House: house, Code: command}
	}
	return CommandMessage{Code: command}
}
