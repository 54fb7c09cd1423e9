package catalog

import (
	"github.com/nerrad567/powerline-core/internal/x10"
)

// Device is one address's resolved capability facts. All fields are
// plain booleans; the unknown case is expressed by the address having
// no entry at all, never by a zero-valued Device.
type Device struct {
	// House-scoped broadcast responses: the device reacts to the
	// command only when it arrives on the device's own house.
	AllLightsOn  bool
	AllLightsOff bool
	AllUnitsOff  bool

	// Universal broadcast responses: the device reacts regardless of
	// which house carried the command.
	UniversalAllLightsOn  bool
	UniversalAllLightsOff bool
	UniversalAllUnitsOff  bool

	// Dims reports whether the device responds to bright/dim ramps.
	Dims bool

	// Extended reports whether the device understands the extended
	// set-level sub-command.
	Extended bool

	// Preset reports whether the device understands preset-dim steps.
	Preset bool
}

// RespondsTo reports whether the device reacts to a whole-house
// broadcast command carried on the given house, where own is true when
// that house is the device's own.
func (d Device) RespondsTo(command x10.CommandCode, own bool) bool {
	switch command {
	case x10.CmdAllLightsOn:
		return d.UniversalAllLightsOn || (own && d.AllLightsOn)
	case x10.CmdAllLightsOff:
		return d.UniversalAllLightsOff || (own && d.AllLightsOff)
	case x10.CmdAllUnitsOff:
		return d.UniversalAllUnitsOff || (own && d.AllUnitsOff)
	default:
		return false
	}
}

// CanSetLevel reports whether the device accepts any direct
// level-setting command.
func (d Device) CanSetLevel() bool {
	return d.Extended || d.Preset
}

// SceneMember is one address inside a scene with its target brightness.
// Level 0 means the member is switched off when the scene activates.
type SceneMember struct {
	Address x10.Address
	Level   int
}

// Scene is an ordered list of members jointly driven by commands sent
// to the scene's own address. The scene address need not correspond to
// a physical device.
type Scene struct {
	Address x10.Address
	Members []SceneMember
}
