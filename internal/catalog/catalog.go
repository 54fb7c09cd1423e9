package catalog

import (
	"github.com/nerrad567/powerline-core/internal/x10"
)

// Catalog is an immutable snapshot of device capabilities and scene
// definitions keyed by address.
type Catalog struct {
	devices map[x10.Address]Device
	scenes  map[x10.Address]Scene
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		devices: make(map[x10.Address]Device),
		scenes:  make(map[x10.Address]Scene),
	}
}

// Device returns the capability record for an address.
//
// Returns:
//   - Device: The record, zero-valued when unknown
//   - bool: False when the address has no catalog entry
func (c *Catalog) Device(addr x10.Address) (Device, bool) {
	d, ok := c.devices[addr]
	return d, ok
}

// Devices returns the catalogued addresses in no particular order.
func (c *Catalog) Devices() []x10.Address {
	addrs := make([]x10.Address, 0, len(c.devices))
	for addr := range c.devices {
		addrs = append(addrs, addr)
	}
	return addrs
}

// RespondsToCommand reports whether the address reacts to a
// whole-house broadcast command carried on the given house. Unknown
// addresses never respond: broadcasts must not implicitly affect
// devices the catalog has no record of.
func (c *Catalog) RespondsToCommand(addr x10.Address, house x10.HouseCode, command x10.CommandCode) bool {
	d, ok := c.devices[addr]
	if !ok {
		return false
	}
	return d.RespondsTo(command, addr.House == house)
}

// IsDimable reports whether the address responds to bright/dim ramps.
// The second result is false when the address is unknown.
func (c *Catalog) IsDimable(addr x10.Address) (bool, bool) {
	d, ok := c.devices[addr]
	return d.Dims, ok
}

// IsExtended reports whether the address understands the extended
// set-level sub-command. The second result is false when the address
// is unknown.
func (c *Catalog) IsExtended(addr x10.Address) (bool, bool) {
	d, ok := c.devices[addr]
	return d.Extended, ok
}

// IsPresetDimable reports whether the address understands preset-dim
// steps. The second result is false when the address is unknown.
func (c *Catalog) IsPresetDimable(addr x10.Address) (bool, bool) {
	d, ok := c.devices[addr]
	return d.Preset, ok
}

// CanSetLevel reports whether the address accepts any direct
// level-setting command. The second result is false when the address
// is unknown.
func (c *Catalog) CanSetLevel(addr x10.Address) (bool, bool) {
	d, ok := c.devices[addr]
	return d.CanSetLevel(), ok
}

// Scene returns the scene keyed by an address.
//
// Returns:
//   - Scene: The scene, zero-valued when none is defined
//   - bool: False when no scene is keyed by the address
func (c *Catalog) Scene(addr x10.Address) (Scene, bool) {
	s, ok := c.scenes[addr]
	return s, ok
}

// Scenes returns the scene addresses in no particular order.
func (c *Catalog) Scenes() []x10.Address {
	addrs := make([]x10.Address, 0, len(c.scenes))
	for addr := range c.scenes {
		addrs = append(addrs, addr)
	}
	return addrs
}

// SetDevice records a capability entry. Intended for construction and
// tests; a catalog handed to the engine must no longer be mutated.
func (c *Catalog) SetDevice(addr x10.Address, d Device) {
	c.devices[addr] = d
}

// SetScene records a scene definition. Intended for construction and
// tests; a catalog handed to the engine must no longer be mutated.
func (c *Catalog) SetScene(s Scene) {
	c.scenes[s.Address] = s
}
