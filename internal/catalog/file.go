package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/nerrad567/powerline-core/internal/x10"
)

// document is the on-disk JSON shape. Device capability fields are
// pointers so an absent field is distinguishable from an explicit
// false; defaults are resolved at load time.
type document struct {
	Devices map[string]deviceDoc `json:"devices"`
	Scenes  map[string]sceneDoc  `json:"scenes"`
}

type deviceDoc struct {
	AllLightsOn  *bool `json:"allLightsOn,omitempty"`
	AllLightsOff *bool `json:"allLightsOff,omitempty"`
	AllUnitsOff  *bool `json:"allUnitsOff,omitempty"`

	UniversalAllLightsOn  *bool `json:"universalAllLightsOn,omitempty"`
	UniversalAllLightsOff *bool `json:"universalAllLightsOff,omitempty"`
	UniversalAllUnitsOff  *bool `json:"universalAllUnitsOff,omitempty"`

	Dims     *bool `json:"dims,omitempty"`
	Extended *bool `json:"extended,omitempty"`
	Preset   *bool `json:"preset,omitempty"`
}

type sceneDoc struct {
	Members []sceneMemberDoc `json:"members"`
}

type sceneMemberDoc struct {
	Address string `json:"address"`
	Level   int    `json:"level"`
}

// resolve applies the document's field defaults:
//
//   - allLightsOn, allLightsOff, allUnitsOff default true
//   - dims defaults to (allLightsOn AND allLightsOff)
//   - everything else defaults false
func (d deviceDoc) resolve() Device {
	allLightsOn := boolOr(d.AllLightsOn, true)
	allLightsOff := boolOr(d.AllLightsOff, true)
	return Device{
		AllLightsOn:           allLightsOn,
		AllLightsOff:          allLightsOff,
		AllUnitsOff:           boolOr(d.AllUnitsOff, true),
		UniversalAllLightsOn:  boolOr(d.UniversalAllLightsOn, false),
		UniversalAllLightsOff: boolOr(d.UniversalAllLightsOff, false),
		UniversalAllUnitsOff:  boolOr(d.UniversalAllUnitsOff, false),
		Dims:                  boolOr(d.Dims, allLightsOn && allLightsOff),
		Extended:              boolOr(d.Extended, false),
		Preset:                boolOr(d.Preset, false),
	}
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// Load reads a capability document from disk.
//
// An absent file is an empty catalog, not an error: a fresh
// installation has no capability facts yet. Any other read or parse
// failure propagates.
//
// Parameters:
//   - path: Catalog file location
//
// Returns:
//   - *Catalog: Resolved catalog snapshot
//   - error: Wrapped read, parse, or address errors
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a capability document from raw JSON.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	c := New()

	for key, dev := range doc.Devices {
		addr, err := x10.ParseAddress(key)
		if err != nil {
			return nil, fmt.Errorf("%w: device %q: %v", ErrInvalidAddress, key, err)
		}
		c.devices[addr] = dev.resolve()
	}

	for key, scene := range doc.Scenes {
		addr, err := x10.ParseAddress(key)
		if err != nil {
			return nil, fmt.Errorf("%w: scene %q: %v", ErrInvalidAddress, key, err)
		}
		members := make([]SceneMember, 0, len(scene.Members))
		for _, m := range scene.Members {
			memberAddr, err := x10.ParseAddress(m.Address)
			if err != nil {
				return nil, fmt.Errorf("%w: scene %q member %q: %v", ErrInvalidAddress, key, m.Address, err)
			}
			members = append(members, SceneMember{
				Address: memberAddr,
				Level:   x10.ClampLevel(m.Level),
			})
		}
		c.scenes[addr] = Scene{Address: addr, Members: members}
	}

	return c, nil
}

// Save writes the catalog back to disk as a capability document.
// Capability fields are written explicitly so a round-trip survives
// future default changes.
func Save(c *Catalog, path string) error {
	doc := document{
		Devices: make(map[string]deviceDoc, len(c.devices)),
		Scenes:  make(map[string]sceneDoc, len(c.scenes)),
	}

	for addr, d := range c.devices {
		doc.Devices[addr.String()] = deviceDoc{
			AllLightsOn:           ptr(d.AllLightsOn),
			AllLightsOff:          ptr(d.AllLightsOff),
			AllUnitsOff:           ptr(d.AllUnitsOff),
			UniversalAllLightsOn:  ptr(d.UniversalAllLightsOn),
			UniversalAllLightsOff: ptr(d.UniversalAllLightsOff),
			UniversalAllUnitsOff:  ptr(d.UniversalAllUnitsOff),
			Dims:                  ptr(d.Dims),
			Extended:              ptr(d.Extended),
			Preset:                ptr(d.Preset),
		}
	}

	for addr, s := range c.scenes {
		members := make([]sceneMemberDoc, 0, len(s.Members))
		for _, m := range s.Members {
			members = append(members, sceneMemberDoc{Address: m.Address.String(), Level: m.Level})
		}
		// Member order is part of the scene definition; keep it as is.
		doc.Scenes[addr.String()] = sceneDoc{Members: members}
	}

	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return fmt.Errorf("catalog: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("catalog: write %s: %w", path, err)
	}
	return nil
}

// SortedDevices returns the catalogued addresses ordered by house then
// device number, for stable listings.
func (c *Catalog) SortedDevices() []x10.Address {
	addrs := c.Devices()
	sort.Slice(addrs, func(i, j int) bool {
		if addrs[i].House != addrs[j].House {
			return addrs[i].House < addrs[j].House
		}
		return addrs[i].Device < addrs[j].Device
	})
	return addrs
}

func ptr(b bool) *bool { return &b }
