package catalog

import (
	"testing"

	"github.com/nerrad567/powerline-core/internal/x10"
)

func TestUnknownAddressQueries(t *testing.T) {
	c := New()
	addr := x10.NewAddress(x10.HouseA, 1)

	if _, ok := c.Device(addr); ok {
		t.Error("empty catalog should not know any device")
	}
	if _, known := c.IsDimable(addr); known {
		t.Error("IsDimable should report unknown for an uncatalogued address")
	}
	if _, known := c.IsExtended(addr); known {
		t.Error("IsExtended should report unknown for an uncatalogued address")
	}
	if _, known := c.IsPresetDimable(addr); known {
		t.Error("IsPresetDimable should report unknown for an uncatalogued address")
	}
	if c.RespondsToCommand(addr, x10.HouseA, x10.CmdAllLightsOff) {
		t.Error("uncatalogued address must never respond to broadcasts")
	}
}

func TestRespondsToCommand(t *testing.T) {
	c := New()
	a1 := x10.NewAddress(x10.HouseA, 1)
	a2 := x10.NewAddress(x10.HouseA, 2)
	b1 := x10.NewAddress(x10.HouseB, 1)

	c.SetDevice(a1, Device{AllLightsOff: true})
	c.SetDevice(a2, Device{})
	c.SetDevice(b1, Device{UniversalAllLightsOff: true})

	tests := []struct {
		name    string
		addr    x10.Address
		house   x10.HouseCode
		command x10.CommandCode
		want    bool
	}{
		{name: "own house flag, own house", addr: a1, house: x10.HouseA, command: x10.CmdAllLightsOff, want: true},
		{name: "own house flag, other house", addr: a1, house: x10.HouseB, command: x10.CmdAllLightsOff, want: false},
		{name: "flag unset", addr: a2, house: x10.HouseA, command: x10.CmdAllLightsOff, want: false},
		{name: "universal flag, other house", addr: b1, house: x10.HouseA, command: x10.CmdAllLightsOff, want: true},
		{name: "universal flag, own house", addr: b1, house: x10.HouseB, command: x10.CmdAllLightsOff, want: true},
		{name: "non-broadcast command", addr: a1, house: x10.HouseA, command: x10.CmdOn, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.RespondsToCommand(tt.addr, tt.house, tt.command); got != tt.want {
				t.Errorf("RespondsToCommand(%v, %v, %v) = %v, want %v", tt.addr, tt.house, tt.command, got, tt.want)
			}
		})
	}
}

func TestCanSetLevel(t *testing.T) {
	c := New()
	ext := x10.NewAddress(x10.HouseA, 1)
	preset := x10.NewAddress(x10.HouseA, 2)
	neither := x10.NewAddress(x10.HouseA, 3)

	c.SetDevice(ext, Device{Extended: true})
	c.SetDevice(preset, Device{Preset: true})
	c.SetDevice(neither, Device{Dims: true})

	for _, tt := range []struct {
		addr x10.Address
		want bool
	}{
		{ext, true}, {preset, true}, {neither, false},
	} {
		got, known := c.CanSetLevel(tt.addr)
		if !known || got != tt.want {
			t.Errorf("CanSetLevel(%v) = %v, %v, want %v, true", tt.addr, got, known, tt.want)
		}
	}
}

func TestSceneLookup(t *testing.T) {
	c := New()
	sceneAddr := x10.NewAddress(x10.HouseD, 16)
	scene := Scene{
		Address: sceneAddr,
		Members: []SceneMember{
			{Address: x10.NewAddress(x10.HouseA, 1), Level: 75},
			{Address: x10.NewAddress(x10.HouseA, 2), Level: 0},
		},
	}
	c.SetScene(scene)

	got, ok := c.Scene(sceneAddr)
	if !ok {
		t.Fatal("scene lookup failed")
	}
	if len(got.Members) != 2 || got.Members[0].Level != 75 {
		t.Errorf("scene members = %+v", got.Members)
	}

	if _, ok := c.Scene(x10.NewAddress(x10.HouseA, 1)); ok {
		t.Error("member address should not itself key a scene")
	}
}
