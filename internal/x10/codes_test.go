package x10

import "testing"

func TestHouseCodeNibbleRoundTrip(t *testing.T) {
	seen := make(map[byte]bool)
	for _, h := range AllHouseCodes() {
		nibble := h.Nibble()
		if nibble > 0x0F {
			t.Errorf("house %s: nibble 0x%X exceeds 4 bits", h, nibble)
		}
		if seen[nibble] {
			t.Errorf("house %s: nibble 0x%X already used", h, nibble)
		}
		seen[nibble] = true

		got, ok := HouseCodeFromNibble(nibble)
		if !ok || got != h {
			t.Errorf("HouseCodeFromNibble(0x%X) = %v, %v, want %v, true", nibble, got, ok, h)
		}
	}
}

func TestHouseCodeNibbleTable(t *testing.T) {
	// Spot-check the fixed protocol encoding.
	tests := []struct {
		house HouseCode
		want  byte
	}{
		{HouseA, 0x6},
		{HouseB, 0xE},
		{HouseE, 0x1},
		{HouseM, 0x0},
		{HouseP, 0xC},
	}
	for _, tt := range tests {
		if got := tt.house.Nibble(); got != tt.want {
			t.Errorf("%s.Nibble() = 0x%X, want 0x%X", tt.house, got, tt.want)
		}
	}
}

func TestParseHouseCode(t *testing.T) {
	tests := []struct {
		in      string
		want    HouseCode
		wantErr bool
	}{
		{in: "A", want: HouseA},
		{in: "P", want: HouseP},
		{in: "H", want: HouseH},
		{in: "Q", wantErr: true},
		{in: "a", wantErr: true}, // case-sensitive
		{in: "", wantErr: true},
		{in: "AB", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseHouseCode(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseHouseCode(%q) expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseHouseCode(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHouseCode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDeviceNibbleRoundTrip(t *testing.T) {
	for device := MinDevice; device <= MaxDevice; device++ {
		nibble := DeviceNibble(device)
		got, ok := DeviceFromNibble(nibble)
		if !ok || got != device {
			t.Errorf("DeviceFromNibble(DeviceNibble(%d)) = %d, %v", device, got, ok)
		}
	}

	// Device numbers share the house encoding table: device 1 == house A.
	if DeviceNibble(1) != HouseA.Nibble() {
		t.Errorf("DeviceNibble(1) = 0x%X, want 0x%X", DeviceNibble(1), HouseA.Nibble())
	}
}

func TestDeviceNibbleClamping(t *testing.T) {
	if DeviceNibble(0) != DeviceNibble(1) {
		t.Error("DeviceNibble(0) should clamp to device 1")
	}
	if DeviceNibble(99) != DeviceNibble(16) {
		t.Error("DeviceNibble(99) should clamp to device 16")
	}
}

func TestIsHouseCommand(t *testing.T) {
	houseCommands := map[CommandCode]bool{
		CmdAllUnitsOff:  true,
		CmdAllLightsOn:  true,
		CmdAllLightsOff: true,
	}

	for c := CommandCode(0); c <= CmdStatusRequest; c++ {
		if got := c.IsHouseCommand(); got != houseCommands[c] {
			t.Errorf("%s.IsHouseCommand() = %v, want %v", c, got, houseCommands[c])
		}
	}
}

func TestCommandCodeString(t *testing.T) {
	tests := []struct {
		code CommandCode
		want string
	}{
		{CmdOn, "on"},
		{CmdOff, "off"},
		{CmdAllLightsOff, "allLightsOff"},
		{CmdPresetDim2, "presetDim2"},
		{CmdStatusRequest, "statusRequest"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", uint8(tt.code), got, tt.want)
		}
	}
}
