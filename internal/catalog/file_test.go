package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nerrad567/powerline-core/internal/x10"
)

func TestLoadAbsentFileIsEmptyCatalog(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load on absent file: %v", err)
	}
	if len(c.Devices()) != 0 || len(c.Scenes()) != 0 {
		t.Error("absent file should load as an empty catalog")
	}
}

func TestLoadUnreadableDirectory(t *testing.T) {
	// A directory at the path is a real error, not "absent".
	dir := t.TempDir()
	if _, err := Load(dir); err == nil {
		t.Error("loading a directory should fail")
	}
}

func TestParseDefaults(t *testing.T) {
	c, err := Parse([]byte(`{
		"devices": {
			"A1": {},
			"A2": {"allLightsOn": false},
			"A3": {"allLightsOn": false, "allLightsOff": false, "dims": true},
			"A4": {"extended": true, "preset": true, "universalAllUnitsOff": true}
		}
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tests := []struct {
		addr string
		want Device
	}{
		// Empty entry: broadcast flags default true, dims follows.
		{"A1", Device{AllLightsOn: true, AllLightsOff: true, AllUnitsOff: true, Dims: true}},
		// One broadcast flag off: dims default becomes false.
		{"A2", Device{AllLightsOff: true, AllUnitsOff: true}},
		// Explicit dims overrides its derived default.
		{"A3", Device{AllUnitsOff: true, Dims: true}},
		{"A4", Device{
			AllLightsOn: true, AllLightsOff: true, AllUnitsOff: true,
			Dims: true, Extended: true, Preset: true, UniversalAllUnitsOff: true,
		}},
	}

	for _, tt := range tests {
		addr, perr := x10.ParseAddress(tt.addr)
		if perr != nil {
			t.Fatalf("bad test address %q: %v", tt.addr, perr)
		}
		got, ok := c.Device(addr)
		if !ok {
			t.Errorf("device %s missing", tt.addr)
			continue
		}
		if got != tt.want {
			t.Errorf("device %s = %+v, want %+v", tt.addr, got, tt.want)
		}
	}
}

func TestParseScenes(t *testing.T) {
	c, err := Parse([]byte(`{
		"scenes": {
			"D16": {"members": [
				{"address": "A1", "level": 75},
				{"address": "A2", "level": 0},
				{"address": "B3", "level": 140}
			]}
		}
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	scene, ok := c.Scene(x10.NewAddress(x10.HouseD, 16))
	if !ok {
		t.Fatal("scene D16 missing")
	}
	if len(scene.Members) != 3 {
		t.Fatalf("scene has %d members, want 3", len(scene.Members))
	}
	if scene.Members[0].Address != x10.NewAddress(x10.HouseA, 1) || scene.Members[0].Level != 75 {
		t.Errorf("member 0 = %+v", scene.Members[0])
	}
	// Out-of-range member levels clamp rather than fail.
	if scene.Members[2].Level != 100 {
		t.Errorf("member 2 level = %d, want clamped 100", scene.Members[2].Level)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]byte(`{not json`)); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("malformed JSON error = %v, want ErrInvalidDocument", err)
	}
	if _, err := Parse([]byte(`{"devices": {"Z9": {}}}`)); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("bad device key error = %v, want ErrInvalidAddress", err)
	}
	if _, err := Parse([]byte(`{"scenes": {"D16": {"members": [{"address": "A0"}]}}}`)); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("bad member address error = %v, want ErrInvalidAddress", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")

	orig := New()
	orig.SetDevice(x10.NewAddress(x10.HouseA, 1), Device{
		AllLightsOn: true, AllLightsOff: true, AllUnitsOff: true,
		Dims: true, Extended: true,
	})
	orig.SetDevice(x10.NewAddress(x10.HouseB, 2), Device{Preset: true})
	orig.SetScene(Scene{
		Address: x10.NewAddress(x10.HouseD, 16),
		Members: []SceneMember{
			{Address: x10.NewAddress(x10.HouseA, 1), Level: 50},
		},
	})

	if err := Save(orig, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("saved file missing: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, addr := range orig.Devices() {
		want, _ := orig.Device(addr)
		got, ok := loaded.Device(addr)
		if !ok || got != want {
			t.Errorf("device %v = %+v, %v, want %+v", addr, got, ok, want)
		}
	}

	scene, ok := loaded.Scene(x10.NewAddress(x10.HouseD, 16))
	if !ok || len(scene.Members) != 1 || scene.Members[0].Level != 50 {
		t.Errorf("scene round trip = %+v, %v", scene, ok)
	}
}
