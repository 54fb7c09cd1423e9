package x10

import (
	"math"
	"time"
)

// PresetDimCount is the number of entries in the preset-dim table.
const PresetDimCount = 32

// PresetDimEntry is one row of the fixed preset-dim table. The protocol
// encodes the 32 brightness steps in the house-code nibble of a
// presetDim1/presetDim2 frame: the house carried by the frame selects
// the level, it does not address a house.
type PresetDimEntry struct {
	// House is the house code whose nibble encodes this step.
	House HouseCode

	// Command is CmdPresetDim1 for the lower sixteen steps,
	// CmdPresetDim2 for the upper sixteen.
	Command CommandCode

	// Level is the brightness percentage this step selects.
	Level int

	// Fade is the nominal ramp duration to reach the level. Carried
	// for completeness; the state engine does not consume it.
	Fade time.Duration
}

// presetDimTable holds the 32 steps in ascending level order. Step i
// uses the house code whose protocol nibble equals i mod 16, with
// presetDim1 covering steps 0-15 and presetDim2 steps 16-31. Levels
// follow round(i * 100 / 31): 0, 3, 6, ... 97, 100.
var presetDimTable = buildPresetDimTable()

func buildPresetDimTable() [PresetDimCount]PresetDimEntry {
	var table [PresetDimCount]PresetDimEntry
	for i := range table {
		cmd := CmdPresetDim1
		nibble := byte(i)
		if i >= HouseCount {
			cmd = CmdPresetDim2
			nibble = byte(i - HouseCount)
		}
		house, _ := HouseCodeFromNibble(nibble)
		table[i] = PresetDimEntry{
			House:   house,
			Command: cmd,
			Level:   int(math.Round(float64(i) * MaxLevel / (PresetDimCount - 1))),
			Fade:    time.Duration(i) * 500 * time.Millisecond,
		}
	}
	return table
}

// PresetDimTable returns a copy of the 32-entry preset-dim table in
// ascending level order.
func PresetDimTable() []PresetDimEntry {
	entries := make([]PresetDimEntry, PresetDimCount)
	copy(entries, presetDimTable[:])
	return entries
}

// LevelToPresetDimIndex returns the table index whose level best serves
// a requested 0-100 brightness.
//
// The match is a ceiling match, not nearest: the first entry whose
// level is >= the request wins. Requests at or below 0 map to index 0;
// at or above 100 to the last index. A ceiling match guarantees the
// light never ends up dimmer than asked for.
func LevelToPresetDimIndex(level int) int {
	if level <= 0 {
		return 0
	}
	if level >= MaxLevel {
		return PresetDimCount - 1
	}
	for i, entry := range presetDimTable {
		if entry.Level >= level {
			return i
		}
	}
	return PresetDimCount - 1
}

// PresetDimLevel resolves the brightness percentage selected by a
// (house, presetDim1|presetDim2) pair.
//
// Returns:
//   - int: The table level for this pair
//   - bool: False if the command is not a preset-dim command
func PresetDimLevel(house HouseCode, cmd CommandCode) (int, bool) {
	if !house.IsValid() {
		return 0, false
	}
	index := int(house.Nibble())
	switch cmd {
	case CmdPresetDim1:
		// index in 0-15 as is
	case CmdPresetDim2:
		index += HouseCount
	default:
		return 0, false
	}
	return presetDimTable[index].Level, true
}
