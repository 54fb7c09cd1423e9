package x10

import "math"

// Brightness conversion constants. These formulas are fixed by the
// behaviour of real transceiver hardware; the rounding direction
// matters for bit-compatibility and must not be changed.
const (
	// MaxRepeatCount is the protocol's maximum meaningful repeat count
	// for bright/dim messages. 22 repeats sweep the full 0-100 range.
	MaxRepeatCount = 22

	// maxExtendedLevel is the largest level byte in an extended
	// set-level payload (6 bits).
	maxExtendedLevel = 63

	// MaxLevel is the top of the percentage brightness scale.
	MaxLevel = 100
)

// ClampRepeatCount clamps a bright/dim repeat count to 0..22.
func ClampRepeatCount(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxRepeatCount {
		return MaxRepeatCount
	}
	return n
}

// ClampLevel clamps a brightness percentage to 0..100.
func ClampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// LevelDeltaFromRepeatCount converts a bright/dim repeat count to the
// brightness change it produces, in percentage points.
//
// delta = round(n * 100 / 22), so 22 repeats is exactly 100 and 0
// repeats is exactly 0.
func LevelDeltaFromRepeatCount(n int) int {
	n = ClampRepeatCount(n)
	return int(math.Round(float64(n) * MaxLevel / MaxRepeatCount))
}

// LevelForExtendedCode converts a 0-100 brightness percentage to the
// 6-bit level byte used by the extended set-level sub-command.
//
// The result is clamped to 1..63: zero is not a valid extended level
// (hardware treats it as "no level"), so even a requested 0% encodes
// as the minimum step.
func LevelForExtendedCode(level int) byte {
	code := int(math.Round(float64(ClampLevel(level)) * maxExtendedLevel / MaxLevel))
	if code < 1 {
		code = 1
	}
	return byte(code)
}

// LevelFromExtendedCode converts a 6-bit extended level byte back to a
// 0-100 brightness percentage.
//
// level = round(code * 100 / 63). Bits above the low six are ignored.
func LevelFromExtendedCode(code byte) int {
	code &= maxExtendedLevel
	return int(math.Round(float64(code) * MaxLevel / maxExtendedLevel))
}
