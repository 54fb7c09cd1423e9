// Package x10 implements the X10 powerline signaling protocol codec.
//
// X10 is a legacy home-automation protocol that signals over mains
// wiring. Every unit is identified by a house code (A-P) and a device
// number (1-16); commands are broadcast to whichever devices were most
// recently addressed on that house.
//
// # Key Responsibilities
//
//   - House code, command code, and device-select nibble tables
//   - Address parsing and formatting ("A5", "P")
//   - The Message sum type (address, command, bright/dim, extended,
//     preset-dim) and its wire framing
//   - Brightness conversions between protocol byte values and 0-100
//     percentages, including the 32-entry preset-dim table
//   - Instruction expansion and outbound queue conflict policy
//
// # Addressing Model
//
// An address message selects one or more devices on a house; the
// commands that follow apply to the whole selection. Whole-house
// broadcast commands (all lights on/off, all units off) bypass
// selection entirely. The stateful interpretation of this model lives
// in the engine package; this package is purely the codec.
//
// # Defensive Decoding
//
// Wire-level input is treated as untrustworthy hardware noise: payloads
// with unexpected lengths degrade to the generic Command variant rather
// than failing, and unknown extended sub-commands are carried opaquely.
// Textual input (addresses, state tokens) is the opposite: it is
// validated strictly and fails closed with ErrInvalidNotation.
//
// # Thread Safety
//
// All types in this package are immutable value types and safe for
// concurrent use.
package x10
