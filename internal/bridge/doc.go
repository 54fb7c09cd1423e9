// Package bridge connects the device-state engine to the MQTT message
// bus.
//
// Key Responsibilities:
//   - Subscribe to powerline/command/{address} and translate JSON
//     command payloads into outbound instructions
//   - Publish retained state messages to powerline/state/{address} on
//     every engine state change
//   - Publish whole-house trigger events to powerline/trigger/{label}
//   - Acknowledge each command on powerline/ack/{address} with the
//     transport outcome, correlated by command ID
//
// Command payloads carry a symbolic command name ("on", "off", "dim",
// "bright", "setLevel", "setState", or one of the whole-house
// broadcasts) plus optional level/repeat parameters. Textual state
// tokens use the strict "ON-<level>" / "OFF-<level>" notation; parsing
// fails closed on anything else.
//
// The bridge holds no device state of its own: the engine is the
// single source of truth, and the bridge only translates at the
// boundary.
package bridge
