// Package engine maintains the last-known power and brightness state
// of every powerline device, derived from the message stream.
//
// Key Responsibilities:
//   - Track the per-house selection state machine that mirrors the
//     protocol's addressing quirk: a command applies to whichever
//     devices were most recently addressed
//   - Dispatch each decoded message to the state mutation it implies,
//     consulting the capability catalog
//   - Fan scene commands out to each member at its configured level
//   - Emit one state-change event per affected device per dispatch
//   - Queue outbound instructions and apply their state effects only
//     after the transport confirms the send
//
// Selection Model:
//
// Each of the sixteen houses carries an independent selection: the set
// of device numbers named by address messages since the last command.
// A command closes the selection without clearing it, so the next
// address message starts a fresh group while repeated commands keep
// acting on the same group. Whole-house broadcasts bypass selection
// and clear it.
//
// Thread Safety:
//
// Dispatch is synchronous and single-writer. A single mutex
// serializes all mutating entry points so the engine can be fed from
// the serial read loop, the message-bus bridge, and transport
// completion callbacks without external coordination. Event observers
// run synchronously inside dispatch, in registration order.
package engine
