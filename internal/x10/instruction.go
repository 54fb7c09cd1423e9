package x10

import "fmt"

// Instruction pairs a target address with the message to deliver to
// it. It is the symbolic unit of outbound work: the engine queues
// instructions and the transport sends their expanded message
// sequences.
type Instruction struct {
	Address Address
	Message Message
}

// NewInstruction creates an instruction.
func NewInstruction(addr Address, msg Message) Instruction {
	return Instruction{Address: addr, Message: msg}
}

// Messages expands the instruction into the wire message sequence:
// the message preceded by an address message when one is required.
//
// Whole-house targets never get an address message (there is no device
// to select). Extended messages do get one even though the wire spec
// makes them self-addressing; see ExtendedMessage.RequiresAddress.
func (i Instruction) Messages() []Message {
	if i.Message.RequiresAddress() && !i.Address.IsHouse() {
		return []Message{NewAddressMessage(i.Address.Device), i.Message}
	}
	return []Message{i.Message}
}

// String returns a readable form for logs.
func (i Instruction) String() string {
	return fmt.Sprintf("%s %s", i.Address, i.Message)
}

// QueueStrategy is the conflict policy for an instruction queued
// behind a prior pending instruction.
type QueueStrategy uint8

// Queue strategies.
const (
	// QueueAppend queues the new instruction after the previous one.
	QueueAppend QueueStrategy = iota

	// QueueDrop discards the new instruction.
	QueueDrop

	// QueueReplace removes the previous instruction and queues the new
	// one in its place.
	QueueReplace
)

// String returns the strategy name.
func (s QueueStrategy) String() string {
	switch s {
	case QueueAppend:
		return "append"
	case QueueDrop:
		return "drop"
	case QueueReplace:
		return "replace"
	default:
		return fmt.Sprintf("QueueStrategy(%d)", uint8(s))
	}
}

// StrategyAgainst decides how this instruction queues against the
// immediately preceding pending instruction.
//
// The policy is pairwise and local (it never looks further back) and
// only applies between instructions for the same address:
//
//   - previous sets a level directly, new sets a level directly:
//     Replace. There is no point sending a level the next message
//     immediately overrides.
//   - previous sets a level directly, new is a plain on/off power
//     command: Drop. The level message already implies power, and
//     sending the power command afterwards can reverse the implied
//     state on hardware that treats the two as distinct.
//   - anything else: Append.
func (i Instruction) StrategyAgainst(previous *Instruction) QueueStrategy {
	if previous == nil || previous.Address != i.Address {
		return QueueAppend
	}
	if !previous.Message.SetsLevelDirectly() {
		return QueueAppend
	}
	if i.Message.SetsLevelDirectly() {
		return QueueReplace
	}
	if cmd, ok := i.Message.(CommandMessage); ok {
		if cmd.Code == CmdOn || cmd.Code == CmdOff {
			return QueueDrop
		}
	}
	return QueueAppend
}
