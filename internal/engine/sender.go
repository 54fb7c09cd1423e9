package engine

import (
	"sync"

	"github.com/nerrad567/powerline-core/internal/x10"
)

// SendStatus is the terminal result of one transport send. The
// transport reports exactly one status per instruction.
type SendStatus uint8

const (
	SendSuccess SendStatus = iota
	SendConnectionNotOpen
	SendConnectionClosed
	SendCancelled
	SendTimedOut
	SendUnexpectedResponse
	SendWriteFailed
)

// String returns the status name.
func (s SendStatus) String() string {
	switch s {
	case SendSuccess:
		return "success"
	case SendConnectionNotOpen:
		return "connectionNotOpen"
	case SendConnectionClosed:
		return "connectionClosed"
	case SendCancelled:
		return "cancelled"
	case SendTimedOut:
		return "timedOut"
	case SendUnexpectedResponse:
		return "unexpectedResponse"
	case SendWriteFailed:
		return "writeFailed"
	default:
		return "unknown"
	}
}

// Transport delivers an encoded instruction to the powerline and
// reports a terminal status exactly once. Retry and timeout policy
// belong to the transport; the engine only reacts to the outcome.
//
// Implemented by the serial transceiver driver.
type Transport interface {
	Send(instr x10.Instruction, completion func(SendStatus))
}

// SendCallback observes the terminal status of a queued instruction.
type SendCallback func(x10.Instruction, SendStatus)

type pendingSend struct {
	instr  x10.Instruction
	source string
	done   SendCallback
}

// sender serializes outbound instructions: one in flight at a time,
// with the pairwise queue policy applied against the last pending
// entry.
type sender struct {
	engine    *Engine
	transport Transport

	mu       sync.Mutex
	pending  []pendingSend
	inFlight bool
}

func newSender(e *Engine, transport Transport) *sender {
	return &sender{engine: e, transport: transport}
}

// SendInstruction queues an instruction for transmission.
//
// The queue policy runs against the most recently queued (not yet
// sent) instruction: a direct-level instruction replaces a pending
// direct-level one for the same address, and a bare on/off following
// a pending direct-level instruction is dropped as redundant. The
// applied strategy is returned; a dropped instruction's callback is
// never invoked, a replaced instruction's callback receives
// SendCancelled.
//
// The engine's state is updated only when the transport confirms the
// send. Any failure status leaves device state untouched.
//
// Parameters:
//   - instr: Target address and message
//   - source: Source tag carried by the resulting state events
//   - done: Optional terminal-status observer, may be nil
func (e *Engine) SendInstruction(instr x10.Instruction, source string, done SendCallback) x10.QueueStrategy {
	return e.sender.send(instr, source, done)
}

func (s *sender) send(instr x10.Instruction, source string, done SendCallback) x10.QueueStrategy {
	if s.transport == nil {
		if done != nil {
			done(instr, SendConnectionNotOpen)
		}
		return x10.QueueAppend
	}

	s.mu.Lock()

	strategy := x10.QueueAppend
	if n := len(s.pending); n > 0 {
		strategy = instr.StrategyAgainst(&s.pending[n-1].instr)
	}

	switch strategy {
	case x10.QueueDrop:
		s.mu.Unlock()
		s.engine.logger.Debug("outbound instruction dropped as redundant",
			"instruction", instr.String())
		return strategy
	case x10.QueueReplace:
		replaced := s.pending[len(s.pending)-1]
		s.pending[len(s.pending)-1] = pendingSend{instr: instr, source: source, done: done}
		s.mu.Unlock()
		if replaced.done != nil {
			replaced.done(replaced.instr, SendCancelled)
		}
		return strategy
	}

	s.pending = append(s.pending, pendingSend{instr: instr, source: source, done: done})
	start := !s.inFlight
	if start {
		s.inFlight = true
	}
	s.mu.Unlock()

	if start {
		s.sendNext()
	}
	return strategy
}

// sendNext transmits the head of the queue. Runs until the queue
// drains; inFlight stays set for the whole run.
func (s *sender) sendNext() {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.inFlight = false
		s.mu.Unlock()
		return
	}
	head := s.pending[0]
	s.pending = s.pending[1:]
	s.mu.Unlock()

	s.transport.Send(head.instr, func(status SendStatus) {
		s.complete(head, status)
	})
}

// complete handles one terminal status. Only success applies state:
// the engine replays the instruction's expanded messages through the
// same dispatch path used for inbound traffic, so cached state always
// reflects transport-confirmed reality.
func (s *sender) complete(p pendingSend, status SendStatus) {
	if status == SendSuccess {
		s.engine.mu.Lock()
		for _, msg := range p.instr.Messages() {
			s.engine.dispatchLocked(p.instr.Address.House, msg, true, p.source)
		}
		s.engine.mu.Unlock()
	} else {
		s.engine.logger.Warn("outbound send failed, state unchanged",
			"instruction", p.instr.String(), "status", status.String())
	}

	if p.done != nil {
		p.done(p.instr, status)
	}

	s.sendNext()
}
