package engine

import (
	"sort"
	"sync"

	"github.com/nerrad567/powerline-core/internal/catalog"
	"github.com/nerrad567/powerline-core/internal/infrastructure/logging"
	"github.com/nerrad567/powerline-core/internal/x10"
)

// Capabilities is the read-only catalog surface the engine consults
// during dispatch. The per-address queries return a second boolean
// that is false when the address has no catalog entry: unknown is not
// false, and several dispatch rules skip unknown addresses entirely.
//
// Implemented by *catalog.Catalog.
type Capabilities interface {
	RespondsToCommand(addr x10.Address, house x10.HouseCode, command x10.CommandCode) bool
	IsDimable(addr x10.Address) (bool, bool)
	IsExtended(addr x10.Address) (bool, bool)
	IsPresetDimable(addr x10.Address) (bool, bool)
	Scene(addr x10.Address) (catalog.Scene, bool)
}

// Engine tracks last-known device state and the per-house selection
// machinery, and queues outbound instructions.
//
// All mutating entry points are serialized by a single mutex; see the
// package documentation for the concurrency model.
type Engine struct {
	mu sync.Mutex

	caps   Capabilities
	logger *logging.Logger

	// states holds an entry only for addresses some message has
	// touched. Absent means DefaultState, not "device missing".
	states     map[x10.Address]State
	selections [x10.HouseCount]*Selection

	// selectedScene is the most recently addressed target, which may
	// key a scene in the catalog. House-scoped at fan-out time.
	selectedScene *x10.Address

	stateHandlers   []StateChangeHandler
	triggerHandlers []TriggerHandler

	sender *sender
}

// New creates an engine with its collaborators injected. The transport
// may be nil for a receive-only engine; SendInstruction then reports
// ConnectionNotOpen.
func New(caps Capabilities, transport Transport, logger *logging.Logger) *Engine {
	e := &Engine{
		caps:   caps,
		logger: logger,
		states: make(map[x10.Address]State),
	}
	for i := range e.selections {
		e.selections[i] = NewSelection()
	}
	e.sender = newSender(e, transport)
	return e
}

// OnStateChange registers a state-change observer. Not safe to call
// concurrently with dispatch; register before feeding messages.
func (e *Engine) OnStateChange(h StateChangeHandler) {
	e.stateHandlers = append(e.stateHandlers, h)
}

// OnTrigger registers a whole-house trigger observer.
func (e *Engine) OnTrigger(h TriggerHandler) {
	e.triggerHandlers = append(e.triggerHandlers, h)
}

// DeviceState returns the last-known state for an address, or the
// default (off, level 100) when no message has touched it.
func (e *Engine) DeviceState(addr x10.Address) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.states[addr]; ok {
		return s
	}
	return DefaultState()
}

// KnownStates returns a copy of every tracked address and its state.
func (e *Engine) KnownStates() map[x10.Address]State {
	e.mu.Lock()
	defer e.mu.Unlock()
	states := make(map[x10.Address]State, len(e.states))
	for addr, s := range e.states {
		states[addr] = s
	}
	return states
}

// SelectedDevices returns the device numbers currently selected on a
// house, in ascending order.
func (e *Engine) SelectedDevices(house x10.HouseCode) []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selections[house.Index()].Devices()
}

// Restore seeds an address's state without emitting events. Used at
// startup to rehydrate from the state-history store; live traffic
// always goes through Dispatch.
func (e *Engine) Restore(addr x10.Address, state State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.states[addr] = State{On: state.On, Level: x10.ClampLevel(state.Level)}
}

// Dispatch processes one decoded message.
//
// manageSelection is true when the message stream is live traffic that
// should move the current selection, false when reconciling state
// without disturbing which devices are currently addressed (e.g.
// applying a transport-confirmed send that already carried its own
// address message).
//
// Dispatch runs to completion, including observer callbacks, before
// returning. It never fails: unrecognized or non-state-bearing
// messages are no-ops.
func (e *Engine) Dispatch(house x10.HouseCode, msg x10.Message, manageSelection bool, source string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dispatchLocked(house, msg, manageSelection, source)
}

func (e *Engine) dispatchLocked(house x10.HouseCode, msg x10.Message, manageSelection bool, source string) {
	sel := e.selections[house.Index()]

	if m, ok := msg.(x10.AddressMessage); ok {
		if manageSelection {
			sel.Select(m.Device)
			addr := x10.NewAddress(house, m.Device)
			e.selectedScene = &addr
		}
		return
	}

	// Any command closes the current selection group: the next address
	// message starts a fresh one.
	if manageSelection {
		sel.Close()
	}

	switch m := msg.(type) {
	case x10.CommandMessage:
		switch {
		case m.Code.IsHouseCommand():
			e.broadcastLocked(house, m.Code, manageSelection, source)
		case m.Code == x10.CmdOn || m.Code == x10.CmdOff:
			e.powerLocked(house, m.Code == x10.CmdOn, source)
		case m.Code == x10.CmdBright:
			// Bare bright/dim without a repeat payload ramps one step.
			e.rampLocked(house, x10.LevelDeltaFromRepeatCount(1), source)
		case m.Code == x10.CmdDim:
			e.rampLocked(house, -x10.LevelDeltaFromRepeatCount(1), source)
		default:
			// Hail and status codes are observed but mutate nothing.
			e.logger.Debug("command observed without state effect",
				"house", house.String(), "command", m.Code.String(), "source", source)
		}
	case x10.BrightMessage:
		e.rampLocked(house, m.LevelDelta(), source)
	case x10.DimMessage:
		e.rampLocked(house, m.LevelDelta(), source)
	case x10.ExtendedMessage:
		e.extendedLocked(house, m, source)
	case x10.PresetDimMessage:
		e.presetDimLocked(house, m, source)
	}
}

// broadcastLocked handles the three whole-house commands. Broadcasts
// bypass selection: they affect every tracked address whose catalog
// entry responds to this house/command pair, and nothing else.
func (e *Engine) broadcastLocked(house x10.HouseCode, code x10.CommandCode, manageSelection bool, source string) {
	if manageSelection {
		e.selections[house.Index()].DeselectAll()
	}

	e.emitTriggerLocked(NewTrigger(house, code, source))

	on := code == x10.CmdAllLightsOn
	for _, addr := range e.trackedAddressesLocked() {
		if !e.caps.RespondsToCommand(addr, house, code) {
			continue
		}
		cur := e.stateLocked(addr)
		e.setStateLocked(addr, State{On: on, Level: cur.Level}, source)
	}
}

// powerLocked applies an on/off command to the selected devices and
// fans it out to the selected scene's members.
func (e *Engine) powerLocked(house x10.HouseCode, on bool, source string) {
	for _, device := range e.selections[house.Index()].Devices() {
		addr := x10.NewAddress(house, device)
		cur := e.stateLocked(addr)
		e.setStateLocked(addr, State{On: on, Level: cur.Level}, source)
	}

	e.sceneFanOutLocked(house, func(member catalog.SceneMember) (State, bool) {
		level := member.Level
		if level == 0 {
			level = 100
		}
		return State{On: on && member.Level > 0, Level: level}, true
	}, source)
}

// rampLocked applies a relative brightness change to the selected
// devices that dim and are currently on.
func (e *Engine) rampLocked(house x10.HouseCode, delta int, source string) {
	for _, device := range e.selections[house.Index()].Devices() {
		addr := x10.NewAddress(house, device)
		if dims, known := e.caps.IsDimable(addr); !known || !dims {
			continue
		}
		cur := e.stateLocked(addr)
		if !cur.On {
			continue
		}
		e.setStateLocked(addr, State{On: true, Level: x10.ClampLevel(cur.Level + delta)}, source)
	}

	e.sceneFanOutLocked(house, func(member catalog.SceneMember) (State, bool) {
		if dims, known := e.caps.IsDimable(member.Address); !known || !dims {
			return State{}, false
		}
		cur := e.stateLocked(member.Address)
		if !cur.On {
			return State{}, false
		}
		return State{On: true, Level: x10.ClampLevel(cur.Level + delta)}, true
	}, source)
}

// extendedLocked interprets the extended set-level sub-command. Every
// other extended sub-command is deliberately ignored.
func (e *Engine) extendedLocked(house x10.HouseCode, m x10.ExtendedMessage, source string) {
	if !m.IsSetLevel() {
		return
	}

	addr := x10.NewAddress(house, m.TargetDevice())
	if ext, known := e.caps.IsExtended(addr); !known || !ext {
		return
	}

	level, _ := m.ImpliedLevel()
	e.setStateLocked(addr, State{On: true, Level: level}, source)
}

// presetDimLocked applies a preset-dim step to the selected devices
// that understand preset dim. The message's house nibble encodes only
// the level; the selection is the one established on the dispatching
// house by the preceding address messages.
func (e *Engine) presetDimLocked(house x10.HouseCode, m x10.PresetDimMessage, source string) {
	level := m.Level()
	for _, device := range e.selections[house.Index()].Devices() {
		addr := x10.NewAddress(house, device)
		if preset, known := e.caps.IsPresetDimable(addr); !known || !preset {
			continue
		}
		e.setStateLocked(addr, State{On: true, Level: level}, source)
	}
}

// sceneFanOutLocked applies a per-member state derivation to every
// member of the currently selected scene, when that scene's address is
// on the dispatching house. derive returns false to skip a member.
func (e *Engine) sceneFanOutLocked(house x10.HouseCode, derive func(catalog.SceneMember) (State, bool), source string) {
	if e.selectedScene == nil || e.selectedScene.House != house {
		return
	}
	scene, ok := e.caps.Scene(*e.selectedScene)
	if !ok {
		return
	}
	for _, member := range scene.Members {
		if next, apply := derive(member); apply {
			e.setStateLocked(member.Address, next, source)
		}
	}
}

func (e *Engine) stateLocked(addr x10.Address) State {
	if s, ok := e.states[addr]; ok {
		return s
	}
	return DefaultState()
}

// setStateLocked stores the new state and emits a change event. The
// level field is only published for addresses the catalog marks
// dimable.
func (e *Engine) setStateLocked(addr x10.Address, next State, source string) {
	e.states[addr] = next

	change := StateChange{
		Address: addr,
		State:   next,
		On:      next.On,
		Source:  source,
	}
	if dims, known := e.caps.IsDimable(addr); known && dims {
		level := next.Level
		change.Level = &level
	}

	e.logger.Debug("state changed",
		"address", addr.String(), "state", next.String(), "source", source)

	for _, h := range e.stateHandlers {
		h(change)
	}
}

func (e *Engine) emitTriggerLocked(t Trigger) {
	e.logger.Debug("broadcast trigger", "label", t.Label, "source", t.Source)
	for _, h := range e.triggerHandlers {
		h(t)
	}
}

// trackedAddressesLocked returns the tracked addresses ordered by
// house then device, so broadcast event order is deterministic.
func (e *Engine) trackedAddressesLocked() []x10.Address {
	addrs := make([]x10.Address, 0, len(e.states))
	for addr := range e.states {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		if addrs[i].House != addrs[j].House {
			return addrs[i].House < addrs[j].House
		}
		return addrs[i].Device < addrs[j].Device
	})
	return addrs
}
