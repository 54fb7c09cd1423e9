package engine

import (
	"fmt"

	"github.com/nerrad567/powerline-core/internal/x10"
)

// StateChange is emitted once per affected device per dispatch, never
// batched or coalesced.
type StateChange struct {
	// Address is the device whose state changed.
	Address x10.Address

	// State is the full new state.
	State State

	// On is the derived power boolean, duplicated out of State for
	// subscribers that only care about power.
	On bool

	// Level is the new brightness, present only when the catalog says
	// the address is dimable. Level is meaningless for non-dimmable
	// devices and is omitted rather than reported as a constant.
	Level *int

	// Source tags where the triggering message came from, e.g.
	// "powerline" for live wire traffic or "mqtt" for bus commands.
	Source string
}

// Trigger is emitted once per whole-house broadcast command,
// independent of how many devices the broadcast subsequently affects.
type Trigger struct {
	House   x10.HouseCode
	Command x10.CommandCode

	// Label is the composed house-command identifier, e.g.
	// "B-allLightsOff".
	Label string

	Source string
}

// NewTrigger composes a trigger event for a broadcast command.
func NewTrigger(house x10.HouseCode, command x10.CommandCode, source string) Trigger {
	return Trigger{
		House:   house,
		Command: command,
		Label:   fmt.Sprintf("%s-%s", house, command),
		Source:  source,
	}
}

// StateChangeHandler observes state-change events. Handlers run
// synchronously inside dispatch, in registration order.
type StateChangeHandler func(StateChange)

// TriggerHandler observes whole-house trigger events.
type TriggerHandler func(Trigger)
