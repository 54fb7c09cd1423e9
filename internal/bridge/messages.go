package bridge

import "time"

// Command names accepted on powerline/command/{address}.
const (
	CommandOn           = "on"
	CommandOff          = "off"
	CommandDim          = "dim"
	CommandBright       = "bright"
	CommandSetLevel     = "setLevel"
	CommandSetState     = "setState"
	CommandAllUnitsOff  = "allUnitsOff"
	CommandAllLightsOn  = "allLightsOn"
	CommandAllLightsOff = "allLightsOff"
)

// CommandMessage is a command received from the bus.
//
// The target address comes from the topic, not the payload. The
// payload carries the command name plus whichever parameter that
// command needs: Level for setLevel, Repeat for dim/bright, State for
// setState.
type CommandMessage struct {
	// ID is a client-supplied correlation ID echoed in the ack. The
	// bridge generates one when absent.
	ID string `json:"id,omitempty"`

	// Command is the symbolic command name.
	Command string `json:"command"`

	// Level is the target brightness for setLevel (0-100).
	Level *int `json:"level,omitempty"`

	// Repeat is the step count for dim/bright (1-22, default 1).
	Repeat *int `json:"repeat,omitempty"`

	// State is the textual state token for setState, e.g. "ON-75".
	State string `json:"state,omitempty"`

	// Source optionally overrides the source tag on resulting state
	// events.
	Source string `json:"source,omitempty"`
}

// Ack statuses.
const (
	// AckQueued means the command was translated and queued for the
	// transceiver.
	AckQueued = "queued"

	// AckSent means the transceiver confirmed delivery to the
	// powerline.
	AckSent = "sent"

	// AckDropped means the queue policy discarded the command as
	// redundant against a pending one. No further ack follows.
	AckDropped = "dropped"

	// AckFailed means translation or transmission failed. Error
	// carries the detail.
	AckFailed = "failed"
)

// AckMessage reports the outcome of one command, published on
// powerline/ack/{address}.
//
// A command that reaches the queue produces two acks: "queued" on
// acceptance, then a terminal "sent", "failed", or (when a later
// command replaces it) "failed" with reason "cancelled".
type AckMessage struct {
	// CommandID correlates with CommandMessage.ID.
	CommandID string `json:"command_id"`

	// Timestamp is when the ack was generated (RFC3339).
	Timestamp time.Time `json:"timestamp"`

	// Address is the target device or house, e.g. "A5" or "A".
	Address string `json:"address"`

	// Status is one of the Ack* constants.
	Status string `json:"status"`

	// Reason carries detail for failed acks, e.g. the transport
	// status name or a parse error.
	Reason string `json:"reason,omitempty"`
}

// StateMessage is the retained device state published on
// powerline/state/{address} after every engine state change.
type StateMessage struct {
	// Address is the device address, e.g. "A5".
	Address string `json:"address"`

	// Timestamp is when the change was observed (RFC3339).
	Timestamp time.Time `json:"timestamp"`

	// State is the textual token, e.g. "ON-75".
	State string `json:"state"`

	// On is the power boolean, duplicated for clients that do not
	// parse tokens.
	On bool `json:"on"`

	// Level is present only for dimable devices.
	Level *int `json:"level,omitempty"`

	// Source tags where the change originated, e.g. "powerline" or
	// "mqtt".
	Source string `json:"source"`
}

// TriggerMessage is a whole-house broadcast event published on
// powerline/trigger/{label}.
type TriggerMessage struct {
	// Label is the composed identifier, e.g. "B-allLightsOff".
	Label string `json:"label"`

	// House is the house letter, e.g. "B".
	House string `json:"house"`

	// Command is the broadcast command name, e.g. "allLightsOff".
	Command string `json:"command"`

	// Timestamp is when the broadcast was observed (RFC3339).
	Timestamp time.Time `json:"timestamp"`

	// Source tags where the broadcast originated.
	Source string `json:"source"`
}
