package bridge

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/powerline-core/internal/engine"
	"github.com/nerrad567/powerline-core/internal/infrastructure/logging"
	"github.com/nerrad567/powerline-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/powerline-core/internal/x10"
)

// ackQoS is the QoS for command acks. At-least-once: an ack a client
// misses cannot be reconstructed.
const ackQoS byte = 1

// MQTTClient is the bus surface the bridge needs. Satisfied by
// *mqtt.Client; kept narrow so tests can fake it.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	PublishRetained(topic string, payload []byte) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// Capabilities is the catalog surface consulted when translating a
// setLevel or setState command into the wire form the target device
// understands. Satisfied by *catalog.Catalog.
type Capabilities interface {
	IsDimable(addr x10.Address) (bool, bool)
	IsExtended(addr x10.Address) (bool, bool)
	IsPresetDimable(addr x10.Address) (bool, bool)
}

// Options holds the bridge's collaborators.
type Options struct {
	// Engine queues outbound instructions and emits state events.
	Engine *engine.Engine

	// Client is the connected MQTT client.
	Client MQTTClient

	// Capabilities resolves per-device wire forms for level commands.
	Capabilities Capabilities

	// Source tags state events caused by bus commands. Defaults to
	// "mqtt".
	Source string

	// Logger is optional; nil falls back to the default logger.
	Logger *logging.Logger
}

// Bridge translates between the MQTT bus and the device-state engine.
//
// Inbound: JSON commands on powerline/command/{address} become queued
// instructions, acknowledged on powerline/ack/{address}. Outbound:
// engine state changes are retained on powerline/state/{address} and
// whole-house broadcasts published on powerline/trigger/{label}.
//
// Message handling needs no lock of its own; the engine serializes
// dispatch and the MQTT client serializes handler invocations.
type Bridge struct {
	engine *engine.Engine
	client MQTTClient
	caps   Capabilities
	source string
	logger *logging.Logger
	topics mqtt.Topics

	mu      sync.Mutex
	running bool
}

// New creates a bridge. It does not touch the bus until Start.
func New(opts Options) (*Bridge, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("bridge: engine is required")
	}
	if opts.Client == nil {
		return nil, fmt.Errorf("bridge: mqtt client is required")
	}
	if opts.Capabilities == nil {
		return nil, fmt.Errorf("bridge: capabilities are required")
	}

	source := opts.Source
	if source == "" {
		source = "mqtt"
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Bridge{
		engine: opts.Engine,
		client: opts.Client,
		caps:   opts.Capabilities,
		source: source,
		logger: logger.With("component", "bridge"),
	}, nil
}

// Start subscribes to the command topics and registers the engine
// observers that publish state and trigger events.
//
// Observers registered with the engine cannot be removed, so Start
// must not be called twice on the same engine even after Stop.
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return fmt.Errorf("bridge: already started")
	}

	if err := b.client.Subscribe(b.topics.AllCommands(), 1, b.handleCommandMessage); err != nil {
		return fmt.Errorf("subscribe commands: %w", err)
	}

	b.engine.OnStateChange(b.publishState)
	b.engine.OnTrigger(b.publishTrigger)

	b.running = true
	b.logger.Info("bridge started", "topic", b.topics.AllCommands())
	return nil
}

// Stop unsubscribes from the command topics. Engine observers stay
// registered but publish through the (now idle) client.
func (b *Bridge) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		return ErrNotRunning
	}
	b.running = false
	return b.client.Unsubscribe(b.topics.AllCommands())
}

// handleCommandMessage is the subscription handler for
// powerline/command/+.
func (b *Bridge) handleCommandMessage(topic string, payload []byte) error {
	addrText := topic[strings.LastIndex(topic, "/")+1:]
	addr, err := x10.ParseAddress(addrText)
	if err != nil {
		b.logger.Warn("command for unparseable address", "topic", topic, "error", err)
		return nil
	}

	cmd, err := decodeCommandPayload(payload)
	if err != nil {
		b.logger.Warn("malformed command payload", "topic", topic, "error", err)
		b.publishAck(AckMessage{
			CommandID: "",
			Timestamp: time.Now().UTC(),
			Address:   addr.String(),
			Status:    AckFailed,
			Reason:    err.Error(),
		})
		return nil
	}
	if cmd.ID == "" {
		cmd.ID = uuid.New().String()
	}

	instr, err := b.translate(addr, cmd)
	if err != nil {
		b.logger.Warn("untranslatable command",
			"address", addr.String(),
			"command", cmd.Command,
			"error", err,
		)
		b.publishAck(AckMessage{
			CommandID: cmd.ID,
			Timestamp: time.Now().UTC(),
			Address:   addr.String(),
			Status:    AckFailed,
			Reason:    err.Error(),
		})
		return nil
	}

	source := b.source
	if cmd.Source != "" {
		source = cmd.Source
	}

	strategy := b.engine.SendInstruction(instr, source, func(_ x10.Instruction, status engine.SendStatus) {
		b.publishTerminalAck(cmd.ID, addr, status)
	})

	switch strategy {
	case x10.QueueDrop:
		b.publishAck(AckMessage{
			CommandID: cmd.ID,
			Timestamp: time.Now().UTC(),
			Address:   addr.String(),
			Status:    AckDropped,
		})
	default:
		b.publishAck(AckMessage{
			CommandID: cmd.ID,
			Timestamp: time.Now().UTC(),
			Address:   addr.String(),
			Status:    AckQueued,
		})
	}
	return nil
}

// decodeCommandPayload accepts either a JSON command message or a bare
// state token ("ON-75"), the short form used by CLI publishers.
func decodeCommandPayload(payload []byte) (CommandMessage, error) {
	trimmed := strings.TrimSpace(string(payload))
	if !strings.HasPrefix(trimmed, "{") {
		if _, err := ParseStateToken(trimmed); err != nil {
			return CommandMessage{}, err
		}
		return CommandMessage{Command: CommandSetState, State: trimmed}, nil
	}
	var cmd CommandMessage
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return CommandMessage{}, fmt.Errorf("malformed payload: %w", err)
	}
	return cmd, nil
}

// translate builds the instruction for one command message.
func (b *Bridge) translate(addr x10.Address, cmd CommandMessage) (x10.Instruction, error) {
	switch cmd.Command {
	case CommandOn:
		return x10.NewInstruction(addr, x10.CommandMessage{Code: x10.CmdOn}), nil

	case CommandOff:
		return x10.NewInstruction(addr, x10.CommandMessage{Code: x10.CmdOff}), nil

	case CommandDim:
		return x10.NewInstruction(addr, x10.NewDimMessage(repeatOrDefault(cmd.Repeat))), nil

	case CommandBright:
		return x10.NewInstruction(addr, x10.NewBrightMessage(repeatOrDefault(cmd.Repeat))), nil

	case CommandSetLevel:
		if cmd.Level == nil {
			return x10.Instruction{}, fmt.Errorf("%w: level", ErrMissingParameter)
		}
		return b.levelInstruction(addr, *cmd.Level)

	case CommandSetState:
		if cmd.State == "" {
			return x10.Instruction{}, fmt.Errorf("%w: state", ErrMissingParameter)
		}
		token, err := ParseStateToken(cmd.State)
		if err != nil {
			return x10.Instruction{}, err
		}
		if !token.On {
			return x10.NewInstruction(addr, x10.CommandMessage{Code: x10.CmdOff}), nil
		}
		if instr, err := b.levelInstruction(addr, token.Level); err == nil {
			return instr, nil
		}
		// Level not settable on this device; plain on is the closest
		// the wire can express.
		return x10.NewInstruction(addr, x10.CommandMessage{Code: x10.CmdOn}), nil

	case CommandAllUnitsOff:
		return houseInstruction(addr, x10.CmdAllUnitsOff)

	case CommandAllLightsOn:
		return houseInstruction(addr, x10.CmdAllLightsOn)

	case CommandAllLightsOff:
		return houseInstruction(addr, x10.CmdAllLightsOff)

	default:
		return x10.Instruction{}, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Command)
	}
}

// levelInstruction picks the wire form for a direct level set:
// extended set-level when the device supports extended codes, a preset
// dim otherwise.
func (b *Bridge) levelInstruction(addr x10.Address, level int) (x10.Instruction, error) {
	if addr.IsHouse() {
		return x10.Instruction{}, fmt.Errorf("%w: setLevel needs a device address", ErrUnknownCommand)
	}
	if ext, known := b.caps.IsExtended(addr); known && ext {
		return x10.NewInstruction(addr, x10.NewExtendedSetLevel(addr.Device, level)), nil
	}
	if preset, known := b.caps.IsPresetDimable(addr); known && preset {
		return x10.NewInstruction(addr, x10.PresetDimForLevel(level)), nil
	}
	return x10.Instruction{}, fmt.Errorf("%w: device cannot set a level directly", ErrUnknownCommand)
}

func houseInstruction(addr x10.Address, code x10.CommandCode) (x10.Instruction, error) {
	if !addr.IsHouse() {
		addr = x10.NewHouseAddress(addr.House)
	}
	return x10.NewInstruction(addr, x10.CommandMessage{Code: code}), nil
}

func repeatOrDefault(repeat *int) int {
	if repeat == nil {
		return 1
	}
	return x10.ClampRepeatCount(*repeat)
}

// publishTerminalAck reports a transport outcome for a queued command.
func (b *Bridge) publishTerminalAck(commandID string, addr x10.Address, status engine.SendStatus) {
	ack := AckMessage{
		CommandID: commandID,
		Timestamp: time.Now().UTC(),
		Address:   addr.String(),
	}
	if status == engine.SendSuccess {
		ack.Status = AckSent
	} else {
		ack.Status = AckFailed
		ack.Reason = status.String()
	}
	b.publishAck(ack)
}

func (b *Bridge) publishAck(ack AckMessage) {
	payload, err := json.Marshal(ack)
	if err != nil {
		b.logger.Error("marshal ack", "error", err)
		return
	}
	if err := b.client.Publish(b.topics.Ack(ack.Address), payload, ackQoS, false); err != nil {
		b.logger.Error("publish ack", "address", ack.Address, "error", err)
	}
}

// publishState republishes an engine state change as a retained bus
// message, so late subscribers see the latest known state.
func (b *Bridge) publishState(change engine.StateChange) {
	msg := StateMessage{
		Address:   change.Address.String(),
		Timestamp: time.Now().UTC(),
		State:     change.State.String(),
		On:        change.On,
		Level:     change.Level,
		Source:    change.Source,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		b.logger.Error("marshal state", "error", err)
		return
	}
	if err := b.client.PublishRetained(b.topics.State(msg.Address), payload); err != nil {
		b.logger.Error("publish state", "address", msg.Address, "error", err)
	}
}

func (b *Bridge) publishTrigger(trig engine.Trigger) {
	msg := TriggerMessage{
		Label:     trig.Label,
		House:     trig.House.String(),
		Command:   trig.Command.String(),
		Timestamp: time.Now().UTC(),
		Source:    trig.Source,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		b.logger.Error("marshal trigger", "error", err)
		return
	}
	if err := b.client.Publish(b.topics.Trigger(msg.Label), payload, ackQoS, false); err != nil {
		b.logger.Error("publish trigger", "label", msg.Label, "error", err)
	}
}
