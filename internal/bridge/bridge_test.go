package bridge

import (
	"encoding/json"
	"testing"

	"github.com/nerrad567/powerline-core/internal/catalog"
	"github.com/nerrad567/powerline-core/internal/engine"
	"github.com/nerrad567/powerline-core/internal/infrastructure/logging"
	"github.com/nerrad567/powerline-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/powerline-core/internal/x10"
)

type published struct {
	topic    string
	payload  []byte
	retained bool
}

// fakeClient records publishes and captures the command handler.
type fakeClient struct {
	published    []published
	handler      mqtt.MessageHandler
	subscribed   string
	unsubscribed string
}

func (f *fakeClient) Publish(topic string, payload []byte, qos byte, retained bool) error {
	f.published = append(f.published, published{topic: topic, payload: payload, retained: retained})
	return nil
}

func (f *fakeClient) PublishRetained(topic string, payload []byte) error {
	return f.Publish(topic, payload, 1, true)
}

func (f *fakeClient) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	f.subscribed = topic
	f.handler = handler
	return nil
}

func (f *fakeClient) Unsubscribe(topic string) error {
	f.unsubscribed = topic
	return nil
}

func (f *fakeClient) onTopic(topic string) []published {
	var out []published
	for _, p := range f.published {
		if p.topic == topic {
			out = append(out, p)
		}
	}
	return out
}

// fakeTransport lets the test decide each send's outcome.
type fakeTransport struct {
	sent        []x10.Instruction
	completions []func(engine.SendStatus)
}

func (f *fakeTransport) Send(instr x10.Instruction, completion func(engine.SendStatus)) {
	f.sent = append(f.sent, instr)
	f.completions = append(f.completions, completion)
}

func (f *fakeTransport) completeNext(status engine.SendStatus) {
	c := f.completions[0]
	f.completions = f.completions[1:]
	c(status)
}

func testBridge(t *testing.T) (*Bridge, *fakeClient, *fakeTransport) {
	t.Helper()

	cat := catalog.New()
	cat.SetDevice(x10.NewAddress(x10.HouseA, 5), catalog.Device{
		AllLightsOn:  true,
		AllLightsOff: true,
		AllUnitsOff:  true,
		Dims:         true,
		Extended:     true,
	})
	cat.SetDevice(x10.NewAddress(x10.HouseA, 6), catalog.Device{
		AllUnitsOff: true,
	})
	cat.SetDevice(x10.NewAddress(x10.HouseB, 1), catalog.Device{
		AllLightsOn:  true,
		AllLightsOff: true,
		AllUnitsOff:  true,
		Dims:         true,
	})

	transport := &fakeTransport{}
	eng := engine.New(cat, transport, logging.Default())

	client := &fakeClient{}
	b, err := New(Options{
		Engine:       eng,
		Client:       client,
		Capabilities: cat,
		Logger:       logging.Default(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := b.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if client.subscribed != "powerline/command/+" {
		t.Fatalf("subscribed to %q, want powerline/command/+", client.subscribed)
	}
	return b, client, transport
}

func sendCommand(t *testing.T, client *fakeClient, address string, cmd CommandMessage) {
	t.Helper()
	payload, err := json.Marshal(cmd)
	if err != nil {
		t.Fatalf("marshal command: %v", err)
	}
	if err := client.handler("powerline/command/"+address, payload); err != nil {
		t.Fatalf("handler: %v", err)
	}
}

func decodeAcks(t *testing.T, client *fakeClient, address string) []AckMessage {
	t.Helper()
	var acks []AckMessage
	for _, p := range client.onTopic("powerline/ack/" + address) {
		var ack AckMessage
		if err := json.Unmarshal(p.payload, &ack); err != nil {
			t.Fatalf("unmarshal ack: %v", err)
		}
		acks = append(acks, ack)
	}
	return acks
}

func TestCommandOnAcksAndPublishesState(t *testing.T) {
	_, client, transport := testBridge(t)

	sendCommand(t, client, "A5", CommandMessage{ID: "cmd-1", Command: CommandOn})

	acks := decodeAcks(t, client, "A5")
	if len(acks) != 1 || acks[0].Status != AckQueued || acks[0].CommandID != "cmd-1" {
		t.Fatalf("acks after queueing = %+v, want one queued ack for cmd-1", acks)
	}

	transport.completeNext(engine.SendSuccess)

	acks = decodeAcks(t, client, "A5")
	if len(acks) != 2 || acks[1].Status != AckSent {
		t.Fatalf("acks after success = %+v, want queued then sent", acks)
	}

	states := client.onTopic("powerline/state/A5")
	if len(states) != 1 {
		t.Fatalf("got %d state publishes, want 1", len(states))
	}
	if !states[0].retained {
		t.Error("state publishes must be retained")
	}
	var st StateMessage
	if err := json.Unmarshal(states[0].payload, &st); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if st.State != "ON-100" || !st.On {
		t.Errorf("state = %+v, want ON-100", st)
	}
	if st.Level == nil || *st.Level != 100 {
		t.Errorf("level = %v, want 100 for a dimable device", st.Level)
	}
}

func TestFailedSendAcksWithoutState(t *testing.T) {
	_, client, transport := testBridge(t)

	sendCommand(t, client, "A5", CommandMessage{ID: "cmd-2", Command: CommandOn})
	transport.completeNext(engine.SendTimedOut)

	acks := decodeAcks(t, client, "A5")
	if len(acks) != 2 || acks[1].Status != AckFailed || acks[1].Reason != "timedOut" {
		t.Fatalf("acks = %+v, want terminal failed/timedOut", acks)
	}
	if states := client.onTopic("powerline/state/A5"); len(states) != 0 {
		t.Errorf("failed send published %d state messages, want 0", len(states))
	}
}

func TestMalformedPayloadAcksFailed(t *testing.T) {
	_, client, _ := testBridge(t)

	if err := client.handler("powerline/command/A5", []byte("{not json")); err != nil {
		t.Fatalf("handler: %v", err)
	}

	acks := decodeAcks(t, client, "A5")
	if len(acks) != 1 || acks[0].Status != AckFailed {
		t.Fatalf("acks = %+v, want one failed ack", acks)
	}
}

func TestUnknownCommandAcksFailed(t *testing.T) {
	_, client, transport := testBridge(t)

	sendCommand(t, client, "A5", CommandMessage{ID: "cmd-3", Command: "sparkle"})

	acks := decodeAcks(t, client, "A5")
	if len(acks) != 1 || acks[0].Status != AckFailed {
		t.Fatalf("acks = %+v, want one failed ack", acks)
	}
	if len(transport.sent) != 0 {
		t.Errorf("unknown command reached the transport: %v", transport.sent)
	}
}

func TestSetLevelPicksWireForm(t *testing.T) {
	_, client, transport := testBridge(t)
	level := 50

	// A5 understands extended codes.
	sendCommand(t, client, "A5", CommandMessage{ID: "lvl-1", Command: CommandSetLevel, Level: &level})
	if len(transport.sent) != 1 {
		t.Fatalf("transport got %d sends, want 1", len(transport.sent))
	}
	ext, ok := transport.sent[0].Message.(x10.ExtendedMessage)
	if !ok || !ext.IsSetLevel() {
		t.Fatalf("sent message = %v, want extended set-level", transport.sent[0].Message)
	}

	// A6 has neither extended nor preset support.
	sendCommand(t, client, "A6", CommandMessage{ID: "lvl-2", Command: CommandSetLevel, Level: &level})
	acks := decodeAcks(t, client, "A6")
	if len(acks) != 1 || acks[0].Status != AckFailed {
		t.Fatalf("acks for non-level device = %+v, want failed", acks)
	}
}

func TestSetLevelMissingParameter(t *testing.T) {
	_, client, _ := testBridge(t)

	sendCommand(t, client, "A5", CommandMessage{ID: "lvl-3", Command: CommandSetLevel})

	acks := decodeAcks(t, client, "A5")
	if len(acks) != 1 || acks[0].Status != AckFailed {
		t.Fatalf("acks = %+v, want failed for missing level", acks)
	}
}

func TestSetStateOffBecomesOff(t *testing.T) {
	_, client, transport := testBridge(t)

	sendCommand(t, client, "A5", CommandMessage{ID: "st-1", Command: CommandSetState, State: "OFF-0"})

	if len(transport.sent) != 1 {
		t.Fatalf("transport got %d sends, want 1", len(transport.sent))
	}
	cmd, ok := transport.sent[0].Message.(x10.CommandMessage)
	if !ok || cmd.Code != x10.CmdOff {
		t.Fatalf("sent message = %v, want off command", transport.sent[0].Message)
	}
}

func TestSetStateFallsBackToPlainOn(t *testing.T) {
	_, client, transport := testBridge(t)

	// A6 cannot set a level, so ON-75 degrades to a plain on.
	sendCommand(t, client, "A6", CommandMessage{ID: "st-2", Command: CommandSetState, State: "ON-75"})

	if len(transport.sent) != 1 {
		t.Fatalf("transport got %d sends, want 1", len(transport.sent))
	}
	cmd, ok := transport.sent[0].Message.(x10.CommandMessage)
	if !ok || cmd.Code != x10.CmdOn {
		t.Fatalf("sent message = %v, want on command", transport.sent[0].Message)
	}
}

func TestRedundantPowerCommandDropped(t *testing.T) {
	_, client, transport := testBridge(t)
	level := 40

	// First level send goes in flight, second waits in the queue.
	sendCommand(t, client, "A5", CommandMessage{ID: "q-1", Command: CommandSetLevel, Level: &level})
	sendCommand(t, client, "A5", CommandMessage{ID: "q-2", Command: CommandSetLevel, Level: &level})

	// A bare on behind a pending level set is redundant.
	sendCommand(t, client, "A5", CommandMessage{ID: "q-3", Command: CommandOn})

	acks := decodeAcks(t, client, "A5")
	if len(acks) != 3 {
		t.Fatalf("got %d acks, want 3", len(acks))
	}
	last := acks[2]
	if last.CommandID != "q-3" || last.Status != AckDropped {
		t.Fatalf("third ack = %+v, want dropped for q-3", last)
	}
	if len(transport.sent) != 1 {
		t.Errorf("transport got %d sends, want only the in-flight one", len(transport.sent))
	}
}

func TestBroadcastPublishesTrigger(t *testing.T) {
	_, client, transport := testBridge(t)

	sendCommand(t, client, "B", CommandMessage{ID: "bc-1", Command: CommandAllLightsOff})
	transport.completeNext(engine.SendSuccess)

	triggers := client.onTopic("powerline/trigger/B-allLightsOff")
	if len(triggers) != 1 {
		t.Fatalf("got %d trigger publishes, want 1", len(triggers))
	}
	var trig TriggerMessage
	if err := json.Unmarshal(triggers[0].payload, &trig); err != nil {
		t.Fatalf("unmarshal trigger: %v", err)
	}
	if trig.House != "B" || trig.Command != "allLightsOff" || trig.Label != "B-allLightsOff" {
		t.Errorf("trigger = %+v", trig)
	}

	acks := decodeAcks(t, client, "B")
	if len(acks) != 2 || acks[1].Status != AckSent {
		t.Fatalf("acks = %+v, want queued then sent", acks)
	}
}

func TestBareTokenPayload(t *testing.T) {
	_, client, transport := testBridge(t)

	// CLI publishers send the token directly instead of JSON.
	if err := client.handler("powerline/command/A5", []byte("ON-60")); err != nil {
		t.Fatalf("handler: %v", err)
	}

	if len(transport.sent) != 1 {
		t.Fatalf("transport got %d sends, want 1", len(transport.sent))
	}
	ext, ok := transport.sent[0].Message.(x10.ExtendedMessage)
	if !ok || !ext.IsSetLevel() {
		t.Fatalf("sent message = %v, want extended set-level", transport.sent[0].Message)
	}
	transport.completeNext(engine.SendSuccess)

	states := client.onTopic("powerline/state/A5")
	if len(states) != 1 {
		t.Fatalf("got %d state publishes, want 1", len(states))
	}
	var st StateMessage
	if err := json.Unmarshal(states[0].payload, &st); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if st.State != "ON-60" {
		t.Errorf("state = %q, want ON-60", st.State)
	}
}

func TestStopUnsubscribes(t *testing.T) {
	b, client, _ := testBridge(t)

	if err := b.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if client.unsubscribed != "powerline/command/+" {
		t.Errorf("unsubscribed from %q, want powerline/command/+", client.unsubscribed)
	}
	if err := b.Stop(); err != ErrNotRunning {
		t.Errorf("second Stop error = %v, want ErrNotRunning", err)
	}
}
