//go:build integration

package mqtt

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/powerline-core/internal/infrastructure/config"
)

// Integration tests for the command/ack flow over a real broker.
// These tests require a running MQTT broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -v ./internal/infrastructure/mqtt/...

func integrationConfig(clientID string) config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: clientID,
			TLS:      false,
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// TestIntegration_CommandAckCorrelation replays the daemon's command
// surface: a responder subscribed to the command wildcard acks each
// command on the per-address ack topic, carrying the sender's id.
func TestIntegration_CommandAckCorrelation(t *testing.T) {
	responder, err := Connect(integrationConfig("powerline-int-responder"))
	if err != nil {
		t.Fatalf("Connect() responder error = %v", err)
	}
	defer responder.Close()

	sender, err := Connect(integrationConfig("powerline-int-sender"))
	if err != nil {
		t.Fatalf("Connect() sender error = %v", err)
	}
	defer sender.Close()

	type ack struct {
		CommandID string `json:"commandId"`
		Status    string `json:"status"`
	}

	err = responder.Subscribe(Topics{}.AllCommands(), 1, func(topic string, payload []byte) error {
		var cmd struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(payload, &cmd); err != nil {
			return err
		}
		addr := topic[strings.LastIndex(topic, "/")+1:]
		out, _ := json.Marshal(ack{CommandID: cmd.ID, Status: "sent"})
		return responder.Publish(Topics{}.Ack(addr), out, 1, false)
	})
	if err != nil {
		t.Fatalf("Subscribe() commands error = %v", err)
	}

	acks := make(chan ack, 1)
	err = sender.Subscribe(Topics{}.Ack("A5"), 1, func(_ string, payload []byte) error {
		var a ack
		if err := json.Unmarshal(payload, &a); err != nil {
			return err
		}
		select {
		case acks <- a:
		default:
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() acks error = %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	const commandID = "int-cmd-42"
	payload := `{"id":"` + commandID + `","command":"on"}`
	if err := sender.PublishString(Topics{}.Command("A5"), payload, 1, false); err != nil {
		t.Fatalf("PublishString() error = %v", err)
	}

	select {
	case got := <-acks:
		if got.CommandID != commandID {
			t.Errorf("ack commandId = %q, want %q", got.CommandID, commandID)
		}
		if got.Status != "sent" {
			t.Errorf("ack status = %q, want sent", got.Status)
		}
	case <-time.After(5 * time.Second):
		t.Error("timeout waiting for ack")
	}
}

// TestIntegration_RetainedStateSurvivesPublisher verifies the retained
// state topic outlives the client that published it, so bus clients
// joining after the daemon see current device state.
func TestIntegration_RetainedStateSurvivesPublisher(t *testing.T) {
	topic := Topics{}.State("C9")

	pub, err := Connect(integrationConfig("powerline-int-state-pub"))
	if err != nil {
		t.Fatalf("Connect() publisher error = %v", err)
	}
	if err := pub.PublishRetained(topic, []byte("OFF-30")); err != nil {
		t.Fatalf("PublishRetained() error = %v", err)
	}
	pub.Close()

	sub, err := Connect(integrationConfig("powerline-int-state-sub"))
	if err != nil {
		t.Fatalf("Connect() subscriber error = %v", err)
	}
	defer sub.Close()

	received := make(chan string, 1)
	err = sub.Subscribe(topic, 1, func(_ string, payload []byte) error {
		select {
		case received <- string(payload):
		default:
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	select {
	case token := <-received:
		if token != "OFF-30" {
			t.Errorf("retained token = %q, want OFF-30", token)
		}
	case <-time.After(5 * time.Second):
		t.Error("timeout waiting for retained state")
	}

	if err := sub.Publish(topic, nil, 1, true); err != nil {
		t.Errorf("clearing retained message: %v", err)
	}
}

// TestIntegration_HandlerErrorLogged verifies a failing message handler
// is reported through the client's logger rather than swallowed.
func TestIntegration_HandlerErrorLogged(t *testing.T) {
	client, err := Connect(integrationConfig("powerline-int-handler-err"))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	logger := &mockLogger{}
	client.SetLogger(logger)

	topic := Topics{}.Command("D3")
	handled := make(chan struct{}, 1)
	err = client.Subscribe(topic, 1, func(string, []byte) error {
		select {
		case handled <- struct{}{}:
		default:
		}
		return errors.New("bad payload")
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if err := client.PublishString(topic, "not-a-command", 1, false); err != nil {
		t.Fatalf("PublishString() error = %v", err)
	}

	select {
	case <-handled:
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not called")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if logger.errorCount() > 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("handler error was not logged")
}

// mockLogger implements the Logger interface for testing.
type mockLogger struct {
	mu     sync.Mutex
	errors []string
	warns  []string
}

func (l *mockLogger) Error(msg string, args ...any) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}

func (l *mockLogger) Warn(msg string, args ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}

func (l *mockLogger) errorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errors)
}
