package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nerrad567/powerline-core/internal/bridge"
	"github.com/nerrad567/powerline-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/powerline-core/internal/x10"
)

var (
	sendLevel   int
	sendRepeat  int
	sendTimeout time.Duration
	sendNoWait  bool
)

func sendCommand() *cobra.Command {
	cmd := cobra.Command{
		Use:   "send ADDRESS COMMAND",
		Short: "Send a command and wait for the daemon's ack",
		Long: `Send a command to a device or house address.

COMMAND is either a state token ("ON-75", "OFF-0") or a command name
(on, off, dim, bright, setLevel, allUnitsOff, allLightsOn,
allLightsOff). setLevel needs --level; dim and bright accept --repeat.

Examples:
  plcli send A5 ON-75
  plcli send A5 setLevel --level 40
  plcli send B allLightsOff`,
		Args: cobra.ExactArgs(2),
		RunE: runSend,
	}
	cmd.Flags().IntVar(&sendLevel, "level", -1, "Target brightness for setLevel (0-100)")
	cmd.Flags().IntVar(&sendRepeat, "repeat", 0, "Step count for dim/bright (1-22)")
	cmd.Flags().DurationVar(&sendTimeout, "timeout", 5*time.Second, "How long to wait for the terminal ack")
	cmd.Flags().BoolVar(&sendNoWait, "no-wait", false, "Publish and exit without waiting for acks")

	return &cmd
}

func runSend(_ *cobra.Command, args []string) error {
	addr, err := x10.ParseAddress(args[0])
	if err != nil {
		return fmt.Errorf("bad address %q: %w", args[0], err)
	}

	commandID := uuid.New().String()
	payload, err := buildPayload(commandID, args[1])
	if err != nil {
		return err
	}

	client, err := connect()
	if err != nil {
		return err
	}
	defer client.Close()

	topics := mqtt.Topics{}

	acks := make(chan bridge.AckMessage, 4)
	if !sendNoWait {
		err = client.Subscribe(topics.Ack(addr.String()), byte(qos), func(_ string, p []byte) error {
			var ack bridge.AckMessage
			if unmarshalErr := json.Unmarshal(p, &ack); unmarshalErr != nil {
				return unmarshalErr
			}
			if ack.CommandID == commandID {
				acks <- ack
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("subscribing to acks: %w", err)
		}
	}

	if err := client.Publish(topics.Command(addr.String()), payload, byte(qos), false); err != nil {
		return fmt.Errorf("publishing command: %w", err)
	}
	if sendNoWait {
		fmt.Printf("sent %s to %s\n", args[1], addr)
		return nil
	}

	deadline := time.After(sendTimeout)
	for {
		select {
		case ack := <-acks:
			switch ack.Status {
			case bridge.AckQueued:
				fmt.Printf("%s: queued\n", addr)
			case bridge.AckSent:
				fmt.Printf("%s: sent\n", addr)
				return nil
			case bridge.AckDropped:
				fmt.Printf("%s: dropped (redundant against a pending command)\n", addr)
				return nil
			case bridge.AckFailed:
				return fmt.Errorf("%s: failed: %s", addr, ack.Reason)
			default:
				fmt.Printf("%s: %s\n", addr, ack.Status)
			}
		case <-deadline:
			return fmt.Errorf("no terminal ack within %s", sendTimeout)
		}
	}
}

// buildPayload turns the command argument into the bus JSON payload.
// A state token becomes a setState command so the ack still carries
// our correlation ID.
func buildPayload(commandID, command string) ([]byte, error) {
	msg := bridge.CommandMessage{
		ID:      commandID,
		Command: command,
		Source:  "plcli",
	}
	if _, err := bridge.ParseStateToken(command); err == nil {
		msg.Command = bridge.CommandSetState
		msg.State = command
	}
	if sendLevel >= 0 {
		level := sendLevel
		msg.Level = &level
	}
	if sendRepeat > 0 {
		repeat := sendRepeat
		msg.Repeat = &repeat
	}

	return json.Marshal(msg)
}
