// Command plcli is the operator console for the powerline daemon.
//
// It talks to the daemon over MQTT: "send" publishes a command and
// waits for the ack, "watch" tails the bus traffic, and "devices"
// inspects a catalog file locally.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nerrad567/powerline-core/internal/infrastructure/config"
	"github.com/nerrad567/powerline-core/internal/infrastructure/mqtt"
)

var (
	brokerHost string
	brokerPort int
	clientID   string
	username   string
	password   string
	qos        int
)

func main() {
	cmd := &cobra.Command{
		Use:           "plcli",
		Short:         "Operator console for the powerline daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&brokerHost, "host", "127.0.0.1", "MQTT broker host")
	cmd.PersistentFlags().IntVar(&brokerPort, "port", 1883, "MQTT broker port")
	cmd.PersistentFlags().StringVar(&clientID, "client-id", "plcli", "MQTT client ID")
	cmd.PersistentFlags().StringVar(&username, "username", "", "MQTT username")
	cmd.PersistentFlags().StringVar(&password, "password", "", "MQTT password")
	cmd.PersistentFlags().IntVar(&qos, "qos", 1, "MQTT QoS (0-2)")

	cmd.AddCommand(sendCommand())
	cmd.AddCommand(watchCommand())
	cmd.AddCommand(devicesCommand())

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// connect opens an MQTT session from the shared flags.
func connect() (*mqtt.Client, error) {
	cfg := config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     brokerHost,
			Port:     brokerPort,
			ClientID: clientID,
		},
		Auth: config.MQTTAuthConfig{
			Username: username,
			Password: password,
		},
		QoS: qos,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}

	client, err := mqtt.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s:%d: %w", brokerHost, brokerPort, err)
	}
	return client, nil
}
