package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/powerline-core/internal/infrastructure/mqtt"
)

var watchRaw bool

func watchCommand() *cobra.Command {
	cmd := cobra.Command{
		Use:   "watch",
		Short: "Tail state, trigger, and ack traffic until interrupted",
		Args:  cobra.ExactArgs(0),
		RunE:  runWatch,
	}
	cmd.Flags().BoolVar(&watchRaw, "raw", false, "Print raw topic and payload instead of the condensed form")

	return &cmd
}

func runWatch(_ *cobra.Command, _ []string) error {
	client, err := connect()
	if err != nil {
		return err
	}
	defer client.Close()

	topics := mqtt.Topics{}
	err = client.Subscribe(topics.AllTopics(), byte(qos), func(topic string, payload []byte) error {
		printMessage(topic, payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("subscribing: %w", err)
	}

	fmt.Fprintln(os.Stderr, "watching powerline/#, Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-ctx.Done()
	return nil
}

func printMessage(topic string, payload []byte) {
	if watchRaw {
		fmt.Printf("%s %s\n", topic, payload)
		return
	}

	ts := time.Now().Format("15:04:05")
	parts := strings.Split(topic, "/")
	if len(parts) < 3 {
		fmt.Printf("%s  %-10s %s\n", ts, topic, payload)
		return
	}

	category, id := parts[1], strings.Join(parts[2:], "/")
	fmt.Printf("%s  %-7s %-16s %s\n", ts, category, id, payload)
}
