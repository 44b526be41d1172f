package main

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/egannguyen/go-food-delivery/internal/messaging"
)

var eventsGroup string

var eventsCmd = &cobra.Command{
	Use:   "events [topic...]",
	Short: "Print lifecycle events as they are published",
	Long: `Print lifecycle events from the configured broker, one JSON payload per line.

With no arguments every topic is followed:
  ` + messaging.TopicOrderPlaced + `
  ` + messaging.TopicOrderStatusChanged + `
  ` + messaging.TopicStoreStatusChanged,
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().StringVar(&eventsGroup, "group", "fooddelivery-events", "consumer group (queue group for nats)")
}

func runEvents(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	publisher, subscriber, err := openMessaging(cfg.Messaging, logger)
	if err != nil {
		return fmt.Errorf("failed to open messaging: %w", err)
	}
	defer publisher.Close()
	if subscriber == nil {
		return fmt.Errorf("messaging driver %q cannot be followed", cfg.Messaging.Driver)
	}
	defer subscriber.Close()

	topics := args
	if len(topics) == 0 {
		topics = messaging.Topics()
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	out := cmd.OutOrStdout()
	for _, topic := range topics {
		wg.Add(1)
		go func(topic string) {
			defer wg.Done()
			subscriber.Consume(ctx, topic, eventsGroup, func(ctx context.Context, payload []byte) error {
				mu.Lock()
				defer mu.Unlock()
				_, err := fmt.Fprintf(out, "%s\t%s\n", topic, payload)
				return err
			})
		}(topic)
	}

	wg.Wait()
	return nil
}
