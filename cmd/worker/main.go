// Command worker consumes notification events from Kafka and forwards each
// one to Grafana Loki. It is the only consumer of the notification topic.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/segmentio/kafka-go"

	"club-control-plane/internal/config"
	"club-control-plane/internal/notify/loki"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	brokers := cfg.KafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("config: KAFKA_BROKERS must be set")
	}
	if cfg.LokiURL == "" {
		log.Fatal("config: LOKI_URL must be set")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: cfg.KafkaGroupID,
		Topic:   cfg.NotifyKafkaTopic,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-stop
		log.Printf("worker: received %s, shutting down", sig)
		cancel()
	}()

	log.Printf("worker: consuming %s from %v", cfg.NotifyKafkaTopic, brokers)
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Printf("worker: read: %v", err)
			continue
		}
		if err := loki.PushNotificationJSON(ctx, cfg.LokiURL, msg.Value); err != nil {
			// Best-effort forwarding: the message is already committed by the
			// group reader, so a Loki failure drops the event.
			log.Printf("worker: loki push: %v", err)
		}
	}
}
