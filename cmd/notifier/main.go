package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	natsadapter "github.com/samirrijal/rutabus/internal/adapters/nats"
	"github.com/samirrijal/rutabus/internal/core/domain"
	"github.com/samirrijal/rutabus/internal/pkg/config"
	"github.com/samirrijal/rutabus/internal/pkg/logging"
	"github.com/samirrijal/rutabus/internal/pkg/metrics"
)

// The notifier consumes schedule.created events from the durable JetStream
// consumer and fans them out on the plain broadcast subject that the
// WebSocket relays listen on.
func main() {
	cfg, err := config.Load("rutabus-notifier")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("rutabus-notifier", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats publisher: %v", err)
	}
	defer publisher.Close()

	subscriber, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer subscriber.Close()

	err = subscriber.SubscribeScheduleCreated(ctx, func(ctx context.Context, schedule *domain.TravelSchedule) error {
		payload, err := json.Marshal(map[string]interface{}{
			"event":    "schedule.created",
			"schedule": schedule,
		})
		if err != nil {
			return err
		}
		if err := publisher.PublishBroadcast(ctx, payload); err != nil {
			return err
		}

		metrics.ScheduleEventsRelayed.Inc()
		slog.Info("relayed schedule.created",
			"id", schedule.ID,
			"source", schedule.Source.Code,
			"destination", schedule.Destination.Code)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("notifier running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received", "signal", sig.String())
}
