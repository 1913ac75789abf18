package ports

import (
	"context"

	"github.com/samirrijal/rutabus/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishScheduleCreated(ctx context.Context, schedule *domain.TravelSchedule) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeScheduleCreated(ctx context.Context, handler func(ctx context.Context, schedule *domain.TravelSchedule) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
