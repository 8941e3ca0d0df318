package ports

import "context"

// Event is an application event published to the bus for downstream
// consumers (XP grants, notifications).
type Event struct {
	// Type is the detail-type, e.g. "game.completed" or
	// "prediction.resolved".
	Type string
	// Payload marshals to the event detail.
	Payload any
}

// EventPublisher sends application events. Publishing is best-effort:
// callers log failures and continue, the write path never depends on it.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// Cache is a TTL cache for vendor responses.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MetricsRecorder counts operational events (ingestion runs, resolutions).
type MetricsRecorder interface {
	Count(ctx context.Context, name string, value float64, dimensions map[string]string)
}
