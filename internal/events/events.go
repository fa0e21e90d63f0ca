package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Event names published by the domain services.
const (
	UserRegistered   = "user.registered"
	MentorRegistered = "mentor.registered"
	SchoolRegistered = "school.registered"
	CourseEnrolled   = "course.enrolled"
	ClassEnrolled    = "class.enrolled"
	ClassWaitlisted  = "class.waitlisted"
	PaymentRecorded  = "payment.recorded"
)

// Publisher is the broker-agnostic surface the bus needs. Both backends
// (RabbitMQ, Pub/Sub) satisfy it.
type Publisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// Bus publishes domain events toward the external notification pipeline.
// Delivery is fire-and-forget: a failed publish is logged and dropped,
// never retried, and never fails the request that triggered it.
type Bus struct {
	backend Publisher
	logger  *slog.Logger
}

// NewBus constructs a Bus. A nil backend yields a no-op bus, used when
// events are disabled by config and in tests.
func NewBus(backend Publisher, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{backend: backend, logger: logger}
}

// Emit serializes the payload and publishes it on the channel named
// after the event.
func (b *Bus) Emit(ctx context.Context, name string, payload any) {
	if b == nil || b.backend == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Error("event payload marshal failed", "event", name, "error", err)
		return
	}

	attrs := map[string]string{
		"event":       name,
		"occurred_at": time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := b.backend.Publish(ctx, name, data, attrs); err != nil {
		b.logger.Error("event publish failed", "event", name, "error", err)
	}
}

// Close closes the underlying backend, if any.
func (b *Bus) Close() error {
	if b == nil || b.backend == nil {
		return nil
	}
	return b.backend.Close()
}
