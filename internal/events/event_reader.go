package events

import (
	"context"
	"encoding/json"
	"log/slog"
)

// EventReader binds record lifecycle events to worker handlers. These
// events are the post-commit hook: by the time one arrives, the
// primary-store mutation has already been committed by the publisher.
type EventReader struct {
	bus    Bus
	config *EventConfig
	logger *slog.Logger
}

func NewEventReader(bus Bus, config *EventConfig, logger *slog.Logger) *EventReader {
	return &EventReader{
		bus:    bus,
		config: config,
		logger: logger,
	}
}

const queue = "searchsync-worker"

func (r *EventReader) SubscribeToRecordSaved(handler func(evt RecordSavedEvent) error) error {
	subject := r.config.RecordSaved
	r.logger.Info("Subscribing to RecordSaved events", "subject", subject)

	_, err := r.bus.Subscribe(subject, queue, func(ctx context.Context, payload []byte) error {
		var evt RecordSavedEvent
		if err := r.decode(subject, payload, &evt); err != nil {
			// Ack malformed payloads: retrying can never fix them.
			return nil
		}
		return handler(evt)
	})
	return err
}

func (r *EventReader) SubscribeToRecordDeleted(handler func(evt RecordDeletedEvent) error) error {
	subject := r.config.RecordDeleted
	r.logger.Info("Subscribing to RecordDeleted events", "subject", subject)

	_, err := r.bus.Subscribe(subject, queue, func(ctx context.Context, payload []byte) error {
		var evt RecordDeletedEvent
		if err := r.decode(subject, payload, &evt); err != nil {
			return nil
		}
		return handler(evt)
	})
	return err
}

func (r *EventReader) decode(subject string, payload []byte, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		r.logger.Error("Discarding malformed JSON event", "subject", subject, "error", err)
		return err
	}
	return nil
}
