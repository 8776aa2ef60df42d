package events

import "os"

// RecordSavedEvent is published after a record row has been committed
// to the primary store. The worker re-reads the row and indexes it.
type RecordSavedEvent struct {
	Key string `json:"key"` // record primary key
}

// RecordDeletedEvent is published after a record row has been deleted.
// It carries the key because the row is already gone.
type RecordDeletedEvent struct {
	Key string `json:"key"`
}

type EventConfig struct {
	RecordSaved   string
	RecordDeleted string
}

func NewEventConfig() *EventConfig {
	return &EventConfig{
		RecordSaved:   getenv("EVENT_RECORD_SAVED", "record.saved"),
		RecordDeleted: getenv("EVENT_RECORD_DELETED", "record.deleted"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
