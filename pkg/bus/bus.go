package bus

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	// SubjectSyncCompleted carries one event per successful document sync.
	SubjectSyncCompleted = "oresync.sync.completed"
	// SubjectSyncFailed carries one event per failed document sync.
	SubjectSyncFailed = "oresync.sync.failed"
)

// SyncEvent is the payload published after every sync attempt so downstream
// consumers (dashboard, alerting) can react without polling sync_runs.
type SyncEvent struct {
	RunID       string    `json:"run_id"`
	DocType     string    `json:"doc_type"`
	Outcome     string    `json:"outcome"`
	RowsWritten int       `json:"rows_written"`
	RowsSkipped int       `json:"rows_skipped"`
	Error       string    `json:"error,omitempty"`
	At          time.Time `json:"at"`
}

// Bus wraps a NATS JetStream connection for publishing sync lifecycle events.
type Bus struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// New creates a Bus connected to the provided NATS endpoint.
func New(url string, opts ...nats.Option) (*Bus, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}

	return &Bus{conn: nc, js: js}, nil
}

// Close shuts down the underlying NATS connection.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}

// Publish encodes v as JSON and publishes it to the given subject.
// A nil Bus is a no-op so callers without messaging configured need no guard.
func (b *Bus) Publish(ctx context.Context, subj string, v any) error {
	if b == nil {
		return nil
	}
	if subj == "" {
		return errors.New("empty subject")
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	_, err = b.js.Publish(subj, data, nats.Context(ctx))
	return err
}
