package bus

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Subjects published after successful mutations.
const (
	SubjectTaskCreated    = "taskdeck.tasks.created"
	SubjectTaskCompleted  = "taskdeck.tasks.completed"
	SubjectProjectCreated = "taskdeck.projects.created"
)

// Bus wraps a NATS JetStream connection for publishing domain events.
// A nil Bus is valid and drops every publish, so event delivery stays
// optional for deployments without a broker.
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

// Publish wraps payload in an event envelope and publishes it to subj.
func (b *Bus) Publish(ctx context.Context, subj string, payload map[string]any) error {
	if b == nil {
		return nil
	}
	if subj == "" {
		return errors.New("subject is required")
	}

	envelope := map[string]any{
		"id":          uuid.New().String(),
		"occurred_at": time.Now().UTC(),
		"payload":     payload,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	_, err = b.js.Publish(subj, data, nats.Context(ctx))
	return err
}
