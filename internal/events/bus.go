// Package events carries project change notifications over Redis Pub/Sub so
// that any API replica can stream them to connected clients.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/buildhub-th/procure-backend/internal/logging"
)

const (
	projectChannelPrefix = "procure:events:project:" // procure:events:project:{project_id}

	TypeDocumentApproved = "document.approved"
	TypeProjectDeleted   = "project.deleted"
)

type Event struct {
	Type      string    `json:"type"`
	ProjectID string    `json:"projectId"`
	DocType   string    `json:"docType,omitempty"`
	DocID     string    `json:"docId,omitempty"`
	ActorUID  string    `json:"actorUid,omitempty"`
	At        time.Time `json:"at"`
}

type Bus struct {
	client *redis.Client
}

func NewBus(client *redis.Client) *Bus {
	return &Bus{client: client}
}

// Publish sends ev to the project's channel. Events without a project are
// dropped.
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	if ev.ProjectID == "" {
		return nil
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, projectChannel(ev.ProjectID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe streams events for one project until ctx is done or the returned
// stop function is called.
func (b *Bus) Subscribe(ctx context.Context, projectID string) (<-chan Event, func(), error) {
	sub := b.client.Subscribe(ctx, projectChannel(projectID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan Event)
	done := make(chan struct{})
	go func() {
		defer close(out)
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					logging.FromContext(ctx).Warn("dropping malformed event", zap.String("channel", msg.Channel), zap.Error(err))
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				case <-done:
					return
				}
			}
		}
	}()

	var stopped bool
	stop := func() {
		if stopped {
			return
		}
		stopped = true
		close(done)
		_ = sub.Close()
	}
	return out, stop, nil
}

func projectChannel(projectID string) string {
	return fmt.Sprintf("%s%s", projectChannelPrefix, projectID)
}
