package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"peo_admin/internal/model"
	"peo_admin/internal/query"
)

// TopicQueries is the topic of query invalidation events
const TopicQueries = "queries"

// InvalidatePayload is stored with every invalidation event
type InvalidatePayload struct {
	Keys []string `json:"keys"`
}

// Publisher persists push events and broadcasts them when a hub is attached
type Publisher struct {
	events *query.Client[model.Event]
	hub    *Hub
	logger *logrus.Entry
}

// NewPublisher creates a publisher writing to db
func NewPublisher(db *gorm.DB, logger *logrus.Entry) *Publisher {
	return &Publisher{
		events: query.MustNew[model.Event](db),
		logger: logger.WithField("component", "ws-publisher"),
	}
}

func (p *Publisher) attach(h *Hub) {
	p.hub = h
}

// PublishInvalidation records an invalidation event and broadcasts it.
// Broadcast failure does not fail the call; clients catch up via EventsSince.
func (p *Publisher) PublishInvalidation(ctx context.Context, keys []string) error {
	payload, err := json.Marshal(InvalidatePayload{Keys: keys})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	event := model.Event{
		Topic:     TopicQueries,
		EventType: model.EventTypeInvalidate,
		Payload:   datatypes.JSON(payload),
	}
	if err := p.events.Create(ctx, &event); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	if p.hub != nil {
		p.hub.BroadcastToAll(model.EventTypeInvalidate, map[string]interface{}{
			"eventId": event.ID,
			"keys":    keys,
		})
	}

	p.logger.WithFields(logrus.Fields{"event_id": event.ID, "keys": keys}).Debug("invalidation published")
	return nil
}

// EventsSince returns events with id > after, oldest first
func (p *Publisher) EventsSince(ctx context.Context, after int64, limit int) ([]model.Event, error) {
	events, err := p.events.FindMany(ctx, query.FindManyArgs{
		Where:   []query.Filter{query.Eq("topic", TopicQueries), query.Where("id", query.Gt, after)},
		OrderBy: []query.Sort{query.Asc("id")},
		Take:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query incremental events: %w", err)
	}
	return events, nil
}

// LatestEventID returns the newest event id, or 0 when there are none
func (p *Publisher) LatestEventID(ctx context.Context) (int64, error) {
	event, err := p.events.FindFirst(ctx, query.FindManyArgs{
		Where:   []query.Filter{query.Eq("topic", TopicQueries)},
		OrderBy: []query.Sort{query.Desc("id")},
	})
	if err != nil {
		if errors.Is(err, query.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to query latest event: %w", err)
	}
	return event.ID, nil
}
