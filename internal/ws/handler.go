package ws

import (
	"context"
	"encoding/json"

	socketio "github.com/googollee/go-socket.io"
)

// maxCatchUp is the most events replayed to one client; beyond it the
// client is told to refetch everything
const maxCatchUp = 500

// handleRequestEvents replays invalidations the client missed while disconnected
func (h *Hub) handleRequestEvents(s socketio.Conn, data interface{}) {
	var lastEventID int64
	if dataMap, ok := data.(map[string]interface{}); ok {
		if v, ok := dataMap["lastEventId"].(float64); ok {
			lastEventID = int64(v)
		}
	}

	ctx := context.Background()
	latest, err := h.publisher.LatestEventID(ctx)
	if err != nil {
		h.logger.WithError(err).Warn("failed to read latest event id")
		s.Emit("error", map[string]interface{}{"message": "failed to query events"})
		return
	}

	if lastEventID <= 0 {
		s.Emit("invalidate:all", map[string]interface{}{"lastEventId": latest})
		return
	}

	events, err := h.publisher.EventsSince(ctx, lastEventID, maxCatchUp)
	if err != nil || len(events) >= maxCatchUp {
		if err != nil {
			h.logger.WithError(err).Warn("incremental replay failed, falling back to full refresh")
		}
		s.Emit("invalidate:all", map[string]interface{}{"lastEventId": latest})
		return
	}

	for _, event := range events {
		var payload InvalidatePayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			h.logger.WithError(err).Warnf("bad payload on event %d", event.ID)
			continue
		}
		s.Emit(event.EventType, map[string]interface{}{
			"eventId": event.ID,
			"keys":    payload.Keys,
		})
	}
}
