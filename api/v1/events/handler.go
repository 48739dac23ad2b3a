package events

import (
	"context"

	"peo_admin/internal/httpx"
	"peo_admin/internal/model"

	"github.com/gin-gonic/gin"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

// Source reads persisted push events
type Source interface {
	EventsSince(ctx context.Context, after int64, limit int) ([]model.Event, error)
	LatestEventID(ctx context.Context) (int64, error)
}

// ListRequest represents list events request
type ListRequest struct {
	After int64 `form:"after"`
	Limit int   `form:"limit"`
}

// Handler serves missed push events to reconnecting clients
type Handler struct {
	source Source
}

// NewHandler creates a new events handler
func NewHandler(source Source) *Handler {
	return &Handler{source: source}
}

// List handles GET /api/v1/events
func (h *Handler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}
	if req.Limit > maxLimit {
		req.Limit = maxLimit
	}

	ctx := c.Request.Context()
	items, err := h.source.EventsSince(ctx, req.After, req.Limit)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to load events", err))
		return
	}
	latest, err := h.source.LatestEventID(ctx)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to load latest event", err))
		return
	}

	httpx.OK(c, gin.H{
		"items":       items,
		"lastEventId": latest,
		"hasMore":     len(items) == req.Limit,
	})
}
