package model

import (
	"time"

	"gorm.io/datatypes"
)

// Event types
const (
	EventTypeInvalidate = "invalidate"
)

// Event represents a push event stored in the database so that
// reconnecting clients can catch up on what they missed
type Event struct {
	ID        int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Topic     string         `gorm:"column:topic;type:varchar(64);not null;index:idx_topic_id" json:"topic"`
	EventType string         `gorm:"column:event_type;type:varchar(32);not null" json:"eventType"`
	Payload   datatypes.JSON `gorm:"column:payload;type:json;not null" json:"payload"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// TableName specifies the table name for Event
func (Event) TableName() string {
	return "ws_events"
}
