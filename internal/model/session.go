package model

import "time"

// Session is a login session bound to a JWT via its id
type Session struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID       string    `gorm:"type:varchar(36);not null;index" json:"userId"`
	IPAddress    *string   `gorm:"type:varchar(64)" json:"ipAddress"`
	UserAgent    *string   `gorm:"type:varchar(255)" json:"userAgent"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	ExpiresAt    time.Time `gorm:"not null;index" json:"expiresAt"`
	LastActiveAt time.Time `gorm:"not null" json:"lastActiveAt"`
}

// TableName specifies the table name for Session model
func (Session) TableName() string {
	return "sessions"
}

// Expired reports whether the session is past its expiry at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
