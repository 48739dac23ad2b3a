package session

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"peo_admin/internal/model"
	"peo_admin/internal/query"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrExpired  = errors.New("session expired")
)

// maxUserAgentLen is the byte width of sessions.user_agent
const maxUserAgentLen = 255

// touchInterval bounds how often last_active_at is written for one session
const touchInterval = time.Minute

// Service manages login sessions
type Service struct {
	sessions *query.Client[model.Session]
	now      func() time.Time
}

// NewService creates a session service
func NewService(db *gorm.DB) *Service {
	return &Service{
		sessions: query.MustNew[model.Session](db),
		now:      time.Now,
	}
}

// Create opens a session for userID that expires at expiresAt
func (s *Service) Create(ctx context.Context, userID, ip, userAgent string, expiresAt time.Time) (*model.Session, error) {
	now := s.now()
	userAgent = truncate(userAgent, maxUserAgentLen)
	sess := &model.Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		IPAddress:    model.StrPtr(ip),
		UserAgent:    model.StrPtr(userAgent),
		ExpiresAt:    expiresAt,
		LastActiveAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return sess, nil
}

// Validate checks that the session exists and has not expired, and records activity
func (s *Service) Validate(ctx context.Context, id string) (*model.Session, error) {
	sess, err := s.sessions.FindUnique(ctx, id)
	if err != nil {
		if errors.Is(err, query.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	now := s.now()
	if sess.Expired(now) {
		return nil, ErrExpired
	}

	if now.Sub(sess.LastActiveAt) >= touchInterval {
		if err := s.sessions.Update(ctx, id, map[string]any{"last_active_at": now}); err != nil {
			return nil, fmt.Errorf("failed to touch session: %w", err)
		}
		sess.LastActiveAt = now
	}
	return sess, nil
}

// Delete ends a session. Deleting a missing session is not an error.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes every session past its expiry
func (s *Service) DeleteExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteMany(ctx, query.Where("expires_at", query.Lte, s.now()))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return n, nil
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
