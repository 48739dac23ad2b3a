package auth

import (
	"errors"
	"strings"
	"time"

	"peo_admin/api/v1/middleware"
	"peo_admin/internal/auth"
	"peo_admin/internal/config"
	"peo_admin/internal/httpx"
	"peo_admin/internal/model"
	"peo_admin/internal/query"
	"peo_admin/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// LoginRequest represents login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents login response data
type LoginResponse struct {
	Token    string   `json:"token"`
	ExpireAt string   `json:"expireAt"`
	User     UserInfo `json:"user"`
}

// UserInfo represents user information in response
type UserInfo struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Email  string           `json:"email"`
	Role   model.Role       `json:"role"`
	Status model.UserStatus `json:"status"`
}

func userInfo(u *model.User) UserInfo {
	return UserInfo{
		ID:     u.ID,
		Name:   u.DisplayName(),
		Email:  u.Email,
		Role:   u.Role,
		Status: u.Status,
	}
}

// Handler handles login, logout and the current account
type Handler struct {
	users    *query.Client[model.User]
	sessions *session.Service
	cfg      *config.Config
	logger   *logrus.Entry
}

// NewHandler creates a new auth handler
func NewHandler(db *gorm.DB, sessions *session.Service, cfg *config.Config, logger *logrus.Entry) *Handler {
	return &Handler{
		users:    query.MustNew[model.User](db),
		sessions: sessions,
		cfg:      cfg,
		logger:   logger.WithField("component", "auth"),
	}
}

// Login handles POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}
	ctx := c.Request.Context()

	user, err := h.users.FindFirst(ctx, query.FindManyArgs{
		Where: []query.Filter{query.Eq("email", strings.ToLower(strings.TrimSpace(req.Email)))},
	})
	if err != nil {
		if errors.Is(err, query.ErrNotFound) {
			// Same error as a wrong password
			httpx.FailErr(c, httpx.ErrInvalidToken("invalid credentials"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("database error", err))
		return
	}

	if !auth.PasswordMatches(user.PasswordHash, req.Password) {
		httpx.FailErr(c, httpx.ErrInvalidToken("invalid credentials"))
		return
	}

	switch user.Status {
	case model.UserStatusActive:
	case model.UserStatusPending:
		httpx.FailErr(c, httpx.ErrForbidden("account is pending approval"))
		return
	default:
		httpx.FailErr(c, httpx.ErrForbidden("account is inactive"))
		return
	}

	expireAt := time.Now().Add(time.Duration(h.cfg.JWT.ExpireMinutes) * time.Minute)
	sess, err := h.sessions.Create(ctx, user.ID, c.ClientIP(), c.Request.UserAgent(), expireAt)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to create session", err))
		return
	}

	token, err := auth.IssueToken(auth.Identity{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      string(user.Role),
		SessionID: sess.ID,
	}, expireAt, h.cfg.JWT.Issuer)
	if err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("failed to generate token", err))
		return
	}

	h.logger.WithFields(logrus.Fields{"user_id": user.ID, "session_id": sess.ID, "ip": c.ClientIP()}).Info("login")
	httpx.OK(c, LoginResponse{
		Token:    token,
		ExpireAt: expireAt.Format(time.RFC3339),
		User:     userInfo(user),
	})
}

// Logout handles POST /api/v1/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), middleware.CurrentSessionID(c)); err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to end session", err))
		return
	}
	httpx.OKMsg(c, "logged out", nil)
}

// Me handles GET /api/v1/auth/me
func (h *Handler) Me(c *gin.Context) {
	user, err := h.users.FindUnique(c.Request.Context(), middleware.CurrentUID(c))
	if err != nil {
		if errors.Is(err, query.ErrNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("user not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to load user", err))
		return
	}
	httpx.OK(c, userInfo(user))
}
