package middleware

import (
	"errors"
	"strings"

	"peo_admin/internal/auth"
	"peo_admin/internal/httpx"
	"peo_admin/internal/model"
	"peo_admin/internal/session"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthRequired
const (
	KeyUID       = "uid"
	KeyEmail     = "email"
	KeyRole      = "role"
	KeySessionID = "sid"
)

// AuthRequired validates the bearer token and the login session behind it
func AuthRequired(sessions *session.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			httpx.FailErr(c, httpx.ErrUnauthorized("missing authorization header"))
			c.Abort()
			return
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || scheme != "Bearer" || token == "" {
			httpx.FailErr(c, httpx.ErrUnauthorized("invalid authorization header format"))
			c.Abort()
			return
		}

		claims, err := auth.ParseToken(token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				httpx.FailErr(c, httpx.ErrTokenExpired("token expired"))
			} else {
				httpx.FailErr(c, httpx.ErrInvalidToken("invalid token"))
			}
			c.Abort()
			return
		}

		// Logout and deactivation delete the session, revoking the token early
		if _, err := sessions.Validate(c.Request.Context(), claims.SessionID); err != nil {
			switch {
			case errors.Is(err, session.ErrExpired):
				httpx.FailErr(c, httpx.ErrTokenExpired("session expired"))
			case errors.Is(err, session.ErrNotFound):
				httpx.FailErr(c, httpx.ErrInvalidToken("session revoked"))
			default:
				httpx.FailErr(c, httpx.ErrDatabaseError("failed to validate session", err))
			}
			c.Abort()
			return
		}

		c.Set(KeyUID, claims.UID)
		c.Set(KeyEmail, claims.Email)
		c.Set(KeyRole, claims.Role)
		c.Set(KeySessionID, claims.SessionID)

		c.Next()
	}
}

// RequireRole lets only the listed roles through. Must run after AuthRequired.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CurrentRole(c)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		httpx.FailErr(c, httpx.ErrForbidden("insufficient role"))
		c.Abort()
	}
}

// CurrentUID returns the authenticated account id
func CurrentUID(c *gin.Context) string {
	return c.GetString(KeyUID)
}

// CurrentRole returns the authenticated account role
func CurrentRole(c *gin.Context) model.Role {
	return model.Role(c.GetString(KeyRole))
}

// CurrentSessionID returns the session the request was authenticated with
func CurrentSessionID(c *gin.Context) string {
	return c.GetString(KeySessionID)
}
