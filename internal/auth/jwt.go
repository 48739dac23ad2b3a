package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrSecretNotSet = errors.New("jwt secret not initialized")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Identity is what a token asserts about its bearer
type Identity struct {
	UserID    string
	Email     string
	Role      string
	SessionID string
}

// Claims is the signed payload. The jti doubles as the session id.
type Claims struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Identity returns the bearer described by c
func (c *Claims) Identity() Identity {
	return Identity{UserID: c.UID, Email: c.Email, Role: c.Role, SessionID: c.SessionID}
}

var jwtSecret []byte

// InitJWT sets the HS256 signing key
func InitJWT(secret string) {
	jwtSecret = []byte(secret)
}

// IssueToken signs a token for id that expires with its session
func IssueToken(id Identity, expireAt time.Time, issuer string) (string, error) {
	if len(jwtSecret) == 0 {
		return "", ErrSecretNotSet
	}

	claims := Claims{
		UID:       id.UserID,
		Email:     id.Email,
		Role:      id.Role,
		SessionID: id.SessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			ID:        id.SessionID,
			ExpiresAt: jwt.NewNumericDate(expireAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    issuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}

// ParseToken verifies raw and returns its claims. Failures wrap
// ErrTokenExpired or ErrTokenInvalid.
func ParseToken(raw string) (*Claims, error) {
	if len(jwtSecret) == 0 {
		return nil, ErrSecretNotSet
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
	default:
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if claims.UID == "" || claims.SessionID == "" {
		return nil, fmt.Errorf("%w: missing uid or sid", ErrTokenInvalid)
	}
	return claims, nil
}
