package ws

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"peo_admin/internal/auth"
	"peo_admin/internal/model"
)

// SessionChecker confirms the login session behind a token is still live
type SessionChecker interface {
	Validate(ctx context.Context, id string) (*model.Session, error)
}

// handshakeToken reads the token a client sends with io(url, { query: { token } }),
// falling back to a Bearer header
func handshakeToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	if scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " "); ok && scheme == "Bearer" {
		return token
	}
	return ""
}

// WrapWithAuth admits a Socket.IO handshake only for a valid token whose
// session has not been ended by logout or deactivation
func WrapWithAuth(next http.Handler, sessions SessionChecker, logger *logrus.Entry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Handshake and polling are GETs to /socket.io/?EIO=...&transport=...
		if r.Method != http.MethodGet || !strings.Contains(r.URL.Path, "/socket.io/") {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := auth.ParseToken(handshakeToken(r))
		if err != nil {
			logger.Debugf("Handshake rejected from %s: %v", r.RemoteAddr, err)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if _, err := sessions.Validate(r.Context(), claims.SessionID); err != nil {
			logger.Debugf("Handshake rejected for user=%s: session %s: %v", claims.UID, claims.SessionID, err)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
