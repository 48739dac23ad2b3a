package ws

import (
	"context"
	"net/http"

	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"github.com/sirupsen/logrus"
)

// Hub owns the Socket.IO server and the event log behind it
type Hub struct {
	server    *socketio.Server
	publisher *Publisher
	sessions  SessionChecker
	logger    *logrus.Entry
}

// NewHub creates the Socket.IO server and registers its handlers
func NewHub(publisher *Publisher, sessions SessionChecker, logger *logrus.Entry) *Hub {
	checkOrigin := func(r *http.Request) bool { return true }
	server := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			&polling.Transport{CheckOrigin: checkOrigin},
			&websocket.Transport{CheckOrigin: checkOrigin},
		},
	})

	h := &Hub{
		server:    server,
		publisher: publisher,
		sessions:  sessions,
		logger:    logger.WithField("component", "ws"),
	}

	server.OnConnect("/", func(s socketio.Conn) error {
		h.logger.Debugf("Client connected: %s", s.ID())
		latest, err := publisher.LatestEventID(context.Background())
		if err != nil {
			h.logger.WithError(err).Warn("failed to read latest event id")
		}
		s.Emit("connected", map[string]interface{}{
			"ok":          true,
			"lastEventId": latest,
		})
		return nil
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		h.logger.Debugf("Client disconnected: %s, reason: %s", s.ID(), reason)
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		if s != nil {
			h.logger.Warnf("Error for client %s: %v", s.ID(), e)
			return
		}
		h.logger.Warnf("Socket error: %v", e)
	})

	server.OnEvent("/", "request:events", h.handleRequestEvents)

	publisher.attach(h)
	return h
}

// Serve runs the Socket.IO event loop until Close
func (h *Hub) Serve() {
	go func() {
		if err := h.server.Serve(); err != nil {
			h.logger.WithError(err).Error("Socket.IO server stopped")
		}
	}()
	h.logger.Info("Socket.IO server initialized")
}

// Close stops the server
func (h *Hub) Close() error {
	return h.server.Close()
}

// Handler returns the HTTP handler guarded by JWT authentication
func (h *Hub) Handler() http.Handler {
	return WrapWithAuth(h.server, h.sessions, h.logger)
}

// BroadcastToAll broadcasts a message to all connected clients
func (h *Hub) BroadcastToAll(event string, data interface{}) {
	h.server.BroadcastToNamespace("/", event, data)
}
