package service

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tieubaoca/pitchdeck-be/types"
	"go.uber.org/zap"
)

const (
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsWriteWait  = 10 * time.Second
)

// WebSocketService streams the events of one deck to a websocket client.
type WebSocketService struct {
	hub      *ProgressHub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewWebSocketService(hub *ProgressHub, logger *zap.Logger) *WebSocketService {
	return &WebSocketService{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
		logger: logger,
	}
}

// ServeDeckEvents upgrades the request and writes every event for the deck,
// starting with initial, until the client goes away.
func (s *WebSocketService) ServeDeckEvents(w http.ResponseWriter, r *http.Request, initial types.DeckEvent) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	log := s.logger.With(zap.Uint("deck_id", initial.DeckID))

	events, unsubscribe := s.hub.Subscribe(initial.DeckID)
	defer unsubscribe()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	// Clients only send control frames; the read loop detects disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Debug("websocket read error", zap.Error(err))
				}
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	if err := writeEvent(conn, initial); err != nil {
		return
	}
	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(conn, event); err != nil {
				log.Debug("websocket write error", zap.Error(err))
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, event types.DeckEvent) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(event)
}
