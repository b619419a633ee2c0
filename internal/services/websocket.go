// WebSocket implementation of [tasks.EventSource]
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/smartlist/internal/models"
	"github.com/desertthunder/smartlist/internal/shared"
	"github.com/desertthunder/smartlist/internal/tasks"
	"github.com/gorilla/websocket"
)

// WebSocketSource streams sync events from the panel service's /sync endpoint.
//
// Once the connection is open the CSRF token is sent as the first frame. Every subsequent frame is decoded as a
// [models.SyncMessage]; unknown types and malformed frames are skipped.
type WebSocketSource struct {
	URL       string
	CSRFToken string
	Header    http.Header
	Dialer    *websocket.Dialer
	Logger    *log.Logger
}

// NewWebSocketSource creates a source for the given ws(s) URL.
func NewWebSocketSource(url, csrfToken string) *WebSocketSource {
	return &WebSocketSource{
		URL:       url,
		CSRFToken: csrfToken,
		Header:    http.Header{},
		Dialer:    &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		Logger:    shared.DiscardLogger(),
	}
}

// Open dials the stream and sends the handshake. The returned channel closes when the server closes the
// connection, a read fails, or ctx is cancelled.
func (s *WebSocketSource) Open(ctx context.Context) (<-chan tasks.Event, error) {
	dialer := s.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	logger := s.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	conn, resp, err := dialer.DialContext(ctx, s.URL, s.Header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: sync stream rejected connection", ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to dial sync stream: %w", err)
	}

	handshake := models.SyncMessage{Type: models.MessageCSRF, CSRFToken: s.CSRFToken}
	if err := conn.WriteJSON(handshake); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to send csrf handshake: %w", err)
	}

	events := make(chan tasks.Event)
	done := make(chan struct{})

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	go func() {
		defer close(events)
		defer close(done)
		defer conn.Close()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Debug("sync stream closed by server")
				} else if ctx.Err() == nil {
					logger.Warn("sync stream read failed", "error", err)
				}
				return
			}

			var msg models.SyncMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				logger.Warn("skipping malformed sync frame", "error", err)
				continue
			}

			ev, ok := EventFromMessage(msg)
			if !ok {
				logger.Debug("skipping sync frame", "type", msg.Type)
				continue
			}

			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}

// EventFromMessage maps a sync frame to an orchestrator event. Returns false for frames that are not events.
func EventFromMessage(msg models.SyncMessage) (tasks.Event, bool) {
	switch msg.Type {
	case models.MessageStart:
		return tasks.StartEvent(), true
	case models.MessageArtistStart:
		return tasks.ItemStartEvent(msg.ArtistID), true
	case models.MessageArtistError:
		return tasks.ItemErrorEvent(msg.ArtistID, msg.Error), true
	case models.MessageArtistComplete:
		var ts time.Time
		if msg.LastUpdated != nil {
			ts = *msg.LastUpdated
		}
		return tasks.ItemCompleteEvent(msg.ArtistID, ts), true
	default:
		return tasks.Event{}, false
	}
}
