package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/smartlist/internal/models"
	"github.com/desertthunder/smartlist/internal/services"
	"github.com/desertthunder/smartlist/internal/shared"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const handshakeTimeout = 10 * time.Second

// SyncHandler streams a sync run over a WebSocket on /sync.
//
// The client must send the csrf frame first; the connection is closed otherwise. The handler then sends start,
// and for each saved artist artistStart followed by artistComplete or artistError, and closes normally.
type SyncHandler struct {
	store     ArtistStore
	provider  services.ArtistProvider
	csrfToken string
	limit     rate.Limit
	upgrader  websocket.Upgrader
	now       func() time.Time
	logger    *log.Logger
}

// NewSyncHandler creates the /sync handler. perSecond <= 0 disables pacing.
func NewSyncHandler(store ArtistStore, provider services.ArtistProvider, csrfToken string, perSecond float64, logger *log.Logger) *SyncHandler {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}

	return &SyncHandler{
		store:     store,
		provider:  provider,
		csrfToken: csrfToken,
		limit:     limit,
		now:       time.Now,
		logger:    logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *SyncHandler) Routes() []string {
	return []string{"/sync"}
}

func (h *SyncHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	user := UserFromContext(r.Context())
	logger := shared.WithLogger(h.logger, "user", user)

	if err := h.handshake(conn); err != nil {
		logger.Warn("sync handshake rejected", "error", err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid csrf token"),
			time.Now().Add(time.Second))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Drain client frames so close and ping control frames are processed.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	if err := h.run(ctx, conn, user, logger); err != nil {
		logger.Warn("sync aborted", "error", err)
		return
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}

func (h *SyncHandler) handshake(conn *websocket.Conn) error {
	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	defer conn.SetReadDeadline(time.Time{})

	var msg models.SyncMessage
	if err := conn.ReadJSON(&msg); err != nil {
		return err
	}
	if msg.Type != models.MessageCSRF || !validCSRF(h.csrfToken, msg.CSRFToken) {
		return shared.ErrInvalidCSRF
	}
	return nil
}

func (h *SyncHandler) run(ctx context.Context, conn *websocket.Conn, user string, logger *log.Logger) error {
	if err := conn.WriteJSON(models.SyncMessage{Type: models.MessageStart}); err != nil {
		return err
	}

	saved, err := h.store.List(ctx, user)
	if err != nil {
		return err
	}
	logger.Info("sync started", "artists", len(saved))

	limiter := rate.NewLimiter(h.limit, 1)
	for _, s := range saved {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		if err := conn.WriteJSON(models.SyncMessage{Type: models.MessageArtistStart, ArtistID: s.ArtistID}); err != nil {
			return err
		}

		if err := h.syncArtist(ctx, s.ArtistID); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			logger.Warn("artist sync failed", "artist", s.ArtistID, "error", err)
			msg := models.SyncMessage{Type: models.MessageArtistError, ArtistID: s.ArtistID, Error: err.Error()}
			if err := conn.WriteJSON(msg); err != nil {
				return err
			}
			continue
		}

		now := h.now().UTC()
		if err := h.store.MarkSynced(ctx, user, s.ArtistID, now); err != nil {
			logger.Warn("failed to record sync time", "artist", s.ArtistID, "error", err)
		}
		msg := models.SyncMessage{Type: models.MessageArtistComplete, ArtistID: s.ArtistID, LastUpdated: &now}
		if err := conn.WriteJSON(msg); err != nil {
			return err
		}
	}

	logger.Info("sync finished", "artists", len(saved))
	return nil
}

// syncArtist does the per-artist work. With a provider the artist must still resolve there.
func (h *SyncHandler) syncArtist(ctx context.Context, artistID string) error {
	if h.provider == nil {
		return ctx.Err()
	}
	_, err := h.provider.Artist(ctx, artistID)
	return err
}
