package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/smartlist/internal/shared"
)

// Artist is a followed artist as presented by the panel.
type Artist struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Saved       bool       `json:"saved"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

// ArtistsPayload is the bulk-commit body: only the changed artists are present.
type ArtistsPayload struct {
	Artists map[string]bool `json:"artists"`
}

// Validate rejects payloads without an artists object.
func (p ArtistsPayload) Validate() error {
	if p.Artists == nil {
		return fmt.Errorf("%w: artists mapping is required", shared.ErrInvalidInput)
	}
	for id := range p.Artists {
		if id == "" {
			return fmt.Errorf("%w: artist id must not be empty", shared.ErrInvalidInput)
		}
	}
	return nil
}

// Split partitions the payload into ids to enable and ids to disable.
func (p ArtistsPayload) Split() (add, remove []string) {
	for id, save := range p.Artists {
		if save {
			add = append(add, id)
		} else {
			remove = append(remove, id)
		}
	}
	return add, remove
}

// MessageType enumerates the frames exchanged on the sync stream.
type MessageType string

const (
	MessageCSRF           MessageType = "csrf"
	MessageStart          MessageType = "start"
	MessageArtistStart    MessageType = "artistStart"
	MessageArtistError    MessageType = "artistError"
	MessageArtistComplete MessageType = "artistComplete"
)

// SyncMessage is a single JSON frame on the sync WebSocket.
type SyncMessage struct {
	Type        MessageType `json:"type"`
	ArtistID    string      `json:"artistId,omitempty"`
	Error       string      `json:"error,omitempty"`
	LastUpdated *time.Time  `json:"lastUpdated,omitempty"`
	CSRFToken   string      `json:"csrfToken,omitempty"`
}

// User is a panel user and the Spotify refresh token stored for them.
type User struct {
	ID           string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SavedArtist is one row of a user's saved set.
type SavedArtist struct {
	UserID       string
	ArtistID     string
	LastSyncedAt *time.Time
	CreatedAt    time.Time
}
