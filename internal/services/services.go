// package services defines the HTTP and WebSocket clients used by the panel
//
// Spotify (artist catalog), the panel's own service (bulk commit, artist listing, sync stream)
package services

import (
	"context"

	"github.com/desertthunder/smartlist/internal/models"
)

// ArtistProvider is the catalog of artists a user can build playlists from.
type ArtistProvider interface {
	// FollowedArtists lists every artist the authenticated user follows.
	FollowedArtists(ctx context.Context) ([]models.Artist, error)

	// Artist retrieves a single artist by ID.
	// Returns [shared.ErrArtistNotFound] when the provider does not know the ID.
	Artist(ctx context.Context, artistID string) (*models.Artist, error)

	// Name returns the name of the provider (e.g., "Spotify")
	Name() string
}
