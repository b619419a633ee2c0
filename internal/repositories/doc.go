// Package repositories implements SQLite persistence for panel users and their saved artists.
//
// Key Implementations:
//   - [UserRepository] : users and their stored Spotify refresh tokens
//   - [ArtistRepository] : the saved-artist set per user, with last-synced timestamps
//
// The bulk commit from the panel lands in [ArtistRepository.Apply], which adds and removes artists in a single
// transaction so a failed request leaves the saved set untouched.
package repositories
