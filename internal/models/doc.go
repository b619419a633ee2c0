// Package models defines the domain and wire types shared by the smartlist panel, its HTTP client and the reference server.
//
// The package contains two categories of types:
//
// 1. Domain types
//   - [Artist] : A followed artist, whether its playlist is enabled, and when it was last synced
//
// 2. Wire types
//   - [ArtistsPayload] : Bulk-commit request body mapping artist id to enabled flag
//   - [SyncMessage] : One JSON frame on the sync WebSocket, in either direction
package models
