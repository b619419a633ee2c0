// Package services holds the clients the panel uses to reach the outside world.
//
// # Panel Service
//
// [PanelClient] wraps a resty client for the panel's own HTTP API: listing artists and sending the bulk commit.
// Non-2xx responses are mapped to sentinel errors ([ErrBadRequest], [ErrUnauthorized], [ErrNotFound]) so callers
// can branch with errors.Is. [PanelClient.Commit] has the shape the form controller expects of its committer.
//
// # Sync Stream
//
// [WebSocketSource] implements the orchestrator's event source over a gorilla/websocket connection. The CSRF token
// is sent as the first frame once the connection opens; frames are then mapped with [EventFromMessage].
//
// # Spotify Implementation
//
// [SpotifyService] implements [ArtistProvider] using OAuth2. The [oauth2.Client] refreshes expired tokens using the
// refresh token; [SpotifyService.Token] exposes the current token so callers can persist it.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called or token rejected
//   - [shared.ErrAPIRequest] : HTTP request failed
//   - [shared.ErrArtistNotFound] : Artist ID not found
package services
