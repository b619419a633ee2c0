// Package server implements the panel service: the persistence and sync collaborators the admin panel talks to.
//
// # Routes
//
//	GET  /health       liveness
//	GET  /api/artists  followed artists with saved flags and last-synced times
//	POST /api/artists  bulk commit {"artists": {id: bool}}, requires the X-CSRF-Token header
//	GET  /sync         WebSocket sync stream
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method patterns.
//
// # Sync Stream
//
// [SyncHandler] expects {"type":"csrf","csrfToken":...} as the first client frame and closes the connection with
// a policy violation otherwise. Artists are processed one at a time, paced by a [rate.Limiter].
//
// # OAuth Callback Handler
//
// OAuthHandler implements the OAuth2 authorization code callback flow used by `smartlist auth spotify`.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens,
// and sends the result through a channel. It only processes one callback to prevent replay attacks.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
