// package server contains the middleware & handlers for the panel's persistence and sync service
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/smartlist/internal/models"
	"github.com/desertthunder/smartlist/internal/services"
	"github.com/desertthunder/smartlist/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, authentication, CORS, rate limiting, etc.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the panel service.
// Implementations handle specific endpoints (artists, sync stream, OAuth callback).
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// ArtistStore is the persistence the service needs; [repositories.ArtistRepository] implements it.
type ArtistStore interface {
	Apply(ctx context.Context, userID string, changes map[string]bool) error
	List(ctx context.Context, userID string) ([]models.SavedArtist, error)
	MarkSynced(ctx context.Context, userID, artistID string, at time.Time) error
}

// Options configures a [Server].
type Options struct {
	Addr        string
	CSRFToken   string
	DefaultUser string
	SyncRate    float64                 // artists synced per second, <= 0 means unpaced
	Store       ArtistStore             // required
	Provider    services.ArtistProvider // optional; nil serves saved ids only
	Logger      *log.Logger
}

// Server is the panel service: artist listing, bulk commit and the sync stream.
type Server struct {
	router *BasicRouter
	http   *http.Server
	logger *log.Logger
}

// New wires the routes for opts.
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: artist store is required", shared.ErrMissingConfig)
	}
	if opts.CSRFToken == "" {
		return nil, fmt.Errorf("%w: csrf token is required", shared.ErrMissingConfig)
	}
	if opts.DefaultUser == "" {
		opts.DefaultUser = "local"
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}

	router := NewBasicRouter()
	router.Use(RecoverMiddleware(opts.Logger), LoggingMiddleware(opts.Logger), UserMiddleware(opts.DefaultUser))
	router.Handle(http.MethodGet, "/health", http.HandlerFunc(health))
	router.Handler(NewArtistsHandler(opts.Store, opts.Provider, opts.CSRFToken, opts.Logger))
	router.Handler(NewSyncHandler(opts.Store, opts.Provider, opts.CSRFToken, opts.SyncRate, opts.Logger))

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              opts.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: opts.Logger,
	}, nil
}

// Handler exposes the routed handler, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return s.http.Shutdown(shutdownCtx)
	}
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
