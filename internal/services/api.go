// Client for the panel's own HTTP service
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/smartlist/internal/models"
	"github.com/go-resty/resty/v2"
)

// CSRFHeader carries the CSRF token on state-changing requests.
const CSRFHeader = "X-CSRF-Token"

// PanelClientConfig configures a [PanelClient].
type PanelClientConfig struct {
	BaseURL    string
	CSRFToken  string
	UserID     string
	Timeout    time.Duration
	HTTPClient *http.Client // optional transport override, used by tests
}

// PanelClient talks to the panel service: artist listing and the bulk commit.
type PanelClient struct {
	client    *resty.Client
	baseURL   string
	csrfToken string
	userID    string
}

// NewPanelClient creates a client for the panel service.
func NewPanelClient(cfg PanelClientConfig) *PanelClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://127.0.0.1:7578"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	var cli *resty.Client
	if cfg.HTTPClient != nil {
		cli = resty.NewWithClient(cfg.HTTPClient)
	} else {
		cli = resty.New()
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	cli.SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.UserID != "" {
		cli.SetHeader(UserHeader, cfg.UserID)
	}

	return &PanelClient{client: cli, baseURL: baseURL, csrfToken: cfg.CSRFToken, userID: cfg.UserID}
}

// UserHeader selects the user whose artists are read and written.
const UserHeader = "X-Smartlist-User"

// Health checks that the service is reachable.
func (c *PanelClient) Health(ctx context.Context) error {
	resp, err := c.client.R().SetContext(ctx).Get("/health")
	if err != nil {
		return fmt.Errorf("health request: %w", err)
	}
	return mapHTTPError(resp)
}

// Artists lists the artists available to the panel with their saved flags.
func (c *PanelClient) Artists(ctx context.Context) ([]models.Artist, error) {
	var out struct {
		Artists []models.Artist `json:"artists"`
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/artists")
	if err != nil {
		return nil, fmt.Errorf("artists request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}
	return out.Artists, nil
}

// SaveArtists sends the bulk commit: each id is added to (true) or removed from (false) the saved set.
func (c *PanelClient) SaveArtists(ctx context.Context, changes map[string]bool) error {
	payload := models.ArtistsPayload{Artists: changes}
	if err := payload.Validate(); err != nil {
		return err
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader(CSRFHeader, c.csrfToken).
		SetBody(payload).
		Post("/api/artists")
	if err != nil {
		return fmt.Errorf("save artists request: %w", err)
	}
	return mapHTTPError(resp)
}

// Commit satisfies the form package's committer contract.
func (c *PanelClient) Commit(ctx context.Context, changes map[string]bool) error {
	return c.SaveArtists(ctx, changes)
}

// SyncURL derives the WebSocket URL of the sync stream from the base URL (http -> ws, https -> wss).
func (c *PanelClient) SyncURL() (string, error) {
	return SyncURL(c.baseURL)
}

// SyncSource returns a WebSocket event source for the panel's sync stream.
func (c *PanelClient) SyncSource() (*WebSocketSource, error) {
	u, err := c.SyncURL()
	if err != nil {
		return nil, err
	}

	src := NewWebSocketSource(u, c.csrfToken)
	if c.userID != "" {
		src.Header.Set(UserHeader, c.userID)
	}
	return src, nil
}

// SyncURL maps an http(s) base URL to the ws(s) URL of its /sync endpoint.
func SyncURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/sync"
	return u.String(), nil
}
