// Spotify API implementation of [ArtistProvider]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/smartlist/internal/models"
	"github.com/desertthunder/smartlist/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

type followers struct {
	Total int `json:"total"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"` // premium, free, etc.
	Followers   followers      `json:"followers"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Genres     []string       `json:"genres"`
	Images     []SpotifyImage `json:"images"`
	Followers  followers      `json:"followers"`
	Popularity int            `json:"popularity"`
	URI        string         `json:"uri"`
}

type cursors struct {
	After string `json:"after"`
}

// SpotifyFollowedArtists is one cursor-paginated page of the user's followed artists.
type SpotifyFollowedArtists struct {
	Items   []SpotifyArtist `json:"items"`
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Next    *string         `json:"next"`
	Cursors cursors         `json:"cursors"`
}

// SpotifyService implements [ArtistProvider] for the Spotify Web API.
// Uses [oauth2] for authentication; expired access tokens are refreshed automatically.
type SpotifyService struct {
	config      *oauth2.Config
	tokens      oauth2.TokenSource
	httpClient  *http.Client
	baseURL     string
	credentials map[string]string
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://127.0.0.1:7578/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"user-follow-read",
			"playlist-modify-private",
			"playlist-modify-public",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:      config,
		httpClient:  http.DefaultClient,
		baseURL:     spotifyBaseURL,
		credentials: credentials,
	}, nil
}

// Authenticate performs OAuth2 authentication with Spotify.
// Expects an "access_token", a "refresh_token" or an "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if authCode := credentials["auth_code"]; authCode != "" {
		_, err := s.Exchange(ctx, authCode)
		return err
	}

	token := &oauth2.Token{
		AccessToken:  credentials["access_token"],
		RefreshToken: credentials["refresh_token"],
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return fmt.Errorf("%w: missing access_token, refresh_token or auth_code", shared.ErrMissingCredentials)
	}

	s.useToken(ctx, token)
	return nil
}

// AuthenticateToken authenticates with a previously stored token.
func (s *SpotifyService) AuthenticateToken(ctx context.Context, token *oauth2.Token) error {
	if token == nil {
		return shared.ErrNotAuthenticated
	}
	s.useToken(ctx, token)
	return nil
}

// Exchange trades an authorization code for tokens and authenticates the service with them.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
	}
	s.useToken(ctx, token)
	return token, nil
}

// Token returns the current token, refreshing it first when expired.
func (s *SpotifyService) Token() (*oauth2.Token, error) {
	if s.tokens == nil {
		return nil, shared.ErrNotAuthenticated
	}
	return s.tokens.Token()
}

func (s *SpotifyService) useToken(ctx context.Context, token *oauth2.Token) {
	if s.httpClient != nil && s.httpClient != http.DefaultClient {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	}
	s.tokens = oauth2.ReuseTokenSource(token, s.config.TokenSource(ctx, token))
	s.httpClient = oauth2.NewClient(ctx, s.tokens)
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// doRequest performs an authenticated HTTP request to the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, result any) error {
	if s.tokens == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return shared.ErrArtistNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: spotify rejected token", shared.ErrNotAuthenticated)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: spotify status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FollowedArtistsPage retrieves one page of followed artists starting after the given cursor.
func (s *SpotifyService) FollowedArtistsPage(ctx context.Context, limit int, after string) (*SpotifyFollowedArtists, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	q := url.Values{}
	q.Set("type", "artist")
	q.Set("limit", fmt.Sprint(limit))
	if after != "" {
		q.Set("after", after)
	}

	var response struct {
		Artists SpotifyFollowedArtists `json:"artists"`
	}
	if err := s.doRequest(ctx, http.MethodGet, "/me/following?"+q.Encode(), &response); err != nil {
		return nil, err
	}
	return &response.Artists, nil
}

// Artist retrieves an artist by ID.
func (s *SpotifyService) Artist(ctx context.Context, artistID string) (*models.Artist, error) {
	if artistID == "" {
		return nil, fmt.Errorf("%w: artist id", shared.ErrMissingArgument)
	}

	var artist SpotifyArtist
	if err := s.doRequest(ctx, http.MethodGet, "/artists/"+url.PathEscape(artistID), &artist); err != nil {
		return nil, err
	}
	return &models.Artist{ID: artist.ID, Name: artist.Name}, nil
}

// SeveralArtists retrieves multiple artists by their IDs (up to 50).
func (s *SpotifyService) SeveralArtists(ctx context.Context, artistIDs []string) ([]SpotifyArtist, error) {
	if len(artistIDs) == 0 {
		return nil, fmt.Errorf("%w: no artist IDs provided", shared.ErrMissingArgument)
	}
	if len(artistIDs) > 50 {
		return nil, fmt.Errorf("%w: maximum 50 artist IDs allowed", shared.ErrInvalidArgument)
	}

	endpoint := "/artists?ids=" + url.QueryEscape(strings.Join(artistIDs, ","))

	var response struct {
		Artists []SpotifyArtist `json:"artists"`
	}
	if err := s.doRequest(ctx, http.MethodGet, endpoint, &response); err != nil {
		return nil, err
	}
	return response.Artists, nil
}

// FollowedArtists walks every page of the user's followed artists.
func (s *SpotifyService) FollowedArtists(ctx context.Context) ([]models.Artist, error) {
	var artists []models.Artist
	after := ""

	for {
		page, err := s.FollowedArtistsPage(ctx, 50, after)
		if err != nil {
			return nil, err
		}

		for _, a := range page.Items {
			artists = append(artists, models.Artist{ID: a.ID, Name: a.Name})
		}

		if page.Next == nil || page.Cursors.After == "" {
			break
		}
		after = page.Cursors.After
	}

	return artists, nil
}
