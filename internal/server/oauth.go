package server

import (
	"context"
	"crypto/subtle"
	"fmt"
	"html/template"
	"net/http"
	"sync/atomic"

	"github.com/desertthunder/smartlist/internal/shared"
	"golang.org/x/oauth2"
)

// OAuthResult is the outcome of the one authorization redirect.
type OAuthResult struct {
	Token *oauth2.Token
	Err   error
}

// Error returns the failure, nil when a token was issued.
func (r OAuthResult) Error() error { return r.Err }

// Exchanger trades an authorization code for tokens. [services.SpotifyService] implements it.
type Exchanger interface {
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

// OAuthHandler serves the redirect Spotify makes back to `auth spotify`. Only the first request counts.
type OAuthHandler struct {
	exchanger Exchanger
	state     string
	used      atomic.Bool
	done      chan OAuthResult
}

// NewOAuthHandler creates a handler that accepts callbacks carrying state.
func NewOAuthHandler(exchanger Exchanger, state string) *OAuthHandler {
	return &OAuthHandler{
		exchanger: exchanger,
		state:     state,
		done:      make(chan OAuthResult, 1),
	}
}

func (h *OAuthHandler) Routes() []string { return []string{"/callback"} }

// Result yields exactly one [OAuthResult], once the first callback has been handled.
func (h *OAuthHandler) Result() <-chan OAuthResult { return h.done }

func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.used.CompareAndSwap(false, true) {
		renderCallback(w, http.StatusBadRequest, callbackPage{
			Title:  "Link already used",
			Detail: "Run smartlist auth spotify again to start a new authorization.",
		})
		return
	}

	token, status, err := h.authorize(r)
	h.done <- OAuthResult{Token: token, Err: err}

	if err != nil {
		renderCallback(w, status, callbackPage{Title: "Spotify not connected", Detail: err.Error()})
		return
	}
	renderCallback(w, http.StatusOK, callbackPage{
		OK:     true,
		Title:  "Spotify connected",
		Detail: "Your followed artists are now available in the panel. You can close this tab.",
	})
}

func (h *OAuthHandler) authorize(r *http.Request) (*oauth2.Token, int, error) {
	q := r.URL.Query()
	if subtle.ConstantTimeCompare([]byte(q.Get("state")), []byte(h.state)) != 1 {
		return nil, http.StatusBadRequest, fmt.Errorf("%w: state mismatch", shared.ErrAuthFailed)
	}

	code := q.Get("code")
	if code == "" {
		return nil, http.StatusBadRequest,
			fmt.Errorf("%w: %s - %s", shared.ErrAuthFailed, q.Get("error"), q.Get("error_description"))
	}

	token, err := h.exchanger.Exchange(r.Context(), code)
	if err != nil {
		return nil, http.StatusBadGateway, fmt.Errorf("token exchange failed: %w", err)
	}
	return token, http.StatusOK, nil
}

type callbackPage struct {
	OK     bool
	Title  string
	Detail string
}

var callbackTemplate = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>smartlist: {{.Title}}</title></head>
<body style="font-family: system-ui, sans-serif; text-align: center; margin-top: 20vh">
<h1 style="color: {{if .OK}}#1DB954{{else}}#d33{{end}}">{{if .OK}}✓{{else}}✗{{end}} {{.Title}}</h1>
<p>{{.Detail}}</p>
</body>
</html>
`))

func renderCallback(w http.ResponseWriter, status int, page callbackPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = callbackTemplate.Execute(w, page)
}
