package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/smartlist/internal/models"
	"github.com/desertthunder/smartlist/internal/services"
)

// ArtistsHandler serves the artist listing (GET) and the bulk commit (POST) on /api/artists.
type ArtistsHandler struct {
	store     ArtistStore
	provider  services.ArtistProvider
	csrfToken string
	logger    *log.Logger
}

// NewArtistsHandler creates the /api/artists handler. provider may be nil.
func NewArtistsHandler(store ArtistStore, provider services.ArtistProvider, csrfToken string, logger *log.Logger) *ArtistsHandler {
	return &ArtistsHandler{store: store, provider: provider, csrfToken: csrfToken, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *ArtistsHandler) Routes() []string {
	return []string{"/api/artists"}
}

func (h *ArtistsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.commit(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// list merges the provider's followed artists with the user's saved set. Without a provider only saved
// artists are listed, named by id.
func (h *ArtistsHandler) list(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	saved, err := h.store.List(r.Context(), user)
	if err != nil {
		h.logger.Error("failed to list saved artists", "user", user, "error", err)
		http.Error(w, "Could not load artists", http.StatusInternalServerError)
		return
	}

	byID := make(map[string]models.SavedArtist, len(saved))
	for _, s := range saved {
		byID[s.ArtistID] = s
	}

	var artists []models.Artist
	if h.provider != nil {
		followed, err := h.provider.FollowedArtists(r.Context())
		if err != nil {
			h.logger.Error("failed to fetch followed artists", "provider", h.provider.Name(), "error", err)
			http.Error(w, "Could not reach "+h.provider.Name(), http.StatusBadGateway)
			return
		}
		artists = followed
	} else {
		for _, s := range saved {
			artists = append(artists, models.Artist{ID: s.ArtistID, Name: s.ArtistID})
		}
	}

	for i := range artists {
		if s, ok := byID[artists[i].ID]; ok {
			artists[i].Saved = true
			artists[i].LastUpdated = s.LastSyncedAt
		}
	}
	if artists == nil {
		artists = []models.Artist{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"artists": artists})
}

func (h *ArtistsHandler) commit(w http.ResponseWriter, r *http.Request) {
	if !validCSRF(h.csrfToken, r.Header.Get(services.CSRFHeader)) {
		http.Error(w, "No CSRF token provided!", http.StatusUnauthorized)
		return
	}

	var payload models.ArtistsPayload
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&payload); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			http.Error(w, "Could not parse request", http.StatusBadRequest)
			return
		}
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := payload.Validate(); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user := UserFromContext(r.Context())
	if err := h.store.Apply(r.Context(), user, payload.Artists); err != nil {
		h.logger.Error("failed to save artists", "user", user, "error", err)
		http.Error(w, "Could not save artists", http.StatusInternalServerError)
		return
	}

	add, remove := payload.Split()
	h.logger.Info("artists saved", "user", user, "added", len(add), "removed", len(remove))
	writeJSON(w, http.StatusOK, map[string]any{})
}

func validCSRF(expected, provided string) bool {
	if expected == "" || provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}
