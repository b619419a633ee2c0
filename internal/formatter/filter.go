package formatter

import (
	"strings"

	"github.com/desertthunder/smartlist/internal/models"
	"github.com/sahilm/fuzzy"
)

// artistIndex implements [fuzzy.Source] over artist names.
type artistIndex struct {
	artists []models.Artist
	lower   []string
}

func (idx artistIndex) String(i int) string { return idx.lower[i] }
func (idx artistIndex) Len() int            { return len(idx.artists) }

// Filter returns the artists whose names fuzzy-match query, best match first. An empty query returns artists unchanged.
func Filter(artists []models.Artist, query string) []models.Artist {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return artists
	}

	idx := artistIndex{artists: artists, lower: make([]string, len(artists))}
	for i, a := range artists {
		idx.lower[i] = strings.ToLower(a.Name)
	}

	matches := fuzzy.FindFrom(query, idx)
	out := make([]models.Artist, 0, len(matches))
	for _, m := range matches {
		out = append(out, artists[m.Index])
	}
	return out
}
