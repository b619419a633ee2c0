// package formatter renders artist listings to various formats (CSV, Markdown, JSON, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/smartlist/internal/models"
	"github.com/desertthunder/smartlist/internal/shared"
)

// Format is an output format for artist listings.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatCSV, FormatJSON, FormatMarkdown:
		return f, nil
	case "", "txt":
		return FormatText, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want text, csv, json or markdown)", shared.ErrInvalidArgument, s)
	}
}

// Render converts artists to the given format.
func Render(artists []models.Artist, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ArtistsToCSV(artists)
	case FormatJSON:
		return ArtistsToJSON(artists)
	case FormatMarkdown:
		return ArtistsToMarkdown(artists)
	default:
		return ArtistsToText(artists)
	}
}

// ArtistsToCSV converts artists to CSV with columns: ID, Name, Saved, Last Updated (RFC 3339, empty if never synced)
func ArtistsToCSV(artists []models.Artist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Name", "Saved", "Last Updated"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, a := range artists {
		lastUpdated := ""
		if a.LastUpdated != nil {
			lastUpdated = a.LastUpdated.UTC().Format(time.RFC3339)
		}

		record := []string{a.ID, a.Name, strconv.FormatBool(a.Saved), lastUpdated}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ArtistsToJSON converts artists to an indented JSON array, using the same field names as the panel API
func ArtistsToJSON(artists []models.Artist) ([]byte, error) {
	if artists == nil {
		artists = []models.Artist{}
	}
	data, err := json.MarshalIndent(artists, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal artists: %w", err)
	}
	return append(data, '\n'), nil
}

// ArtistsToText converts artists to an aligned plain-text listing, saved artists marked with [x]
func ArtistsToText(artists []models.Artist) ([]byte, error) {
	var buf bytes.Buffer

	saved := 0
	for _, a := range artists {
		if a.Saved {
			saved++
		}
	}
	buf.WriteString(fmt.Sprintf("Artists: %d (%d saved)\n\n", len(artists), saved))

	for _, a := range artists {
		mark := "[ ]"
		if a.Saved {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s (%s)", mark, a.Name, a.ID)
		if a.LastUpdated != nil {
			line += "  last updated " + a.LastUpdated.Local().Format(time.DateTime)
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// ArtistsToMarkdown converts artists to a Markdown checklist
func ArtistsToMarkdown(artists []models.Artist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Artists\n\n")
	for _, a := range artists {
		mark := " "
		if a.Saved {
			mark = "x"
		}
		buf.WriteString(fmt.Sprintf("- [%s] %s `%s`\n", mark, a.Name, a.ID))
	}

	return buf.Bytes(), nil
}

// WriteExport renders artists and writes them to path.
func WriteExport(artists []models.Artist, format Format, path string) error {
	data, err := Render(artists, format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return nil
}
