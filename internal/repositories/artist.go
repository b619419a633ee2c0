package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/desertthunder/smartlist/internal/models"
	"github.com/desertthunder/smartlist/internal/shared"
)

// ArtistRepository persists each user's saved-artist set.
type ArtistRepository struct {
	db *sql.DB
}

// NewArtistRepository creates a new [ArtistRepository] with the given database connection
func NewArtistRepository(db *sql.DB) *ArtistRepository {
	return &ArtistRepository{db: db}
}

// Apply commits a bulk change: ids mapped to true are saved, ids mapped to false are removed. Either every change
// is applied or none is. The user row is created when missing.
func (r *ArtistRepository) Apply(ctx context.Context, userID string, changes map[string]bool) error {
	if userID == "" {
		return fmt.Errorf("%w: user id", shared.ErrMissingArgument)
	}

	payload := models.ArtistsPayload{Artists: changes}
	if err := payload.Validate(); err != nil {
		return err
	}
	add, remove := payload.Split()
	slices.Sort(add)
	slices.Sort(remove)

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := ensureUser(ctx, tx, userID); err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, id := range add {
			_, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO saved_artists (user_id, artist_id, created_at) VALUES (?, ?, ?)`,
				userID, id, now)
			if err != nil {
				return fmt.Errorf("failed to save artist %s: %w", id, err)
			}
		}

		for _, id := range remove {
			_, err := tx.ExecContext(ctx,
				`DELETE FROM saved_artists WHERE user_id = ? AND artist_id = ?`, userID, id)
			if err != nil {
				return fmt.Errorf("failed to remove artist %s: %w", id, err)
			}
		}
		return nil
	})
}

// List returns the user's saved artists ordered by artist id.
func (r *ArtistRepository) List(ctx context.Context, userID string) ([]models.SavedArtist, error) {
	query := `
		SELECT user_id, artist_id, last_synced_at, created_at
		FROM saved_artists
		WHERE user_id = ?
		ORDER BY artist_id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query saved artists: %w", err)
	}
	defer rows.Close()

	var saved []models.SavedArtist
	for rows.Next() {
		var (
			s        models.SavedArtist
			syncedAt sql.NullTime
		)
		if err := rows.Scan(&s.UserID, &s.ArtistID, &syncedAt, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan saved artist: %w", err)
		}
		if syncedAt.Valid {
			t := syncedAt.Time
			s.LastSyncedAt = &t
		}
		saved = append(saved, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return saved, nil
}

// MarkSynced records a successful sync of one saved artist.
func (r *ArtistRepository) MarkSynced(ctx context.Context, userID, artistID string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE saved_artists SET last_synced_at = ? WHERE user_id = ? AND artist_id = ?`,
		at.UTC(), userID, artistID)
	if err != nil {
		return fmt.Errorf("failed to mark artist synced: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrArtistNotFound, artistID)
	}
	return nil
}
