package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDB = errors.New("database is locked")

func newMock(t *testing.T) (*ArtistRepository, *UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewArtistRepository(db), NewUserRepository(db), mock
}

func TestArtistRepositoryErrors(t *testing.T) {
	ctx := context.Background()
	insertUser := regexp.QuoteMeta(`INSERT OR IGNORE INTO users (id) VALUES (?)`)
	insertArtist := regexp.QuoteMeta(`INSERT OR IGNORE INTO saved_artists`)
	deleteArtist := regexp.QuoteMeta(`DELETE FROM saved_artists`)

	t.Run("Apply rolls back on failed delete", func(t *testing.T) {
		repo, _, mock := newMock(t)

		mock.ExpectBegin()
		mock.ExpectExec(insertUser).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(insertArtist).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(deleteArtist).WithArgs("u1", "b").WillReturnError(errDB)
		mock.ExpectRollback()

		err := repo.Apply(ctx, "u1", map[string]bool{"a": true, "b": false})
		assert.ErrorIs(t, err, errDB)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Apply begin failure", func(t *testing.T) {
		repo, _, mock := newMock(t)
		mock.ExpectBegin().WillReturnError(errDB)

		err := repo.Apply(ctx, "u1", map[string]bool{"a": true})
		assert.ErrorIs(t, err, errDB)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Apply commit failure", func(t *testing.T) {
		repo, _, mock := newMock(t)

		mock.ExpectBegin()
		mock.ExpectExec(insertUser).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(insertArtist).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit().WillReturnError(errDB)

		err := repo.Apply(ctx, "u1", map[string]bool{"a": true})
		assert.ErrorIs(t, err, errDB)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("List query failure", func(t *testing.T) {
		repo, _, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM saved_artists`)).WillReturnError(errDB)

		_, err := repo.List(ctx, "u1")
		assert.ErrorIs(t, err, errDB)
	})

	t.Run("List scan failure", func(t *testing.T) {
		repo, _, mock := newMock(t)
		rows := sqlmock.NewRows([]string{"user_id", "artist_id"}).AddRow("u1", "a")
		mock.ExpectQuery(regexp.QuoteMeta(`FROM saved_artists`)).WillReturnRows(rows)

		_, err := repo.List(ctx, "u1")
		assert.Error(t, err)
	})

	t.Run("MarkSynced exec failure", func(t *testing.T) {
		repo, _, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE saved_artists`)).WillReturnError(errDB)

		assert.ErrorIs(t, repo.MarkSynced(ctx, "u1", "a", time.Now()), errDB)
	})
}

func TestUserRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Upsert failure", func(t *testing.T) {
		_, repo, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).WillReturnError(errDB)

		assert.ErrorIs(t, repo.Upsert(ctx, "u1", "t"), errDB)
	})

	t.Run("Get failure", func(t *testing.T) {
		_, repo, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = ?`)).WillReturnError(errDB)

		_, err := repo.Get(ctx, "u1")
		assert.ErrorIs(t, err, errDB)
		assert.NotErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("List row error", func(t *testing.T) {
		_, repo, mock := newMock(t)
		rows := sqlmock.NewRows([]string{"id", "refresh_token", "created_at", "updated_at"}).
			AddRow("u1", "", time.Now(), time.Now()).
			RowError(0, errDB)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM users`)).WillReturnRows(rows)

		_, err := repo.List(ctx)
		assert.ErrorIs(t, err, errDB)
	})
}
