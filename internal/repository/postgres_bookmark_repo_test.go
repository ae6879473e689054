package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/livefes/internal/model"
)

// TestPostgresBookmarkRepo_DeleteByUserAndEvent は削除件数に応じて
// 真偽値が返ることを検証する。
func TestPostgresBookmarkRepo_DeleteByUserAndEvent(t *testing.T) {
	tests := []struct {
		name         string
		rowsAffected int64
		want         bool
	}{
		{"削除成功", 1, true},
		{"対象なし", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			repo := NewPostgresBookmarkRepo(db)

			mock.ExpectExec(`DELETE FROM event_users WHERE user_id = \$1 AND event_id = \$2`).
				WithArgs(int64(1), int64(2)).
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))

			deleted, err := repo.DeleteByUserAndEvent(context.Background(), 1, 2)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, deleted)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestPostgresBookmarkRepo_FindByUserAndEvent_NotFound は未存在時にnilが返ることを検証する。
func TestPostgresBookmarkRepo_FindByUserAndEvent_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresBookmarkRepo(db)

	mock.ExpectQuery(`SELECT (.+) FROM event_users WHERE user_id = \$1 AND event_id = \$2`).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	bookmark, err := repo.FindByUserAndEvent(context.Background(), 1, 2)
	assert.NoError(t, err)
	assert.Nil(t, bookmark)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestPostgresBookmarkRepo_Create はupsertではなく新規行の作成であることを検証する。
func TestPostgresBookmarkRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresBookmarkRepo(db)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO event_users (.+) RETURNING id`).
		WithArgs(int64(1), int64(2), true, false, now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))

	bookmark := &model.Bookmark{
		UserID: 1, EventID: 2, IsFavorite: true, HasJoined: false,
		CreatedAt: now, UpdatedAt: now,
	}
	err = repo.Create(context.Background(), bookmark)
	assert.NoError(t, err)
	assert.Equal(t, int64(9), bookmark.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
