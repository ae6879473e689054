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

func newMockDB(t *testing.T) (*PostgresEventRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresEventRepo(db), mock
}

var eventColumnNames = []string{
	"id", "title", "description", "banner_url", "start_date", "end_date",
	"start_hour", "open_hour", "latitude", "longitude",
	"place_name", "address", "city", "type", "subtype", "created_at", "updated_at",
}

// TestPostgresEventRepo_FindByID はNULL許容カラムを含む1件取得を検証する。
func TestPostgresEventRepo_FindByID(t *testing.T) {
	repo, mock := newMockDB(t)
	now := time.Now()

	rows := sqlmock.NewRows(eventColumnNames).
		AddRow(int64(1), "夏フェス", nil, nil, now, now, now, nil,
			35.0, 139.0, "会場", "住所", "東京", "festival", "rock", now, now)

	mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	event, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, int64(1), event.ID)
	assert.Equal(t, "夏フェス", event.Title)
	assert.Empty(t, event.Description)
	assert.Empty(t, event.BannerURL)
	assert.Nil(t, event.OpenHour)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestPostgresEventRepo_FindByID_NotFound は未存在時にnilが返ることを検証する。
func TestPostgresEventRepo_FindByID_NotFound(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = \$1`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(eventColumnNames))

	event, err := repo.FindByID(context.Background(), 99)
	assert.NoError(t, err)
	assert.Nil(t, event)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestPostgresEventRepo_List_Filters は絞り込み条件がAND結合され、
// 件数と一覧の両方のクエリに適用されることを検証する。
func TestPostgresEventRepo_List_Filters(t *testing.T) {
	repo, mock := newMockDB(t)
	now := time.Now()
	start := now.AddDate(0, 1, 0)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events WHERE type = \$1 AND city ILIKE \$2 AND start_date >= \$3`).
		WithArgs("festival", "%東京%", start).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows(eventColumnNames).
		AddRow(int64(3), "都市フェス", "説明", "/uploads/events/event_3_x.jpg", now, now, now, now,
			35.0, 139.0, "会場", "住所", "東京", "festival", "rock", now, now)

	mock.ExpectQuery(`SELECT (.+) FROM events WHERE type = \$1 AND city ILIKE \$2 AND start_date >= \$3 ORDER BY start_date ASC LIMIT \$4 OFFSET \$5`).
		WithArgs("festival", "%東京%", start, 20, 0).
		WillReturnRows(rows)

	events, total, err := repo.List(context.Background(), model.EventFilter{
		Type:      "festival",
		City:      "東京",
		StartDate: &start,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, events, 1)
	assert.Equal(t, "都市フェス", events[0].Title)
	assert.Equal(t, "説明", events[0].Description)
	require.NotNil(t, events[0].OpenHour)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestPostgresEventRepo_List_Pagination は2ページ目のOFFSET計算を検証する。
func TestPostgresEventRepo_List_Pagination(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

	mock.ExpectQuery(`SELECT (.+) FROM events ORDER BY start_date ASC LIMIT \$1 OFFSET \$2`).
		WithArgs(10, 10).
		WillReturnRows(sqlmock.NewRows(eventColumnNames))

	events, total, err := repo.List(context.Background(), model.EventFilter{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Empty(t, events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestPostgresEventRepo_Create は採番されたIDがセットされることを検証する。
func TestPostgresEventRepo_Create(t *testing.T) {
	repo, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO events (.+) RETURNING id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	event := &model.Event{
		Title: "新規イベント", StartDate: now, EndDate: now, StartHour: now,
		Latitude: 35.0, Longitude: 139.0,
		PlaceName: "会場", Address: "住所", City: "東京",
		Type: "festival", Subtype: "rock",
		CreatedAt: now, UpdatedAt: now,
	}
	err := repo.Create(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, int64(42), event.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestPostgresEventRepo_FindByIDWithArtists は出演アーティストが
// name昇順でプリロードされることを検証する。
func TestPostgresEventRepo_FindByIDWithArtists(t *testing.T) {
	repo, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(eventColumnNames).
			AddRow(int64(5), "フェス", nil, nil, now, now, now, nil,
				35.0, 139.0, "会場", "住所", "東京", "festival", "rock", now, now))

	mock.ExpectQuery(`SELECT (.+) FROM artists a INNER JOIN event_artists ea`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "image", "created_at", "updated_at"}).
			AddRow(int64(1), "Band A", nil, now, now).
			AddRow(int64(2), "Band B", "/uploads/artists/artist_2_x.png", now, now))

	event, err := repo.FindByIDWithArtists(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, event)
	require.Len(t, event.Artists, 2)
	assert.Equal(t, "Band A", event.Artists[0].Name)
	assert.Equal(t, "Band B", event.Artists[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
