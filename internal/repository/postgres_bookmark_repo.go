package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/livefes/internal/model"
)

// PostgresBookmarkRepo はPostgreSQLを使用したブックマークリポジトリ。
// event_usersテーブルを永続化先とする。
type PostgresBookmarkRepo struct {
	db *sql.DB
}

// NewPostgresBookmarkRepo はPostgresBookmarkRepoを生成する。
func NewPostgresBookmarkRepo(db *sql.DB) *PostgresBookmarkRepo {
	return &PostgresBookmarkRepo{db: db}
}

// FindByUserAndEvent はユーザーIDとイベントIDでブックマークを検索する。
// 見つからない場合はnilを返す。
func (r *PostgresBookmarkRepo) FindByUserAndEvent(ctx context.Context, userID, eventID int64) (*model.Bookmark, error) {
	bookmark := &model.Bookmark{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, event_id, is_favorite, has_joined, created_at, updated_at
		 FROM event_users WHERE user_id = $1 AND event_id = $2`,
		userID, eventID,
	).Scan(&bookmark.ID, &bookmark.UserID, &bookmark.EventID,
		&bookmark.IsFavorite, &bookmark.HasJoined, &bookmark.CreatedAt, &bookmark.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ブックマークの取得に失敗しました: %w", err)
	}
	return bookmark, nil
}

// ListByUserID は指定ユーザーのブックマーク一覧と総件数を
// created_at降順・イベント情報付きで返す。
func (r *PostgresBookmarkRepo) ListByUserID(ctx context.Context, userID int64, page, limit int) ([]*model.Bookmark, int, error) {
	page, limit = model.NormalizePage(page, limit)

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_users WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ブックマーク件数の取得に失敗しました: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT eu.id, eu.user_id, eu.event_id, eu.is_favorite, eu.has_joined,
		        eu.created_at, eu.updated_at,
		        e.id, e.title, e.description, e.banner_url, e.start_date, e.end_date,
		        e.start_hour, e.open_hour, e.latitude, e.longitude,
		        e.place_name, e.address, e.city, e.type, e.subtype, e.created_at, e.updated_at
		 FROM event_users eu
		 INNER JOIN events e ON e.id = eu.event_id
		 WHERE eu.user_id = $1
		 ORDER BY eu.created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, (page-1)*limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("ブックマーク一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var bookmarks []*model.Bookmark
	for rows.Next() {
		bookmark := &model.Bookmark{Event: &model.Event{}}
		var description, bannerURL sql.NullString
		var openHour sql.NullTime

		err := rows.Scan(
			&bookmark.ID, &bookmark.UserID, &bookmark.EventID,
			&bookmark.IsFavorite, &bookmark.HasJoined, &bookmark.CreatedAt, &bookmark.UpdatedAt,
			&bookmark.Event.ID, &bookmark.Event.Title, &description, &bannerURL,
			&bookmark.Event.StartDate, &bookmark.Event.EndDate,
			&bookmark.Event.StartHour, &openHour,
			&bookmark.Event.Latitude, &bookmark.Event.Longitude,
			&bookmark.Event.PlaceName, &bookmark.Event.Address, &bookmark.Event.City,
			&bookmark.Event.Type, &bookmark.Event.Subtype,
			&bookmark.Event.CreatedAt, &bookmark.Event.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("ブックマーク一覧の読み取りに失敗しました: %w", err)
		}

		bookmark.Event.Description = nullStringValue(description)
		bookmark.Event.BannerURL = nullStringValue(bannerURL)
		if openHour.Valid {
			t := openHour.Time
			bookmark.Event.OpenHour = &t
		}

		bookmarks = append(bookmarks, bookmark)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ブックマーク一覧の走査に失敗しました: %w", err)
	}

	return bookmarks, total, nil
}

// Create はブックマークを作成し、採番されたIDをセットする。
func (r *PostgresBookmarkRepo) Create(ctx context.Context, bookmark *model.Bookmark) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO event_users (user_id, event_id, is_favorite, has_joined, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		bookmark.UserID, bookmark.EventID, bookmark.IsFavorite, bookmark.HasJoined,
		bookmark.CreatedAt, bookmark.UpdatedAt,
	).Scan(&bookmark.ID)
	if err != nil {
		return fmt.Errorf("ブックマークの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はブックマークのフラグを上書き更新する。
func (r *PostgresBookmarkRepo) Update(ctx context.Context, bookmark *model.Bookmark) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE event_users SET is_favorite = $2, has_joined = $3, updated_at = $4 WHERE id = $1`,
		bookmark.ID, bookmark.IsFavorite, bookmark.HasJoined, bookmark.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ブックマークの更新に失敗しました: %w", err)
	}
	return nil
}

// DeleteByUserAndEvent はユーザーIDとイベントIDでブックマークを削除する。
// 削除した場合はtrue、存在しなかった場合はfalseを返す。
func (r *PostgresBookmarkRepo) DeleteByUserAndEvent(ctx context.Context, userID, eventID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM event_users WHERE user_id = $1 AND event_id = $2`,
		userID, eventID,
	)
	if err != nil {
		return false, fmt.Errorf("ブックマークの削除に失敗しました: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ブックマークの削除結果の取得に失敗しました: %w", err)
	}

	return rows > 0, nil
}

// compile-time interface check
var _ BookmarkRepository = (*PostgresBookmarkRepo)(nil)
