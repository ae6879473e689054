package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hitoshi/livefes/internal/model"
)

// PostgresEventArtistRepo はPostgreSQLを使用したイベント・アーティスト関連リポジトリ。
type PostgresEventArtistRepo struct {
	db *sql.DB
}

// NewPostgresEventArtistRepo はPostgresEventArtistRepoを生成する。
func NewPostgresEventArtistRepo(db *sql.DB) *PostgresEventArtistRepo {
	return &PostgresEventArtistRepo{db: db}
}

// ListByEventID は指定イベントの関連一覧を返す。
func (r *PostgresEventArtistRepo) ListByEventID(ctx context.Context, eventID int64) ([]*model.EventArtist, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, event_id, artist_id, created_at FROM event_artists WHERE event_id = $1`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("イベント関連の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var relations []*model.EventArtist
	for rows.Next() {
		rel := &model.EventArtist{}
		if err := rows.Scan(&rel.ID, &rel.EventID, &rel.ArtistID, &rel.CreatedAt); err != nil {
			return nil, fmt.Errorf("イベント関連の読み取りに失敗しました: %w", err)
		}
		relations = append(relations, rel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("イベント関連の走査に失敗しました: %w", err)
	}

	return relations, nil
}

// CreateMany は指定イベントにアーティストIDごとの関連行を一括作成する。
// artistIDsが空の場合は何もしない。
func (r *PostgresEventArtistRepo) CreateMany(ctx context.Context, eventID int64, artistIDs []int64) error {
	if len(artistIDs) == 0 {
		return nil
	}

	// 1回のINSERTで全行を作成する
	placeholders := make([]string, 0, len(artistIDs))
	args := make([]any, 0, len(artistIDs)+1)
	args = append(args, eventID)
	for i, artistID := range artistIDs {
		placeholders = append(placeholders, fmt.Sprintf("($1, $%d, NOW())", i+2))
		args = append(args, artistID)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_artists (event_id, artist_id, created_at) VALUES `+
			strings.Join(placeholders, ", "),
		args...,
	)
	if err != nil {
		return fmt.Errorf("イベント関連の作成に失敗しました: %w", err)
	}

	return nil
}

// DeleteByEventID は指定イベントの関連行をすべて削除する。
func (r *PostgresEventArtistRepo) DeleteByEventID(ctx context.Context, eventID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM event_artists WHERE event_id = $1`, eventID)
	if err != nil {
		return fmt.Errorf("イベント関連の削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ EventArtistRepository = (*PostgresEventArtistRepo)(nil)
