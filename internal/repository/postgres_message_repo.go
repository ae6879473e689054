package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/livefes/internal/model"
)

// PostgresMessageRepo はPostgreSQLを使用したメッセージリポジトリ。
type PostgresMessageRepo struct {
	db *sql.DB
}

// NewPostgresMessageRepo はPostgresMessageRepoを生成する。
func NewPostgresMessageRepo(db *sql.DB) *PostgresMessageRepo {
	return &PostgresMessageRepo{db: db}
}

// messageColumns は投稿者情報をJOINで含めたSELECT句のカラム一覧。
const messageColumns = `m.id, m.user_id, m.event_id, m.content, m.created_at,
	        u.full_name, u.banner_url`

func scanMessage(scan func(dest ...any) error) (*model.Message, error) {
	message := &model.Message{User: &model.User{}}
	var bannerURL sql.NullString

	err := scan(
		&message.ID, &message.UserID, &message.EventID, &message.Content, &message.CreatedAt,
		&message.User.FullName, &bannerURL,
	)
	if err != nil {
		return nil, err
	}

	message.User.ID = message.UserID
	message.User.BannerURL = nullStringValue(bannerURL)

	return message, nil
}

// FindByID は指定IDのメッセージを投稿者情報付きで取得する。
// 見つからない場合はnilを返す。
func (r *PostgresMessageRepo) FindByID(ctx context.Context, id string) (*model.Message, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+messageColumns+`
		 FROM messages m
		 INNER JOIN users u ON u.id = m.user_id
		 WHERE m.id = $1`, id)

	message, err := scanMessage(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("メッセージの取得に失敗しました: %w", err)
	}

	return message, nil
}

// ListByEventID は指定イベントのメッセージ一覧と総件数を
// created_at降順・投稿者情報付きで返す。
func (r *PostgresMessageRepo) ListByEventID(ctx context.Context, eventID int64, page, limit int) ([]*model.Message, int, error) {
	page, limit = model.NormalizePage(page, limit)

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE event_id = $1`, eventID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("メッセージ件数の取得に失敗しました: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+messageColumns+`
		 FROM messages m
		 INNER JOIN users u ON u.id = m.user_id
		 WHERE m.event_id = $1
		 ORDER BY m.created_at DESC
		 LIMIT $2 OFFSET $3`,
		eventID, limit, (page-1)*limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("メッセージ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var messages []*model.Message
	for rows.Next() {
		message, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("メッセージ一覧の読み取りに失敗しました: %w", err)
		}
		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("メッセージ一覧の走査に失敗しました: %w", err)
	}

	return messages, total, nil
}

// Create はメッセージを作成する。IDは呼び出し側で採番済みであること。
func (r *PostgresMessageRepo) Create(ctx context.Context, message *model.Message) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (id, user_id, event_id, content, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		message.ID, message.UserID, message.EventID, message.Content, message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("メッセージの作成に失敗しました: %w", err)
	}
	return nil
}

// UpdateContent はメッセージ本文を更新する。
func (r *PostgresMessageRepo) UpdateContent(ctx context.Context, id, content string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE messages SET content = $2 WHERE id = $1`, id, content)
	if err != nil {
		return fmt.Errorf("メッセージの更新に失敗しました: %w", err)
	}
	return nil
}

// DeleteByID は指定IDのメッセージを削除する。
func (r *PostgresMessageRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("メッセージの削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ MessageRepository = (*PostgresMessageRepo)(nil)
