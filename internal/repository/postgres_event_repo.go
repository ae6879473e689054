package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/livefes/internal/model"
)

// PostgresEventRepo はPostgreSQLを使用したイベントリポジトリ。
type PostgresEventRepo struct {
	db *sql.DB
}

// NewPostgresEventRepo はPostgresEventRepoを生成する。
func NewPostgresEventRepo(db *sql.DB) *PostgresEventRepo {
	return &PostgresEventRepo{db: db}
}

// eventColumns はSELECT句で取得するイベントのカラム一覧。
const eventColumns = `id, title, description, banner_url, start_date, end_date,
	        start_hour, open_hour, latitude, longitude,
	        place_name, address, city, type, subtype, created_at, updated_at`

// scanEvent は1行分のイベントを読み取る。
func scanEvent(scan func(dest ...any) error) (*model.Event, error) {
	event := &model.Event{}
	var description, bannerURL sql.NullString
	var openHour sql.NullTime

	err := scan(
		&event.ID, &event.Title, &description, &bannerURL,
		&event.StartDate, &event.EndDate, &event.StartHour, &openHour,
		&event.Latitude, &event.Longitude,
		&event.PlaceName, &event.Address, &event.City,
		&event.Type, &event.Subtype, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.Description = nullStringValue(description)
	event.BannerURL = nullStringValue(bannerURL)
	if openHour.Valid {
		t := openHour.Time
		event.OpenHour = &t
	}

	return event, nil
}

// FindByID は指定IDのイベントを取得する。見つからない場合はnilを返す。
func (r *PostgresEventRepo) FindByID(ctx context.Context, id int64) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)

	event, err := scanEvent(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("イベントの取得に失敗しました: %w", err)
	}

	return event, nil
}

// FindByTitleAndDate はタイトルと開催日の完全一致でイベントを検索する。
// フィード取り込みの重複判定で使用する。見つからない場合はnilを返す。
func (r *PostgresEventRepo) FindByTitleAndDate(ctx context.Context, title string, startDate time.Time) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE title = $1 AND start_date = $2`,
		title, startDate)

	event, err := scanEvent(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("イベントの検索に失敗しました: %w", err)
	}

	return event, nil
}

// FindByIDWithArtists は指定IDのイベントを出演アーティスト付きで取得する。
// 見つからない場合はnilを返す。
func (r *PostgresEventRepo) FindByIDWithArtists(ctx context.Context, id int64) (*model.Event, error) {
	event, err := r.FindByID(ctx, id)
	if err != nil || event == nil {
		return event, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.name, a.image, a.created_at, a.updated_at
		 FROM artists a
		 INNER JOIN event_artists ea ON ea.artist_id = a.id
		 WHERE ea.event_id = $1
		 ORDER BY a.name ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("出演アーティストの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		artist, err := scanArtist(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("出演アーティストの読み取りに失敗しました: %w", err)
		}
		event.Artists = append(event.Artists, artist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("出演アーティストの走査に失敗しました: %w", err)
	}

	return event, nil
}

// buildEventFilter は絞り込み条件からWHERE句と引数を組み立てる。
// 条件はすべてAND結合される。
func buildEventFilter(filter model.EventFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.Type != "" {
		args = append(args, filter.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Subtype != "" {
		args = append(args, filter.Subtype)
		conds = append(conds, fmt.Sprintf("subtype = $%d", len(args)))
	}
	if filter.City != "" {
		args = append(args, "%"+filter.City+"%")
		conds = append(conds, fmt.Sprintf("city ILIKE $%d", len(args)))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		conds = append(conds, fmt.Sprintf("start_date >= $%d", len(args)))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		conds = append(conds, fmt.Sprintf("end_date <= $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List は絞り込み条件に一致するイベントの一覧と総件数を返す。
// start_date昇順、オフセットベースのページネーションを使用する。
func (r *PostgresEventRepo) List(ctx context.Context, filter model.EventFilter) ([]*model.Event, int, error) {
	page, limit := model.NormalizePage(filter.Page, filter.Limit)
	where, args := buildEventFilter(filter)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("イベント件数の取得に失敗しました: %w", err)
	}

	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`SELECT `+eventColumns+` FROM events`+where+
		` ORDER BY start_date ASC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("イベント一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var events []*model.Event
	for rows.Next() {
		event, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("イベント一覧の読み取りに失敗しました: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("イベント一覧の走査に失敗しました: %w", err)
	}

	return events, total, nil
}

// Create はイベントを作成し、採番されたIDをセットする。
func (r *PostgresEventRepo) Create(ctx context.Context, event *model.Event) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO events (title, description, banner_url, start_date, end_date,
		                     start_hour, open_hour, latitude, longitude,
		                     place_name, address, city, type, subtype, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING id`,
		event.Title, nullString(event.Description), nullString(event.BannerURL),
		event.StartDate, event.EndDate, event.StartHour, nullTime(event.OpenHour),
		event.Latitude, event.Longitude,
		event.PlaceName, event.Address, event.City,
		event.Type, event.Subtype, event.CreatedAt, event.UpdatedAt,
	).Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("イベントの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はイベントの全フィールドを上書き更新する。
func (r *PostgresEventRepo) Update(ctx context.Context, event *model.Event) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE events SET
		    title = $2, description = $3, banner_url = $4,
		    start_date = $5, end_date = $6, start_hour = $7, open_hour = $8,
		    latitude = $9, longitude = $10,
		    place_name = $11, address = $12, city = $13,
		    type = $14, subtype = $15, updated_at = $16
		 WHERE id = $1`,
		event.ID, event.Title, nullString(event.Description), nullString(event.BannerURL),
		event.StartDate, event.EndDate, event.StartHour, nullTime(event.OpenHour),
		event.Latitude, event.Longitude,
		event.PlaceName, event.Address, event.City,
		event.Type, event.Subtype, event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("イベントの更新に失敗しました: %w", err)
	}
	return nil
}

// DeleteByID は指定IDのイベントを削除する。
// 関連するevent_artists、event_users、messagesはCASCADE削除される。
func (r *PostgresEventRepo) DeleteByID(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("イベントの削除に失敗しました: %w", err)
	}
	return nil
}

// nullString は空文字列をsql.NullStringに変換する。
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullStringValue はsql.NullStringから文字列を取得する。
func nullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// nullTime は*time.Timeをsql.NullTimeに変換する。
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// compile-time interface check
var _ EventRepository = (*PostgresEventRepo)(nil)
