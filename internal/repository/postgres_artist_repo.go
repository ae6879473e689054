package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/livefes/internal/model"
)

// PostgresArtistRepo はPostgreSQLを使用したアーティストリポジトリ。
type PostgresArtistRepo struct {
	db *sql.DB
}

// NewPostgresArtistRepo はPostgresArtistRepoを生成する。
func NewPostgresArtistRepo(db *sql.DB) *PostgresArtistRepo {
	return &PostgresArtistRepo{db: db}
}

const artistColumns = `id, name, image, created_at, updated_at`

func scanArtist(scan func(dest ...any) error) (*model.Artist, error) {
	artist := &model.Artist{}
	var image sql.NullString

	err := scan(&artist.ID, &artist.Name, &image, &artist.CreatedAt, &artist.UpdatedAt)
	if err != nil {
		return nil, err
	}

	artist.Image = nullStringValue(image)
	return artist, nil
}

// FindByID は指定IDのアーティストを取得する。見つからない場合はnilを返す。
func (r *PostgresArtistRepo) FindByID(ctx context.Context, id int64) (*model.Artist, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+artistColumns+` FROM artists WHERE id = $1`, id)

	artist, err := scanArtist(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("アーティストの取得に失敗しました: %w", err)
	}

	return artist, nil
}

// FindByName は名前の完全一致でアーティストを検索する。見つからない場合はnilを返す。
func (r *PostgresArtistRepo) FindByName(ctx context.Context, name string) (*model.Artist, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+artistColumns+` FROM artists WHERE name = $1`, name)

	artist, err := scanArtist(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("アーティストの検索に失敗しました: %w", err)
	}

	return artist, nil
}

// ListByIDs は指定されたIDのうち存在するアーティストを返す。
func (r *PostgresArtistRepo) ListByIDs(ctx context.Context, ids []int64) ([]*model.Artist, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+artistColumns+` FROM artists WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("アーティストの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var artists []*model.Artist
	for rows.Next() {
		artist, err := scanArtist(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("アーティストの読み取りに失敗しました: %w", err)
		}
		artists = append(artists, artist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("アーティストの走査に失敗しました: %w", err)
	}

	return artists, nil
}

// List は絞り込み条件に一致するアーティストの一覧と総件数をname昇順で返す。
func (r *PostgresArtistRepo) List(ctx context.Context, filter model.ArtistFilter) ([]*model.Artist, int, error) {
	page, limit := model.NormalizePage(filter.Page, filter.Limit)

	where := ""
	var args []any
	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		where = " WHERE name ILIKE $1"
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM artists`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("アーティスト件数の取得に失敗しました: %w", err)
	}

	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`SELECT `+artistColumns+` FROM artists`+where+
		` ORDER BY name ASC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("アーティスト一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var artists []*model.Artist
	for rows.Next() {
		artist, err := scanArtist(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("アーティスト一覧の読み取りに失敗しました: %w", err)
		}
		artists = append(artists, artist)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("アーティスト一覧の走査に失敗しました: %w", err)
	}

	return artists, total, nil
}

// Create はアーティストを作成し、採番されたIDをセットする。
func (r *PostgresArtistRepo) Create(ctx context.Context, artist *model.Artist) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO artists (name, image, created_at, updated_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		artist.Name, nullString(artist.Image), artist.CreatedAt, artist.UpdatedAt,
	).Scan(&artist.ID)
	if err != nil {
		return fmt.Errorf("アーティストの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はアーティストの全フィールドを上書き更新する。
func (r *PostgresArtistRepo) Update(ctx context.Context, artist *model.Artist) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE artists SET name = $2, image = $3, updated_at = $4 WHERE id = $1`,
		artist.ID, artist.Name, nullString(artist.Image), artist.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("アーティストの更新に失敗しました: %w", err)
	}
	return nil
}

// DeleteByID は指定IDのアーティストを削除する。
func (r *PostgresArtistRepo) DeleteByID(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM artists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("アーティストの削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ArtistRepository = (*PostgresArtistRepo)(nil)
