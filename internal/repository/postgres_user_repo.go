package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/livefes/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

const userColumns = `id, full_name, email, banner_url, password,
	        oauth_provider, oauth_id, role, created_at, updated_at`

func scanUser(scan func(dest ...any) error) (*model.User, error) {
	user := &model.User{}
	var bannerURL, oauthProvider, oauthID sql.NullString

	err := scan(
		&user.ID, &user.FullName, &user.Email, &bannerURL, &user.Password,
		&oauthProvider, &oauthID, &user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.BannerURL = nullStringValue(bannerURL)
	user.OAuthProvider = nullStringValue(oauthProvider)
	user.OAuthID = nullStringValue(oauthID)

	return user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	user, err := scanUser(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}

	return user, nil
}

// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)

	user, err := scanUser(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}

	return user, nil
}

// FindByOAuth はプロバイダー名とプロバイダー側IDでユーザーを検索する。
// 見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByOAuth(ctx context.Context, provider, oauthID string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE oauth_provider = $1 AND oauth_id = $2`,
		provider, oauthID)

	user, err := scanUser(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}

	return user, nil
}

// Create はユーザーを作成し、採番されたIDをセットする。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (full_name, email, banner_url, password,
		                    oauth_provider, oauth_id, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		user.FullName, user.Email, nullString(user.BannerURL), user.Password,
		nullString(user.OAuthProvider), nullString(user.OAuthID),
		user.Role, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はユーザーの全フィールドを上書き更新する。
func (r *PostgresUserRepo) Update(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET
		    full_name = $2, email = $3, banner_url = $4, password = $5,
		    oauth_provider = $6, oauth_id = $7, role = $8, updated_at = $9
		 WHERE id = $1`,
		user.ID, user.FullName, user.Email, nullString(user.BannerURL), user.Password,
		nullString(user.OAuthProvider), nullString(user.OAuthID),
		user.Role, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ユーザーの更新に失敗しました: %w", err)
	}
	return nil
}

// DeleteByID は指定IDのユーザーを削除する。
// 関連するsessions、event_users、messagesはCASCADE削除される。
func (r *PostgresUserRepo) DeleteByID(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
