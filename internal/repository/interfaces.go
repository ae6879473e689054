// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"

	"github.com/hitoshi/livefes/internal/model"
)

// EventRepository はイベントデータの永続化インターフェース。
type EventRepository interface {
	// FindByID は指定IDのイベントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Event, error)

	// FindByIDWithArtists は指定IDのイベントを出演アーティスト付きで取得する。
	// 見つからない場合はnilを返す。
	FindByIDWithArtists(ctx context.Context, id int64) (*model.Event, error)

	// List は絞り込み条件に一致するイベントの一覧と総件数を返す。
	// 条件はすべてAND結合され、start_date昇順で返す。
	List(ctx context.Context, filter model.EventFilter) ([]*model.Event, int, error)

	// Create はイベントを作成し、採番されたIDをセットする。
	Create(ctx context.Context, event *model.Event) error

	// Update はイベントの全フィールドを上書き更新する。
	Update(ctx context.Context, event *model.Event) error

	// DeleteByID は指定IDのイベントを削除する。
	// 関連するevent_artists、event_users、messagesはCASCADE削除される。
	DeleteByID(ctx context.Context, id int64) error
}

// ArtistRepository はアーティストデータの永続化インターフェース。
type ArtistRepository interface {
	// FindByID は指定IDのアーティストを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Artist, error)

	// FindByName は名前の完全一致でアーティストを検索する。見つからない場合はnilを返す。
	FindByName(ctx context.Context, name string) (*model.Artist, error)

	// ListByIDs は指定されたIDのうち存在するアーティストを返す。
	// イベント関連付け前の存在検証に使用する。
	ListByIDs(ctx context.Context, ids []int64) ([]*model.Artist, error)

	// List は絞り込み条件に一致するアーティストの一覧と総件数をname昇順で返す。
	List(ctx context.Context, filter model.ArtistFilter) ([]*model.Artist, int, error)

	// Create はアーティストを作成し、採番されたIDをセットする。
	Create(ctx context.Context, artist *model.Artist) error

	// Update はアーティストの全フィールドを上書き更新する。
	Update(ctx context.Context, artist *model.Artist) error

	// DeleteByID は指定IDのアーティストを削除する。
	DeleteByID(ctx context.Context, id int64) error
}

// EventArtistRepository はイベントとアーティストの関連データの永続化インターフェース。
// 関連セットは差分更新ではなく全置換で管理する。
type EventArtistRepository interface {
	// ListByEventID は指定イベントの関連一覧を返す。
	ListByEventID(ctx context.Context, eventID int64) ([]*model.EventArtist, error)

	// CreateMany は指定イベントにアーティストIDごとの関連行を一括作成する。
	CreateMany(ctx context.Context, eventID int64, artistIDs []int64) error

	// DeleteByEventID は指定イベントの関連行をすべて削除する。
	DeleteByEventID(ctx context.Context, eventID int64) error
}

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByOAuth はプロバイダー名とプロバイダー側IDでユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByOAuth(ctx context.Context, provider, oauthID string) (*model.User, error)

	// Create はユーザーを作成し、採番されたIDをセットする。
	Create(ctx context.Context, user *model.User) error

	// Update はユーザーの全フィールドを上書き更新する。
	Update(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するsessions、event_users、messagesはCASCADE削除される。
	DeleteByID(ctx context.Context, id int64) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID int64) error
}

// MessageRepository はイベントメッセージの永続化インターフェース。
type MessageRepository interface {
	// FindByID は指定IDのメッセージを投稿者情報付きで取得する。
	// 見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Message, error)

	// ListByEventID は指定イベントのメッセージ一覧と総件数を
	// created_at降順・投稿者情報付きで返す。
	ListByEventID(ctx context.Context, eventID int64, page, limit int) ([]*model.Message, int, error)

	// Create はメッセージを作成する。
	Create(ctx context.Context, message *model.Message) error

	// UpdateContent はメッセージ本文を更新する。
	UpdateContent(ctx context.Context, id, content string) error

	// DeleteByID は指定IDのメッセージを削除する。
	DeleteByID(ctx context.Context, id string) error
}

// BookmarkRepository はユーザーとイベントのブックマーク関係の永続化インターフェース。
type BookmarkRepository interface {
	// FindByUserAndEvent はユーザーIDとイベントIDでブックマークを検索する。
	// 見つからない場合はnilを返す。
	FindByUserAndEvent(ctx context.Context, userID, eventID int64) (*model.Bookmark, error)

	// ListByUserID は指定ユーザーのブックマーク一覧と総件数を
	// created_at降順・イベント情報付きで返す。
	ListByUserID(ctx context.Context, userID int64, page, limit int) ([]*model.Bookmark, int, error)

	// Create はブックマークを作成し、採番されたIDをセットする。
	Create(ctx context.Context, bookmark *model.Bookmark) error

	// Update はブックマークのフラグを上書き更新する。
	Update(ctx context.Context, bookmark *model.Bookmark) error

	// DeleteByUserAndEvent はユーザーIDとイベントIDでブックマークを削除する。
	// 削除した場合はtrue、存在しなかった場合はfalseを返す。
	DeleteByUserAndEvent(ctx context.Context, userID, eventID int64) (bool, error)
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
