package model

import "time"

// Artist は出演アーティストを表す。
// Imageはストレージゲートウェイ配下のURL、または取り込み元の外部画像URL。
type Artist struct {
	ID        int64
	Name      string
	Image     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ArtistFilter はアーティスト一覧取得の絞り込み条件を表す。
type ArtistFilter struct {
	Name  string // 部分一致（大文字小文字を区別しない）
	Page  int
	Limit int
}
