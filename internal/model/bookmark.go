package model

import "time"

// Bookmark はユーザーとイベントの参加・お気に入り関係を表す関連エンティティ。
type Bookmark struct {
	ID         int64
	UserID     int64
	EventID    int64
	IsFavorite bool
	HasJoined  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Event はListByUserIDでプリロードされるイベント情報。
	Event *Event
}
