package model

import "time"

// Message はイベントに紐づくユーザー投稿メッセージを表す。
// IDは"msg_"プレフィックス付きの不透明な文字列。
type Message struct {
	ID        string
	UserID    int64
	EventID   int64
	Content   string
	CreatedAt time.Time

	// User はListByEventID/FindByIDでプリロードされる投稿者情報。
	User *User
}
