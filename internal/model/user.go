package model

import "time"

// User はサービス利用ユーザーを表す。
// Passwordはbcryptハッシュのみを保持し、APIレスポンスには含めない。
type User struct {
	ID            int64
	FullName      string
	Email         string
	BannerURL     string
	Password      string
	OAuthProvider string
	OAuthID       string
	Role          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ユーザーロール
const (
	// RoleUser は一般ユーザー。
	RoleUser = "user"
	// RoleAdmin は管理者。
	RoleAdmin = "admin"
)

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}
