// Package auth は外部IDプロバイダーによる認証フローを提供する。
package auth

import (
	"context"

	"github.com/hitoshi/livefes/internal/user"
)

// OAuthProvider はOAuth 2.0プロバイダーとの認証フローを抽象化する。
type OAuthProvider interface {
	// GetLoginURL は認可画面へのリダイレクトURLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*user.OAuthUserInfo, error)
}
