// Package user はユーザー登録・認証・プロフィール管理のドメインロジックを提供する。
package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/livefes/internal/model"
	"github.com/hitoshi/livefes/internal/repository"
	"github.com/hitoshi/livefes/internal/storage"
)

// allowedBannerExtensions はプロフィール画像として受け付ける拡張子。
var allowedBannerExtensions = []string{"jpg", "jpeg", "png", "webp"}

// bannerConfig はユーザーバナーのアップロード設定を返す。
func bannerConfig(userID int64) storage.UploadConfig {
	return storage.UploadConfig{
		UploadsPath:       "uploads/users",
		AllowedExtensions: allowedBannerExtensions,
		EntityType:        "user",
		EntityID:          userID,
	}
}

// OAuthUserInfo はOAuthプロバイダーから取得したユーザー情報を表す。
type OAuthUserInfo struct {
	Provider       string // "google", "github" 等
	ProviderUserID string
	Email          string
	FullName       string
}

// RegisterInput はユーザー登録の入力を表す。
type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

// UpdateInput はプロフィール更新の入力を表す。
// nilのフィールドは「変更なし」を意味する。
// Passwordが指定された場合は再ハッシュして保存する。
type UpdateInput struct {
	FullName *string
	Email    *string
	Password *string
}

// ServiceConfig はユーザーサービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service はユーザー管理のサービス層。
// 登録・認証・プロフィール更新・退会処理を提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	gateway     storage.Gateway
	config      ServiceConfig
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	gateway storage.Gateway,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		gateway:     gateway,
		config:      config,
	}
}

// defaultAvatarURL は外部アバターサービスのURLを組み立てる。
// メールアドレスに紐づくアバターが無い場合は名前ベースの画像にフォールバックする。
func defaultAvatarURL(email, fullName string) string {
	fallback := fmt.Sprintf("https://avatar.vercel.sh/%s?size=128", url.PathEscape(fullName))
	return fmt.Sprintf("https://unavatar.io/%s?fallback=%s", url.PathEscape(email), url.QueryEscape(fallback))
}

// Register は新規ユーザーを登録しセッションを発行する。
// メールアドレスが既に使用されている場合はエラーを返す。
func (s *Service) Register(ctx context.Context, input RegisterInput) (*model.User, *model.Session, error) {
	existing, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("ユーザーの確認に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, nil, model.NewEmailTakenError(input.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	now := time.Now()
	user := &model.User{
		FullName:  input.FullName,
		Email:     input.Email,
		BannerURL: defaultAvatarURL(input.Email, input.FullName),
		Password:  string(hash),
		Role:      model.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("新規ユーザーを登録しました",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, session, nil
}

// Attempt はメールアドレスとパスワードで認証しセッションを発行する。
// ユーザーの有無とパスワード不一致は同じエラーにまとめる。
func (s *Service) Attempt(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if user == nil {
		return nil, nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, model.NewInvalidCredentialsError()
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

// HandleOAuthLoginOrRegister はOAuthプロバイダー経由のログインを処理する。
// 検索順序:
//  1. (provider, provider_user_id) の一致 → そのままログイン
//  2. メールアドレスの一致 → 既存アカウントにプロバイダーを紐付けてログイン
//  3. どちらも無し → ランダムパスワードで新規ユーザーを作成
func (s *Service) HandleOAuthLoginOrRegister(ctx context.Context, info OAuthUserInfo) (*model.User, *model.Session, error) {
	user, err := s.userRepo.FindByOAuth(ctx, info.Provider, info.ProviderUserID)
	if err != nil {
		return nil, nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}

	if user == nil {
		user, err = s.userRepo.FindByEmail(ctx, info.Email)
		if err != nil {
			return nil, nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
		}

		if user != nil {
			// 既存アカウントにOAuthプロバイダーを紐付ける
			user.OAuthProvider = info.Provider
			user.OAuthID = info.ProviderUserID
			user.UpdatedAt = time.Now()
			if err := s.userRepo.Update(ctx, user); err != nil {
				return nil, nil, err
			}
			slog.Info("既存ユーザーにOAuthプロバイダーを紐付けました",
				slog.Int64("user_id", user.ID),
				slog.String("provider", info.Provider),
			)
		} else {
			user, err = s.registerOAuthUser(ctx, info)
			if err != nil {
				return nil, nil, err
			}
			slog.Info("OAuth経由で新規ユーザーを登録しました",
				slog.Int64("user_id", user.ID),
				slog.String("provider", info.Provider),
			)
		}
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

// registerOAuthUser はOAuth情報から新規ユーザーを作成する。
// パスワードはログインに使えないランダム値をハッシュ化して保存する。
func (s *Service) registerOAuthUser(ctx context.Context, info OAuthUserInfo) (*model.User, error) {
	random := make([]byte, 32)
	if _, err := rand.Read(random); err != nil {
		return nil, fmt.Errorf("ランダムパスワードの生成に失敗しました: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(random)), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	now := time.Now()
	user := &model.User{
		FullName:      info.FullName,
		Email:         info.Email,
		BannerURL:     defaultAvatarURL(info.Email, info.FullName),
		Password:      string(hash),
		OAuthProvider: info.Provider,
		OAuthID:       info.ProviderUserID,
		Role:          model.RoleUser,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("セッションIDが指定されていません")
	}
	return s.sessionRepo.DeleteByID(ctx, sessionID)
}

// GetCurrentUser はセッションIDから現在のユーザーを取得する。
// セッションが無効・期限切れの場合はnilを返す。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, nil
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("セッションの取得に失敗しました: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	return s.userRepo.FindByID(ctx, session.UserID)
}

// GetByID は指定IDのユーザーを取得する。
func (s *Service) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// Update はプロフィールを部分更新する。
// メールアドレス変更時は重複を確認する。
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	if input.Email != nil && *input.Email != user.Email {
		existing, err := s.userRepo.FindByEmail(ctx, *input.Email)
		if err != nil {
			return nil, fmt.Errorf("ユーザーの確認に失敗しました: %w", err)
		}
		if existing != nil {
			return nil, model.NewEmailTakenError(*input.Email)
		}
		user.Email = *input.Email
	}
	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
		}
		user.Password = string(hash)
	}

	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UploadBanner はプロフィール画像を差し替える。
// 旧画像が外部アバターURLの場合は削除対象にならない。
func (s *Service) UploadBanner(ctx context.Context, id int64, file *storage.File) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	url, _, err := s.gateway.Replace(ctx, file, bannerConfig(id), user.BannerURL)
	if err != nil {
		return nil, err
	}

	user.BannerURL = url
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ResetPassword は現在のパスワードを検証してから新しいパスワードに更新する。
// 更新後は他の端末のセッションをすべて破棄する。
func (s *Service) ResetPassword(ctx context.Context, id int64, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return model.NewInvalidCredentialsError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	user.Password = string(hash)
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	return s.sessionRepo.DeleteByUserID(ctx, id)
}

// Withdraw はユーザーの退会処理を実行する。
// 存在しないIDの場合はエラーとせず、deleted=falseを返す（冪等）。
// 削除順序: sessions → user行（event_users, messagesはCASCADE削除） → バナーファイル。
// ファイル削除の失敗は退会をブロックしない。
func (s *Service) Withdraw(ctx context.Context, id int64) (bool, storage.Cleanup, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return false, storage.Cleanup{}, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return false, storage.Cleanup{}, nil
	}

	slog.Info("退会処理を開始します", slog.Int64("user_id", id))

	if err := s.sessionRepo.DeleteByUserID(ctx, id); err != nil {
		return false, storage.Cleanup{}, fmt.Errorf("セッションの削除に失敗しました: %w", err)
	}

	if err := s.userRepo.DeleteByID(ctx, id); err != nil {
		return false, storage.Cleanup{}, fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	cleanup := s.gateway.Delete(ctx, user.BannerURL, bannerConfig(id))

	slog.Info("退会処理が完了しました", slog.Int64("user_id", id))
	return true, cleanup, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID int64) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("セッションIDの生成に失敗しました: %w", err)
	}

	now := time.Now()
	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("セッションの保存に失敗しました: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
