package model

import (
	"fmt"
	"strconv"
	"strings"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, event, artist, message, storage, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeEventNotFound      = "EVENT_NOT_FOUND"
	ErrCodeArtistNotFound     = "ARTIST_NOT_FOUND"
	ErrCodeArtistsNotFound    = "ARTISTS_NOT_FOUND"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeMessageNotFound    = "MESSAGE_NOT_FOUND"
	ErrCodeNotMessageOwner    = "NOT_MESSAGE_OWNER"
	ErrCodeUploadFailed       = "UPLOAD_FAILED"
	ErrCodeBannerRequired     = "BANNER_REQUIRED"
	ErrCodeImageRequired      = "IMAGE_REQUIRED"
	ErrCodeInvalidFileType    = "INVALID_FILE_TYPE"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeOAuthNotLinked     = "OAUTH_NOT_LINKED"
)

// ArtistsNotFoundError は存在しないアーティストIDを列挙する集約エラー。
// イベント作成・更新時の関連付け検証で使用する。
type ArtistsNotFoundError struct {
	MissingIDs []int64
}

// Error はerrorインターフェースを実装する。
func (e *ArtistsNotFoundError) Error() string {
	ids := make([]string, len(e.MissingIDs))
	for i, id := range e.MissingIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("[%s] 指定されたアーティストが見つかりません: %s", ErrCodeArtistsNotFound, strings.Join(ids, ", "))
}

// APIError はハンドラー層で使用する統一エラーフォーマットに変換する。
func (e *ArtistsNotFoundError) APIError() *APIError {
	return &APIError{
		Code:     ErrCodeArtistsNotFound,
		Message:  e.Error(),
		Category: "artist",
		Action:   "artistIdsに存在するアーティストIDのみを指定してください。",
	}
}

// NewArtistsNotFoundError は存在しないアーティストIDの集約エラーを生成する。
func NewArtistsNotFoundError(missingIDs []int64) *ArtistsNotFoundError {
	return &ArtistsNotFoundError{MissingIDs: missingIDs}
}

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力内容に誤りがあります: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewEventNotFoundError はイベント未検出エラーを生成する。
func NewEventNotFoundError(eventID int64) *APIError {
	return &APIError{
		Code:     ErrCodeEventNotFound,
		Message:  fmt.Sprintf("指定されたイベントが見つかりません: %d", eventID),
		Category: "event",
		Action:   "イベントIDを確認してください。",
	}
}

// NewArtistNotFoundError はアーティスト未検出エラーを生成する。
func NewArtistNotFoundError(artistID int64) *APIError {
	return &APIError{
		Code:     ErrCodeArtistNotFound,
		Message:  fmt.Sprintf("指定されたアーティストが見つかりません: %d", artistID),
		Category: "artist",
		Action:   "アーティストIDを確認してください。",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewMessageNotFoundError はメッセージ未検出エラーを生成する。
func NewMessageNotFoundError(messageID string) *APIError {
	return &APIError{
		Code:     ErrCodeMessageNotFound,
		Message:  fmt.Sprintf("指定されたメッセージが見つかりません: %s", messageID),
		Category: "message",
		Action:   "メッセージIDを確認してください。",
	}
}

// NewNotMessageOwnerError はメッセージ所有者以外による変更エラーを生成する。
func NewNotMessageOwnerError() *APIError {
	return &APIError{
		Code:     ErrCodeNotMessageOwner,
		Message:  "自分のメッセージのみ変更・削除できます。",
		Category: "message",
		Action:   "自分が投稿したメッセージを指定してください。",
	}
}

// NewBannerRequiredError はバナー画像未指定エラーを生成する。
func NewBannerRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeBannerRequired,
		Message:  "バナー画像は必須です。",
		Category: "validation",
		Action:   "バナー画像ファイルを添付してください。",
	}
}

// NewImageRequiredError はアーティスト画像未指定エラーを生成する。
func NewImageRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeImageRequired,
		Message:  "アーティスト画像は必須です。",
		Category: "validation",
		Action:   "画像ファイルを添付してください。",
	}
}

// NewInvalidFileTypeError は許可されていない拡張子のエラーを生成する。
func NewInvalidFileTypeError(ext string, allowed []string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFileType,
		Message:  fmt.Sprintf("許可されていないファイル形式です: %s", ext),
		Category: "validation",
		Action:   fmt.Sprintf("次の形式のファイルを使用してください: %s", strings.Join(allowed, ", ")),
	}
}

// NewUploadFailedError はファイルアップロード失敗エラーを生成する。
func NewUploadFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeUploadFailed,
		Message:  fmt.Sprintf("ファイルのアップロードに失敗しました: %s", reason),
		Category: "storage",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  fmt.Sprintf("このメールアドレスは既に登録されています: %s", email),
		Category: "auth",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewOAuthNotLinkedError はOAuth未連携エラーを生成する。
func NewOAuthNotLinkedError(provider string) *APIError {
	return &APIError{
		Code:     ErrCodeOAuthNotLinked,
		Message:  fmt.Sprintf("この%sアカウントは連携されていません。", provider),
		Category: "auth",
		Action:   "連携済みのアカウントを指定してください。",
	}
}
