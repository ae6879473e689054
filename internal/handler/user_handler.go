package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/livefes/internal/metrics"
	"github.com/hitoshi/livefes/internal/model"
	"github.com/hitoshi/livefes/internal/storage"
	"github.com/hitoshi/livefes/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Update はプロフィールを部分更新する。
	Update(ctx context.Context, id int64, input user.UpdateInput) (*model.User, error)
	// UploadBanner はプロフィール画像を差し替える。
	UploadBanner(ctx context.Context, id int64, file *storage.File) (*model.User, error)
	// ResetPassword は現在のパスワードを検証してから新しいパスワードに更新する。
	ResetPassword(ctx context.Context, id int64, currentPassword, newPassword string) error
	// Withdraw はユーザーの退会処理を実行する。バナーファイルも削除される。
	// 対象が存在しない場合はエラーとせずfalseを返す。
	Withdraw(ctx context.Context, id int64) (bool, storage.Cleanup, error)
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service       UserServiceInterface
	maxUploadSize int64
	collector     metrics.MetricsCollector
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface, maxUploadSize int64, collector metrics.MetricsCollector) *UserHandler {
	return &UserHandler{
		service:       service,
		maxUploadSize: maxUploadSize,
		collector:     collector,
	}
}

// updateUserRequest はプロフィール更新リクエストのボディ。
type updateUserRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
}

// resetPasswordRequest はパスワード変更リクエストのボディ。
type resetPasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	BannerURL string    `json:"bannerUrl"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UpdateMe は認証ユーザーのプロフィールを部分更新する。
// PATCH /api/users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestBodyError())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError(formatValidationError(err)))
		return
	}

	u, err := h.service.Update(r.Context(), userID, user.UpdateInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toUserResponse(u))
}

// UploadBanner は認証ユーザーのプロフィール画像を差し替える。
// POST /api/users/me/banner (multipart/form-data)
func (h *UserHandler) UploadBanner(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidMultipartError())
		return
	}

	banner, closeBanner, err := extractFormFile(r, "banner")
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if banner == nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewBannerRequiredError())
		return
	}
	defer closeBanner()

	u, err := h.service.UploadBanner(r.Context(), userID, banner)
	if err != nil {
		h.collector.RecordUploadFailure("user")
		handleServiceError(w, err)
		return
	}

	h.collector.RecordUpload("user")
	writeJSONResponse(w, http.StatusOK, toUserResponse(u))
}

// ResetPassword は認証ユーザーのパスワードを変更する。
// PUT /api/users/me/password
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestBodyError())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError(formatValidationError(err)))
		return
	}

	if err := h.service.ResetPassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Withdraw は認証ユーザーの退会処理を実行する。
// DELETE /api/users/me
func (h *UserHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	deleted, cleanup, err := h.service.Withdraw(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if !deleted {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewUserNotFoundError())
		return
	}

	if cleanup.Attempted && cleanup.Err != nil {
		h.collector.RecordCleanupFailure()
	}
	w.WriteHeader(http.StatusNoContent)
}

// toUserResponse はmodel.UserからAPIレスポンスに変換する。
// パスワードハッシュとOAuth連携情報は含めない。
func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		BannerURL: u.BannerURL,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
