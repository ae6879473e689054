package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/livefes/internal/model"
)

// MessageServiceInterface はメッセージハンドラーが必要とするサービスインターフェース。
type MessageServiceInterface interface {
	// ListByEvent は指定イベントのメッセージ一覧とページ情報を返す。
	ListByEvent(ctx context.Context, eventID int64, page, limit int) ([]*model.Message, *model.PageMeta, error)
	// Create はメッセージを投稿する。本文はサニタイズされる。
	Create(ctx context.Context, userID, eventID int64, content string) (*model.Message, error)
	// Update は投稿者本人のメッセージ本文を更新する。
	Update(ctx context.Context, userID int64, messageID, content string) (*model.Message, error)
	// Delete は投稿者本人のメッセージを削除する。
	Delete(ctx context.Context, userID int64, messageID string) error
}

// MessageHandler はイベントメッセージのHTTPハンドラー。
type MessageHandler struct {
	service MessageServiceInterface
}

// NewMessageHandler はMessageHandlerを生成する。
func NewMessageHandler(service MessageServiceInterface) *MessageHandler {
	return &MessageHandler{service: service}
}

// messageRequest はメッセージ投稿・更新リクエストのボディ。
type messageRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// messageAuthorResponse はメッセージ投稿者のAPIレスポンス。
type messageAuthorResponse struct {
	ID        int64  `json:"id"`
	FullName  string `json:"fullName"`
	BannerURL string `json:"bannerUrl"`
}

// messageResponse はメッセージのAPIレスポンス。
type messageResponse struct {
	ID        string                 `json:"id"`
	EventID   int64                  `json:"eventId"`
	UserID    int64                  `json:"userId"`
	Content   string                 `json:"content"`
	CreatedAt time.Time              `json:"createdAt"`
	User      *messageAuthorResponse `json:"user,omitempty"`
}

// messageListResponse はメッセージ一覧のAPIレスポンス。
type messageListResponse struct {
	Data []messageResponse `json:"data"`
	Meta model.PageMeta    `json:"meta"`
}

// ListMessages は指定イベントのメッセージ一覧を取得する。
// GET /api/events/:id/messages
func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	eventID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, limit := parsePageParams(q.Get("page"), q.Get("limit"))

	messages, meta, err := h.service.ListByEvent(r.Context(), eventID, page, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := messageListResponse{
		Data: make([]messageResponse, 0, len(messages)),
		Meta: *meta,
	}
	for _, m := range messages {
		resp.Data = append(resp.Data, toMessageResponse(m))
	}

	writeJSONResponse(w, http.StatusOK, resp)
}

// CreateMessage はイベントにメッセージを投稿する。
// POST /api/events/:id/messages
func (h *MessageHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	eventID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	req, ok := decodeMessageRequest(w, r)
	if !ok {
		return
	}

	message, err := h.service.Create(r.Context(), userID, eventID, req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, toMessageResponse(message))
}

// UpdateMessage はメッセージ本文を更新する。投稿者本人のみ許可される。
// PATCH /api/messages/:messageId
func (h *MessageHandler) UpdateMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	messageID := chi.URLParam(r, "messageId")

	req, ok := decodeMessageRequest(w, r)
	if !ok {
		return
	}

	message, err := h.service.Update(r.Context(), userID, messageID, req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toMessageResponse(message))
}

// DeleteMessage はメッセージを削除する。投稿者本人のみ許可される。
// DELETE /api/messages/:messageId
func (h *MessageHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	messageID := chi.URLParam(r, "messageId")

	if err := h.service.Delete(r.Context(), userID, messageID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeMessageRequest はメッセージリクエストのボディを解析・検証する。
// 失敗した場合は400を書き込み、okにfalseを返す。
func decodeMessageRequest(w http.ResponseWriter, r *http.Request) (*messageRequest, bool) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestBodyError())
		return nil, false
	}
	if err := validate.Struct(req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError(formatValidationError(err)))
		return nil, false
	}
	return &req, true
}

// toMessageResponse はmodel.MessageからAPIレスポンスに変換する。
func toMessageResponse(m *model.Message) messageResponse {
	resp := messageResponse{
		ID:        m.ID,
		EventID:   m.EventID,
		UserID:    m.UserID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
	if m.User != nil {
		resp.User = &messageAuthorResponse{
			ID:        m.User.ID,
			FullName:  m.User.FullName,
			BannerURL: m.User.BannerURL,
		}
	}
	return resp
}
