package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/livefes/internal/bookmark"
	"github.com/hitoshi/livefes/internal/model"
)

// BookmarkServiceInterface はブックマークハンドラーが必要とするサービスインターフェース。
type BookmarkServiceInterface interface {
	// SetFlags はブックマークのフラグを更新する。行が無ければ作成する。
	SetFlags(ctx context.Context, userID, eventID int64, input bookmark.SetFlagsInput) (*model.Bookmark, error)
	// ListByUser はユーザーのブックマーク一覧をイベント付きで返す。
	ListByUser(ctx context.Context, userID int64, page, limit int) ([]*model.Bookmark, *model.PageMeta, error)
	// Remove はブックマーク行を削除する。行が存在しない場合はfalseを返す。
	Remove(ctx context.Context, userID, eventID int64) (bool, error)
}

// BookmarkHandler はブックマーク管理のHTTPハンドラー。
type BookmarkHandler struct {
	service BookmarkServiceInterface
}

// NewBookmarkHandler はBookmarkHandlerを生成する。
func NewBookmarkHandler(service BookmarkServiceInterface) *BookmarkHandler {
	return &BookmarkHandler{service: service}
}

// setBookmarkRequest はブックマークフラグ更新リクエストのボディ。
// 未指定のフラグは変更しない。
type setBookmarkRequest struct {
	IsFavorite *bool `json:"isFavorite"`
	HasJoined  *bool `json:"hasJoined"`
}

// bookmarkResponse はブックマークのAPIレスポンス。
type bookmarkResponse struct {
	ID         int64          `json:"id"`
	EventID    int64          `json:"eventId"`
	IsFavorite bool           `json:"isFavorite"`
	HasJoined  bool           `json:"hasJoined"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	Event      *eventResponse `json:"event,omitempty"`
}

// bookmarkListResponse はブックマーク一覧のAPIレスポンス。
type bookmarkListResponse struct {
	Data []bookmarkResponse `json:"data"`
	Meta model.PageMeta     `json:"meta"`
}

// SetBookmark はイベントのブックマークフラグを更新する。
// PUT /api/events/:id/bookmark
func (h *BookmarkHandler) SetBookmark(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	eventID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req setBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestBodyError())
		return
	}

	if req.IsFavorite == nil && req.HasJoined == nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("isFavoriteまたはhasJoinedを指定してください"))
		return
	}

	bm, err := h.service.SetFlags(r.Context(), userID, eventID, bookmark.SetFlagsInput{
		IsFavorite: req.IsFavorite,
		HasJoined:  req.HasJoined,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toBookmarkResponse(bm))
}

// RemoveBookmark はイベントのブックマークを削除する。
// 行が存在しない場合も204を返す（冪等）。
// DELETE /api/events/:id/bookmark
func (h *BookmarkHandler) RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	eventID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if _, err := h.service.Remove(r.Context(), userID, eventID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListBookmarks は認証ユーザーのブックマーク一覧を取得する。
// GET /api/users/me/bookmarks
func (h *BookmarkHandler) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, limit := parsePageParams(q.Get("page"), q.Get("limit"))

	bookmarks, meta, err := h.service.ListByUser(r.Context(), userID, page, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := bookmarkListResponse{
		Data: make([]bookmarkResponse, 0, len(bookmarks)),
		Meta: *meta,
	}
	for _, bm := range bookmarks {
		resp.Data = append(resp.Data, toBookmarkResponse(bm))
	}

	writeJSONResponse(w, http.StatusOK, resp)
}

// toBookmarkResponse はmodel.BookmarkからAPIレスポンスに変換する。
func toBookmarkResponse(bm *model.Bookmark) bookmarkResponse {
	resp := bookmarkResponse{
		ID:         bm.ID,
		EventID:    bm.EventID,
		IsFavorite: bm.IsFavorite,
		HasJoined:  bm.HasJoined,
		CreatedAt:  bm.CreatedAt,
		UpdatedAt:  bm.UpdatedAt,
	}
	if bm.Event != nil {
		ev := toEventResponse(bm.Event)
		resp.Event = &ev
	}
	return resp
}
