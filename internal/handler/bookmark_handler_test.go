package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/livefes/internal/bookmark"
	"github.com/hitoshi/livefes/internal/model"
)

// mockBookmarkService は関数フィールドで振る舞いを差し替えられるモック。
type mockBookmarkService struct {
	setFlagsFunc   func(ctx context.Context, userID, eventID int64, input bookmark.SetFlagsInput) (*model.Bookmark, error)
	listByUserFunc func(ctx context.Context, userID int64, page, limit int) ([]*model.Bookmark, *model.PageMeta, error)
	removeFunc     func(ctx context.Context, userID, eventID int64) (bool, error)
}

func (m *mockBookmarkService) SetFlags(ctx context.Context, userID, eventID int64, input bookmark.SetFlagsInput) (*model.Bookmark, error) {
	return m.setFlagsFunc(ctx, userID, eventID, input)
}

func (m *mockBookmarkService) ListByUser(ctx context.Context, userID int64, page, limit int) ([]*model.Bookmark, *model.PageMeta, error) {
	return m.listByUserFunc(ctx, userID, page, limit)
}

func (m *mockBookmarkService) Remove(ctx context.Context, userID, eventID int64) (bool, error) {
	return m.removeFunc(ctx, userID, eventID)
}

// newBookmarkRouter はブックマークハンドラーをマウントしたルーターを返す。
func newBookmarkRouter(service BookmarkServiceInterface) http.Handler {
	h := NewBookmarkHandler(service)
	r := chi.NewRouter()
	r.Put("/api/events/{id}/bookmark", h.SetBookmark)
	r.Delete("/api/events/{id}/bookmark", h.RemoveBookmark)
	r.Get("/api/users/me/bookmarks", h.ListBookmarks)
	return r
}

func TestBookmarkHandler_SetBookmark(t *testing.T) {
	var gotInput bookmark.SetFlagsInput
	service := &mockBookmarkService{
		setFlagsFunc: func(ctx context.Context, userID, eventID int64, input bookmark.SetFlagsInput) (*model.Bookmark, error) {
			if userID != 7 || eventID != 5 {
				t.Errorf("userID/eventID = %d/%d, want 7/5", userID, eventID)
			}
			gotInput = input
			return &model.Bookmark{
				ID:         1,
				UserID:     userID,
				EventID:    eventID,
				IsFavorite: true,
				CreatedAt:  time.Now(),
				UpdatedAt:  time.Now(),
			}, nil
		},
	}

	body := strings.NewReader(`{"isFavorite":true}`)
	req := authedRequest(http.MethodPut, "/api/events/5/bookmark", body, 7)
	rec := httptest.NewRecorder()
	newBookmarkRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	if gotInput.IsFavorite == nil || !*gotInput.IsFavorite {
		t.Errorf("input.IsFavorite = %v, want true", gotInput.IsFavorite)
	}
	// 未指定のフラグはnilのまま渡される
	if gotInput.HasJoined != nil {
		t.Errorf("input.HasJoined = %v, want nil", gotInput.HasJoined)
	}

	var resp bookmarkResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("response decode failed: %v", err)
	}
	if !resp.IsFavorite {
		t.Error("isFavorite should be true")
	}
}

func TestBookmarkHandler_SetBookmark_NoFlags(t *testing.T) {
	service := &mockBookmarkService{
		setFlagsFunc: func(ctx context.Context, userID, eventID int64, input bookmark.SetFlagsInput) (*model.Bookmark, error) {
			t.Fatal("service should not be called without flags")
			return nil, nil
		},
	}

	body := strings.NewReader(`{}`)
	req := authedRequest(http.MethodPut, "/api/events/5/bookmark", body, 7)
	rec := httptest.NewRecorder()
	newBookmarkRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestBookmarkHandler_SetBookmark_EventNotFound(t *testing.T) {
	service := &mockBookmarkService{
		setFlagsFunc: func(ctx context.Context, userID, eventID int64, input bookmark.SetFlagsInput) (*model.Bookmark, error) {
			return nil, model.NewEventNotFoundError(eventID)
		},
	}

	body := strings.NewReader(`{"hasJoined":true}`)
	req := authedRequest(http.MethodPut, "/api/events/999/bookmark", body, 7)
	rec := httptest.NewRecorder()
	newBookmarkRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestBookmarkHandler_RemoveBookmark_Idempotent(t *testing.T) {
	tests := []struct {
		name    string
		existed bool
	}{
		{"existing row", true},
		{"missing row", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockBookmarkService{
				removeFunc: func(ctx context.Context, userID, eventID int64) (bool, error) {
					return tt.existed, nil
				},
			}

			req := authedRequest(http.MethodDelete, "/api/events/5/bookmark", nil, 7)
			rec := httptest.NewRecorder()
			newBookmarkRouter(service).ServeHTTP(rec, req)

			// 行の有無にかかわらず204を返す
			if rec.Code != http.StatusNoContent {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
			}
		})
	}
}

func TestBookmarkHandler_ListBookmarks(t *testing.T) {
	service := &mockBookmarkService{
		listByUserFunc: func(ctx context.Context, userID int64, page, limit int) ([]*model.Bookmark, *model.PageMeta, error) {
			if userID != 7 {
				t.Errorf("userID = %d, want 7", userID)
			}
			return []*model.Bookmark{
				{
					ID:        1,
					UserID:    userID,
					EventID:   5,
					HasJoined: true,
					Event:     testEvent(5),
				},
			}, model.NewPageMeta(1, page, limit), nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/users/me/bookmarks", nil, 7)
	rec := httptest.NewRecorder()
	newBookmarkRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp bookmarkListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("response decode failed: %v", err)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("len(data) = %d, want 1", len(resp.Data))
	}
	if resp.Data[0].Event == nil || resp.Data[0].Event.ID != 5 {
		t.Errorf("event = %+v, want ID 5", resp.Data[0].Event)
	}
}

func TestBookmarkHandler_ListBookmarks_Unauthenticated(t *testing.T) {
	service := &mockBookmarkService{}

	req := httptest.NewRequest(http.MethodGet, "/api/users/me/bookmarks", nil)
	rec := httptest.NewRecorder()
	newBookmarkRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
