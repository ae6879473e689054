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

	"github.com/hitoshi/livefes/internal/model"
)

// mockMessageService は関数フィールドで振る舞いを差し替えられるモック。
type mockMessageService struct {
	listByEventFunc func(ctx context.Context, eventID int64, page, limit int) ([]*model.Message, *model.PageMeta, error)
	createFunc      func(ctx context.Context, userID, eventID int64, content string) (*model.Message, error)
	updateFunc      func(ctx context.Context, userID int64, messageID, content string) (*model.Message, error)
	deleteFunc      func(ctx context.Context, userID int64, messageID string) error
}

func (m *mockMessageService) ListByEvent(ctx context.Context, eventID int64, page, limit int) ([]*model.Message, *model.PageMeta, error) {
	return m.listByEventFunc(ctx, eventID, page, limit)
}

func (m *mockMessageService) Create(ctx context.Context, userID, eventID int64, content string) (*model.Message, error) {
	return m.createFunc(ctx, userID, eventID, content)
}

func (m *mockMessageService) Update(ctx context.Context, userID int64, messageID, content string) (*model.Message, error) {
	return m.updateFunc(ctx, userID, messageID, content)
}

func (m *mockMessageService) Delete(ctx context.Context, userID int64, messageID string) error {
	return m.deleteFunc(ctx, userID, messageID)
}

// newMessageRouter はメッセージハンドラーをマウントしたルーターを返す。
func newMessageRouter(service MessageServiceInterface) http.Handler {
	h := NewMessageHandler(service)
	r := chi.NewRouter()
	r.Get("/api/events/{id}/messages", h.ListMessages)
	r.Post("/api/events/{id}/messages", h.CreateMessage)
	r.Patch("/api/messages/{messageId}", h.UpdateMessage)
	r.Delete("/api/messages/{messageId}", h.DeleteMessage)
	return r
}

func testMessage(id string, userID, eventID int64) *model.Message {
	return &model.Message{
		ID:        id,
		UserID:    userID,
		EventID:   eventID,
		Content:   "最高のステージでした",
		CreatedAt: time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC),
		User: &model.User{
			ID:       userID,
			FullName: "田中太郎",
		},
	}
}

func TestMessageHandler_ListMessages(t *testing.T) {
	service := &mockMessageService{
		listByEventFunc: func(ctx context.Context, eventID int64, page, limit int) ([]*model.Message, *model.PageMeta, error) {
			if eventID != 5 {
				t.Errorf("eventID = %d, want 5", eventID)
			}
			return []*model.Message{testMessage("msg_abc", 7, 5)}, model.NewPageMeta(1, page, limit), nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/events/5/messages", nil)
	rec := httptest.NewRecorder()
	newMessageRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp messageListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("response decode failed: %v", err)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("len(data) = %d, want 1", len(resp.Data))
	}
	if resp.Data[0].User == nil || resp.Data[0].User.FullName != "田中太郎" {
		t.Errorf("user = %+v, want 田中太郎", resp.Data[0].User)
	}
}

func TestMessageHandler_ListMessages_EventNotFound(t *testing.T) {
	service := &mockMessageService{
		listByEventFunc: func(ctx context.Context, eventID int64, page, limit int) ([]*model.Message, *model.PageMeta, error) {
			return nil, nil, model.NewEventNotFoundError(eventID)
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/events/999/messages", nil)
	rec := httptest.NewRecorder()
	newMessageRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestMessageHandler_CreateMessage(t *testing.T) {
	service := &mockMessageService{
		createFunc: func(ctx context.Context, userID, eventID int64, content string) (*model.Message, error) {
			if userID != 7 || eventID != 5 {
				t.Errorf("userID/eventID = %d/%d, want 7/5", userID, eventID)
			}
			m := testMessage("msg_new", userID, eventID)
			m.Content = content
			return m, nil
		},
	}

	body := strings.NewReader(`{"content":"楽しみにしています"}`)
	req := authedRequest(http.MethodPost, "/api/events/5/messages", body, 7)
	rec := httptest.NewRecorder()
	newMessageRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var resp messageResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("response decode failed: %v", err)
	}
	if resp.Content != "楽しみにしています" {
		t.Errorf("content = %q", resp.Content)
	}
}

func TestMessageHandler_CreateMessage_EmptyContent(t *testing.T) {
	service := &mockMessageService{
		createFunc: func(ctx context.Context, userID, eventID int64, content string) (*model.Message, error) {
			t.Fatal("service should not be called for empty content")
			return nil, nil
		},
	}

	body := strings.NewReader(`{"content":""}`)
	req := authedRequest(http.MethodPost, "/api/events/5/messages", body, 7)
	rec := httptest.NewRecorder()
	newMessageRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestMessageHandler_CreateMessage_Unauthenticated(t *testing.T) {
	service := &mockMessageService{}

	body := strings.NewReader(`{"content":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/events/5/messages", body)
	rec := httptest.NewRecorder()
	newMessageRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestMessageHandler_UpdateMessage_NotOwner(t *testing.T) {
	service := &mockMessageService{
		updateFunc: func(ctx context.Context, userID int64, messageID, content string) (*model.Message, error) {
			return nil, model.NewNotMessageOwnerError()
		},
	}

	body := strings.NewReader(`{"content":"書き換え"}`)
	req := authedRequest(http.MethodPatch, "/api/messages/msg_abc", body, 8)
	rec := httptest.NewRecorder()
	newMessageRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if resp := decodeError(t, rec.Body); resp.Code != model.ErrCodeNotMessageOwner {
		t.Errorf("error code = %q, want %q", resp.Code, model.ErrCodeNotMessageOwner)
	}
}

func TestMessageHandler_DeleteMessage(t *testing.T) {
	var gotMessageID string
	service := &mockMessageService{
		deleteFunc: func(ctx context.Context, userID int64, messageID string) error {
			gotMessageID = messageID
			return nil
		},
	}

	req := authedRequest(http.MethodDelete, "/api/messages/msg_abc", nil, 7)
	rec := httptest.NewRecorder()
	newMessageRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if gotMessageID != "msg_abc" {
		t.Errorf("messageID = %q, want msg_abc", gotMessageID)
	}
}

func TestMessageHandler_DeleteMessage_NotFound(t *testing.T) {
	service := &mockMessageService{
		deleteFunc: func(ctx context.Context, userID int64, messageID string) error {
			return model.NewMessageNotFoundError(messageID)
		},
	}

	req := authedRequest(http.MethodDelete, "/api/messages/msg_gone", nil, 7)
	rec := httptest.NewRecorder()
	newMessageRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
