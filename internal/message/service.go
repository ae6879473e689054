// Package message はイベント掲示板のメッセージ管理のドメインロジックを提供する。
package message

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/livefes/internal/model"
	"github.com/hitoshi/livefes/internal/repository"
	"github.com/hitoshi/livefes/internal/security"
)

// MessageService はメッセージ投稿・編集・削除のサービス層。
// 本文は保存前に必ずサニタイズされ、編集・削除は投稿者本人のみ許可される。
type MessageService struct {
	messageRepo repository.MessageRepository
	eventRepo   repository.EventRepository
	sanitizer   security.MessageSanitizerService
}

// NewMessageService はMessageServiceの新しいインスタンスを生成する。
func NewMessageService(
	messageRepo repository.MessageRepository,
	eventRepo repository.EventRepository,
	sanitizer security.MessageSanitizerService,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		eventRepo:   eventRepo,
		sanitizer:   sanitizer,
	}
}

// ListByEvent は指定イベントのメッセージ一覧とページ情報を返す。
// イベントが存在しない場合はエラーを返す。
func (s *MessageService) ListByEvent(ctx context.Context, eventID int64, page, limit int) ([]*model.Message, *model.PageMeta, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	if event == nil {
		return nil, nil, model.NewEventNotFoundError(eventID)
	}

	messages, total, err := s.messageRepo.ListByEventID(ctx, eventID, page, limit)
	if err != nil {
		return nil, nil, err
	}

	page, limit = model.NormalizePage(page, limit)
	return messages, model.NewPageMeta(total, page, limit), nil
}

// Create はメッセージを投稿する。
// 本文はサニタイズされ、サニタイズ後に空になった場合は検証エラーを返す。
func (s *MessageService) Create(ctx context.Context, userID, eventID int64, content string) (*model.Message, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, model.NewEventNotFoundError(eventID)
	}

	clean := s.sanitizer.Sanitize(content)
	if clean == "" {
		return nil, model.NewValidationError("メッセージ本文が空です")
	}

	message := &model.Message{
		ID:        "msg_" + uuid.NewString(),
		UserID:    userID,
		EventID:   eventID,
		Content:   clean,
		CreatedAt: time.Now(),
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	return s.messageRepo.FindByID(ctx, message.ID)
}

// Update はメッセージ本文を更新する。投稿者本人のみ実行できる。
func (s *MessageService) Update(ctx context.Context, userID int64, messageID, content string) (*model.Message, error) {
	message, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message == nil {
		return nil, model.NewMessageNotFoundError(messageID)
	}
	if message.UserID != userID {
		return nil, model.NewNotMessageOwnerError()
	}

	clean := s.sanitizer.Sanitize(content)
	if clean == "" {
		return nil, model.NewValidationError("メッセージ本文が空です")
	}

	if err := s.messageRepo.UpdateContent(ctx, messageID, clean); err != nil {
		return nil, err
	}

	return s.messageRepo.FindByID(ctx, messageID)
}

// Delete はメッセージを削除する。投稿者本人のみ実行できる。
func (s *MessageService) Delete(ctx context.Context, userID int64, messageID string) error {
	message, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return err
	}
	if message == nil {
		return model.NewMessageNotFoundError(messageID)
	}
	if message.UserID != userID {
		return model.NewNotMessageOwnerError()
	}

	return s.messageRepo.DeleteByID(ctx, messageID)
}
