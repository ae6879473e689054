// Package bookmark はユーザーとイベントのブックマーク（お気に入り・参加）管理を提供する。
package bookmark

import (
	"context"
	"time"

	"github.com/hitoshi/livefes/internal/model"
	"github.com/hitoshi/livefes/internal/repository"
)

// SetFlagsInput はブックマークフラグ更新の入力を表す。
// nilのフィールドは「変更なし」を意味する。
type SetFlagsInput struct {
	IsFavorite *bool
	HasJoined  *bool
}

// BookmarkService はブックマーク管理のサービス層。
// (user, event) の組ごとに1行をupsertで管理する。
type BookmarkService struct {
	bookmarkRepo repository.BookmarkRepository
	eventRepo    repository.EventRepository
}

// NewBookmarkService はBookmarkServiceの新しいインスタンスを生成する。
func NewBookmarkService(bookmarkRepo repository.BookmarkRepository, eventRepo repository.EventRepository) *BookmarkService {
	return &BookmarkService{bookmarkRepo: bookmarkRepo, eventRepo: eventRepo}
}

// SetFlags はブックマークのフラグを更新する。行が無ければ作成する。
// イベントが存在しない場合はエラーを返す。
func (s *BookmarkService) SetFlags(ctx context.Context, userID, eventID int64, input SetFlagsInput) (*model.Bookmark, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, model.NewEventNotFoundError(eventID)
	}

	bookmark, err := s.bookmarkRepo.FindByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if bookmark == nil {
		bookmark = &model.Bookmark{
			UserID:    userID,
			EventID:   eventID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		applyFlags(bookmark, input)
		if err := s.bookmarkRepo.Create(ctx, bookmark); err != nil {
			return nil, err
		}
		return bookmark, nil
	}

	applyFlags(bookmark, input)
	bookmark.UpdatedAt = now
	if err := s.bookmarkRepo.Update(ctx, bookmark); err != nil {
		return nil, err
	}

	return bookmark, nil
}

// applyFlags は非nilのフラグをブックマークに反映する。
func applyFlags(bookmark *model.Bookmark, input SetFlagsInput) {
	if input.IsFavorite != nil {
		bookmark.IsFavorite = *input.IsFavorite
	}
	if input.HasJoined != nil {
		bookmark.HasJoined = *input.HasJoined
	}
}

// ListByUser は指定ユーザーのブックマーク一覧とページ情報を返す。
func (s *BookmarkService) ListByUser(ctx context.Context, userID int64, page, limit int) ([]*model.Bookmark, *model.PageMeta, error) {
	bookmarks, total, err := s.bookmarkRepo.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, nil, err
	}

	page, limit = model.NormalizePage(page, limit)
	return bookmarks, model.NewPageMeta(total, page, limit), nil
}

// Remove はブックマークを削除する。
// 存在しない場合はエラーではなくfalseを返す。
func (s *BookmarkService) Remove(ctx context.Context, userID, eventID int64) (bool, error) {
	return s.bookmarkRepo.DeleteByUserAndEvent(ctx, userID, eventID)
}
