// Package event はイベント管理のドメインロジックを提供する。
package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/livefes/internal/model"
	"github.com/hitoshi/livefes/internal/repository"
	"github.com/hitoshi/livefes/internal/storage"
)

// allowedBannerExtensions はバナー画像として受け付ける拡張子。
var allowedBannerExtensions = []string{"jpg", "jpeg", "png", "webp"}

// bannerConfig はイベントバナーのアップロード設定を返す。
func bannerConfig(eventID int64) storage.UploadConfig {
	return storage.UploadConfig{
		UploadsPath:       "uploads/events",
		AllowedExtensions: allowedBannerExtensions,
		EntityType:        "event",
		EntityID:          eventID,
	}
}

// CreateEventInput はイベント作成の入力を表す。
type CreateEventInput struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	StartHour   time.Time
	OpenHour    *time.Time
	Latitude    float64
	Longitude   float64
	PlaceName   string
	Address     string
	City        string
	Type        model.EventType
	Subtype     model.EventSubtype
	Banner      *storage.File
	ArtistIDs   []int64
}

// UpdateEventInput はイベント更新の入力を表す。
// nilのフィールドは「変更なし」を意味する。
// ArtistIDsが非nilの場合、空スライスであっても出演者セットを全置換する。
type UpdateEventInput struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	StartHour   *time.Time
	OpenHour    *time.Time
	Latitude    *float64
	Longitude   *float64
	PlaceName   *string
	Address     *string
	City        *string
	Type        *model.EventType
	Subtype     *model.EventSubtype
	Banner      *storage.File
	ArtistIDs   *[]int64
}

// EventService はイベント管理のサービス層。
// 行の作成・更新とバナーファイル・出演者関連の整合性を統括する。
type EventService struct {
	eventRepo       repository.EventRepository
	artistRepo      repository.ArtistRepository
	eventArtistRepo repository.EventArtistRepository
	gateway         storage.Gateway
}

// NewEventService はEventServiceの新しいインスタンスを生成する。
func NewEventService(
	eventRepo repository.EventRepository,
	artistRepo repository.ArtistRepository,
	eventArtistRepo repository.EventArtistRepository,
	gateway storage.Gateway,
) *EventService {
	return &EventService{
		eventRepo:       eventRepo,
		artistRepo:      artistRepo,
		eventArtistRepo: eventArtistRepo,
		gateway:         gateway,
	}
}

// validateArtistIDs は指定されたIDがすべて存在することを検証する。
// 欠けているIDがある場合はArtistsNotFoundErrorを返す。
func (s *EventService) validateArtistIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	found, err := s.artistRepo.ListByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("アーティストの確認に失敗しました: %w", err)
	}

	exists := make(map[int64]bool, len(found))
	for _, a := range found {
		exists[a.ID] = true
	}

	var missing []int64
	for _, id := range ids {
		if !exists[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return model.NewArtistsNotFoundError(missing)
	}

	return nil
}

// Create はイベントを作成する。
// フロー: 出演者ID検証 → 行作成 → バナーアップロード → URL反映 → 出演者関連作成。
// 行作成後のステップで失敗した場合は作成済みの行とファイルを巻き戻す。
func (s *EventService) Create(ctx context.Context, input CreateEventInput) (*model.Event, error) {
	if input.Banner == nil {
		return nil, model.NewBannerRequiredError()
	}

	if err := s.validateArtistIDs(ctx, input.ArtistIDs); err != nil {
		return nil, err
	}

	now := time.Now()
	event := &model.Event{
		Title:       input.Title,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		StartHour:   input.StartHour,
		OpenHour:    input.OpenHour,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		PlaceName:   input.PlaceName,
		Address:     input.Address,
		City:        input.City,
		Type:        input.Type,
		Subtype:     input.Subtype,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	cfg := bannerConfig(event.ID)

	url, err := s.gateway.Upload(ctx, input.Banner, cfg)
	if err != nil {
		s.rollbackCreate(ctx, event.ID, "", cfg)
		return nil, err
	}

	event.BannerURL = url
	if err := s.eventRepo.Update(ctx, event); err != nil {
		s.rollbackCreate(ctx, event.ID, url, cfg)
		return nil, err
	}

	if err := s.eventArtistRepo.CreateMany(ctx, event.ID, input.ArtistIDs); err != nil {
		s.rollbackCreate(ctx, event.ID, url, cfg)
		return nil, err
	}

	return s.eventRepo.FindByIDWithArtists(ctx, event.ID)
}

// rollbackCreate は作成途中で失敗したイベントの行とファイルを削除する。
// 巻き戻し自体の失敗はログに残すのみ。
func (s *EventService) rollbackCreate(ctx context.Context, eventID int64, bannerURL string, cfg storage.UploadConfig) {
	if err := s.eventRepo.DeleteByID(ctx, eventID); err != nil {
		slog.Error("イベント作成の巻き戻しに失敗しました",
			slog.Int64("event_id", eventID),
			slog.String("error", err.Error()),
		)
	}
	if bannerURL != "" {
		s.gateway.Delete(ctx, bannerURL, cfg)
	}
}

// GetAll は絞り込み条件に一致するイベントの一覧とページ情報を返す。
func (s *EventService) GetAll(ctx context.Context, filter model.EventFilter) ([]*model.Event, *model.PageMeta, error) {
	events, total, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	page, limit := model.NormalizePage(filter.Page, filter.Limit)
	return events, model.NewPageMeta(total, page, limit), nil
}

// GetByID は指定IDのイベントを出演アーティスト付きで取得する。
func (s *EventService) GetByID(ctx context.Context, id int64) (*model.Event, error) {
	event, err := s.eventRepo.FindByIDWithArtists(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, model.NewEventNotFoundError(id)
	}
	return event, nil
}

// Update はイベントを部分更新する。
// バナーが指定された場合は旧ファイルを差し替える。
// ArtistIDsが非nilの場合は出演者セットを全置換する（空スライスなら全削除）。
func (s *EventService) Update(ctx context.Context, id int64, input UpdateEventInput) (*model.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, model.NewEventNotFoundError(id)
	}

	if input.ArtistIDs != nil {
		if err := s.validateArtistIDs(ctx, *input.ArtistIDs); err != nil {
			return nil, err
		}
	}

	applyEventInput(event, input)

	if input.Banner != nil {
		url, _, err := s.gateway.Replace(ctx, input.Banner, bannerConfig(id), event.BannerURL)
		if err != nil {
			return nil, err
		}
		event.BannerURL = url
	}

	event.UpdatedAt = time.Now()
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}

	if input.ArtistIDs != nil {
		if err := s.eventArtistRepo.DeleteByEventID(ctx, id); err != nil {
			return nil, err
		}
		if err := s.eventArtistRepo.CreateMany(ctx, id, *input.ArtistIDs); err != nil {
			return nil, err
		}
	}

	return s.eventRepo.FindByIDWithArtists(ctx, id)
}

// applyEventInput は非nilの入力フィールドをイベントに反映する。
func applyEventInput(event *model.Event, input UpdateEventInput) {
	if input.Title != nil {
		event.Title = *input.Title
	}
	if input.Description != nil {
		event.Description = *input.Description
	}
	if input.StartDate != nil {
		event.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		event.EndDate = *input.EndDate
	}
	if input.StartHour != nil {
		event.StartHour = *input.StartHour
	}
	if input.OpenHour != nil {
		event.OpenHour = input.OpenHour
	}
	if input.Latitude != nil {
		event.Latitude = *input.Latitude
	}
	if input.Longitude != nil {
		event.Longitude = *input.Longitude
	}
	if input.PlaceName != nil {
		event.PlaceName = *input.PlaceName
	}
	if input.Address != nil {
		event.Address = *input.Address
	}
	if input.City != nil {
		event.City = *input.City
	}
	if input.Type != nil {
		event.Type = *input.Type
	}
	if input.Subtype != nil {
		event.Subtype = *input.Subtype
	}
}

// Delete はイベントと紐づくバナーファイルを削除する。
// 存在しないIDの場合はエラーとせず、deleted=falseを返す（冪等）。
// ファイル削除の失敗はイベント削除をブロックせず、結果を返すのみ。
func (s *EventService) Delete(ctx context.Context, id int64) (bool, storage.Cleanup, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return false, storage.Cleanup{}, err
	}
	if event == nil {
		return false, storage.Cleanup{}, nil
	}

	if err := s.eventRepo.DeleteByID(ctx, id); err != nil {
		return false, storage.Cleanup{}, err
	}

	cleanup := s.gateway.Delete(ctx, event.BannerURL, bannerConfig(id))
	return true, cleanup, nil
}
