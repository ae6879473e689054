// Package artist はアーティスト管理のドメインロジックを提供する。
package artist

import (
	"context"
	"time"

	"github.com/hitoshi/livefes/internal/model"
	"github.com/hitoshi/livefes/internal/repository"
	"github.com/hitoshi/livefes/internal/storage"
)

// allowedImageExtensions はアーティスト画像として受け付ける拡張子。
var allowedImageExtensions = []string{"jpg", "jpeg", "png", "webp"}

// imageConfig はアーティスト画像のアップロード設定を返す。
func imageConfig(artistID int64) storage.UploadConfig {
	return storage.UploadConfig{
		UploadsPath:       "uploads/artists",
		AllowedExtensions: allowedImageExtensions,
		EntityType:        "artist",
		EntityID:          artistID,
	}
}

// CreateArtistInput はアーティスト作成の入力を表す。
// Imageは必須。
type CreateArtistInput struct {
	Name  string
	Image *storage.File
}

// UpdateArtistInput はアーティスト更新の入力を表す。
// nilのフィールドは「変更なし」を意味する。
type UpdateArtistInput struct {
	Name  *string
	Image *storage.File
}

// ArtistService はアーティスト管理のサービス層。
type ArtistService struct {
	artistRepo repository.ArtistRepository
	gateway    storage.Gateway
}

// NewArtistService はArtistServiceの新しいインスタンスを生成する。
func NewArtistService(artistRepo repository.ArtistRepository, gateway storage.Gateway) *ArtistService {
	return &ArtistService{artistRepo: artistRepo, gateway: gateway}
}

// GetAll は絞り込み条件に一致するアーティストの一覧とページ情報を返す。
func (s *ArtistService) GetAll(ctx context.Context, filter model.ArtistFilter) ([]*model.Artist, *model.PageMeta, error) {
	artists, total, err := s.artistRepo.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	page, limit := model.NormalizePage(filter.Page, filter.Limit)
	return artists, model.NewPageMeta(total, page, limit), nil
}

// GetByID は指定IDのアーティストを取得する。
func (s *ArtistService) GetByID(ctx context.Context, id int64) (*model.Artist, error) {
	artist, err := s.artistRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if artist == nil {
		return nil, model.NewArtistNotFoundError(id)
	}
	return artist, nil
}

// Create はアーティストを作成する。
// 画像は必須。行作成後にアップロードし、失敗時は行を巻き戻す。
func (s *ArtistService) Create(ctx context.Context, input CreateArtistInput) (*model.Artist, error) {
	if input.Image == nil {
		return nil, model.NewImageRequiredError()
	}

	now := time.Now()
	artist := &model.Artist{
		Name:      input.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.artistRepo.Create(ctx, artist); err != nil {
		return nil, err
	}

	url, err := s.gateway.Upload(ctx, input.Image, imageConfig(artist.ID))
	if err != nil {
		s.artistRepo.DeleteByID(ctx, artist.ID)
		return nil, err
	}
	artist.Image = url
	if err := s.artistRepo.Update(ctx, artist); err != nil {
		s.gateway.Delete(ctx, url, imageConfig(artist.ID))
		s.artistRepo.DeleteByID(ctx, artist.ID)
		return nil, err
	}

	return artist, nil
}

// Update はアーティストを部分更新する。
// 画像が指定された場合は旧ファイルを差し替える。
func (s *ArtistService) Update(ctx context.Context, id int64, input UpdateArtistInput) (*model.Artist, error) {
	artist, err := s.artistRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if artist == nil {
		return nil, model.NewArtistNotFoundError(id)
	}

	if input.Name != nil {
		artist.Name = *input.Name
	}

	if input.Image != nil {
		url, _, err := s.gateway.Replace(ctx, input.Image, imageConfig(id), artist.Image)
		if err != nil {
			return nil, err
		}
		artist.Image = url
	}

	artist.UpdatedAt = time.Now()
	if err := s.artistRepo.Update(ctx, artist); err != nil {
		return nil, err
	}

	return artist, nil
}

// Delete はアーティストと紐づく画像ファイルを削除する。
// 存在しないIDの場合はエラーとせず、deleted=falseを返す（冪等）。
// ファイル削除の失敗はアーティスト削除をブロックしない。
func (s *ArtistService) Delete(ctx context.Context, id int64) (bool, storage.Cleanup, error) {
	artist, err := s.artistRepo.FindByID(ctx, id)
	if err != nil {
		return false, storage.Cleanup{}, err
	}
	if artist == nil {
		return false, storage.Cleanup{}, nil
	}

	if err := s.artistRepo.DeleteByID(ctx, id); err != nil {
		return false, storage.Cleanup{}, err
	}

	cleanup := s.gateway.Delete(ctx, artist.Image, imageConfig(id))
	return true, cleanup, nil
}

// FindOrCreateByName は名前の完全一致でアーティストを検索し、
// 存在しない場合は作成する。フィード取り込みで使用する。
// imageURLは新規作成時のみ反映される。
func (s *ArtistService) FindOrCreateByName(ctx context.Context, name, imageURL string) (*model.Artist, error) {
	existing, err := s.artistRepo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now()
	artist := &model.Artist{
		Name:      name,
		Image:     imageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.artistRepo.Create(ctx, artist); err != nil {
		return nil, err
	}

	return artist, nil
}
