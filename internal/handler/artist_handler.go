package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/hitoshi/livefes/internal/artist"
	"github.com/hitoshi/livefes/internal/metrics"
	"github.com/hitoshi/livefes/internal/model"
	"github.com/hitoshi/livefes/internal/storage"
)

// ArtistServiceInterface はアーティストハンドラーが必要とするサービスインターフェース。
type ArtistServiceInterface interface {
	// GetAll は絞り込み条件に一致するアーティスト一覧とページ情報を返す。
	GetAll(ctx context.Context, filter model.ArtistFilter) ([]*model.Artist, *model.PageMeta, error)
	// GetByID は指定IDのアーティストを取得する。
	GetByID(ctx context.Context, id int64) (*model.Artist, error)
	// Create はアーティストを作成する。画像は必須。
	Create(ctx context.Context, input artist.CreateArtistInput) (*model.Artist, error)
	// Update はアーティストを部分更新する。
	Update(ctx context.Context, id int64, input artist.UpdateArtistInput) (*model.Artist, error)
	// Delete はアーティストと画像ファイルを削除する。
	// 対象が存在しない場合はエラーとせずfalseを返す。
	Delete(ctx context.Context, id int64) (bool, storage.Cleanup, error)
}

// ArtistHandler はアーティスト管理のHTTPハンドラー。
type ArtistHandler struct {
	service       ArtistServiceInterface
	maxUploadSize int64
	collector     metrics.MetricsCollector
}

// NewArtistHandler はArtistHandlerを生成する。
func NewArtistHandler(service ArtistServiceInterface, maxUploadSize int64, collector metrics.MetricsCollector) *ArtistHandler {
	return &ArtistHandler{
		service:       service,
		maxUploadSize: maxUploadSize,
		collector:     collector,
	}
}

// artistListResponse はアーティスト一覧のAPIレスポンス。
type artistListResponse struct {
	Data []artistResponse `json:"data"`
	Meta model.PageMeta   `json:"meta"`
}

// ListArtists はアーティスト一覧を取得する。
// GET /api/artists
func (h *ArtistHandler) ListArtists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := model.ArtistFilter{
		Name: q.Get("name"),
	}
	filter.Page, filter.Limit = parsePageParams(q.Get("page"), q.Get("limit"))

	artists, meta, err := h.service.GetAll(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := artistListResponse{
		Data: make([]artistResponse, 0, len(artists)),
		Meta: *meta,
	}
	for _, a := range artists {
		resp.Data = append(resp.Data, toArtistResponse(a))
	}

	writeJSONResponse(w, http.StatusOK, resp)
}

// GetArtist はアーティスト詳細を取得する。
// GET /api/artists/:id
func (h *ArtistHandler) GetArtist(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	a, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toArtistResponse(a))
}

// CreateArtist はアーティストを作成する。
// POST /api/artists (multipart/form-data、画像必須)
func (h *ArtistHandler) CreateArtist(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidMultipartError())
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("nameは必須です"))
		return
	}

	image, closeImage, err := extractFormFile(r, "image")
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if image == nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewImageRequiredError())
		return
	}
	defer closeImage()

	input := artist.CreateArtistInput{Name: name, Image: image}

	a, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.recordUploadError(err)
		handleServiceError(w, err)
		return
	}

	h.collector.RecordUpload("artist")
	writeJSONResponse(w, http.StatusCreated, toArtistResponse(a))
}

// UpdateArtist はアーティストを部分更新する。
// PATCH /api/artists/:id (multipart/form-data)
func (h *ArtistHandler) UpdateArtist(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidMultipartError())
		return
	}

	var input artist.UpdateArtistInput

	if v, ok := formValue(r, "name"); ok {
		if strings.TrimSpace(v) == "" {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("nameは空にできません"))
			return
		}
		input.Name = &v
	}

	image, closeImage, err := extractFormFile(r, "image")
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if image != nil {
		defer closeImage()
		input.Image = image
	}

	a, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		if image != nil {
			h.recordUploadError(err)
		}
		handleServiceError(w, err)
		return
	}

	if image != nil {
		h.collector.RecordUpload("artist")
	}
	writeJSONResponse(w, http.StatusOK, toArtistResponse(a))
}

// DeleteArtist はアーティストと画像ファイルを削除する。
// DELETE /api/artists/:id
func (h *ArtistHandler) DeleteArtist(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	deleted, cleanup, err := h.service.Delete(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if !deleted {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewArtistNotFoundError(id))
		return
	}

	if cleanup.Attempted && cleanup.Err != nil {
		h.collector.RecordCleanupFailure()
	}
	w.WriteHeader(http.StatusNoContent)
}

// recordUploadError はアップロード起因のエラーのみメトリクスに記録する。
func (h *ArtistHandler) recordUploadError(err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeUploadFailed {
		h.collector.RecordUploadFailure("artist")
	}
}
