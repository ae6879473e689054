// Package handler はHTTP APIのハンドラー層を提供する。
//
// 各リソースのハンドラーはサービス層の最小インターフェースに依存し、
// エラーは統一フォーマット（code, message, category, action）で返す。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/livefes/internal/event"
	"github.com/hitoshi/livefes/internal/metrics"
	"github.com/hitoshi/livefes/internal/middleware"
	"github.com/hitoshi/livefes/internal/model"
	"github.com/hitoshi/livefes/internal/storage"
)

// validate はリクエスト入力の検証に使用する共有バリデーター。
var validate = validator.New()

// EventServiceInterface はイベントハンドラーが必要とするサービスインターフェース。
type EventServiceInterface interface {
	// Create はイベントを作成し、バナー保存と出演者の関連付けを行う。
	Create(ctx context.Context, input event.CreateEventInput) (*model.Event, error)
	// GetAll はフィルター条件に一致するイベント一覧とページ情報を返す。
	GetAll(ctx context.Context, filter model.EventFilter) ([]*model.Event, *model.PageMeta, error)
	// GetByID は指定IDのイベントを出演アーティスト付きで取得する。
	GetByID(ctx context.Context, id int64) (*model.Event, error)
	// Update はイベントを部分更新する。
	Update(ctx context.Context, id int64, input event.UpdateEventInput) (*model.Event, error)
	// Delete はイベントとバナーファイルを削除する。
	// 対象が存在しない場合はエラーとせずfalseを返す。
	Delete(ctx context.Context, id int64) (bool, storage.Cleanup, error)
}

// EventHandler はイベント管理のHTTPハンドラー。
type EventHandler struct {
	service       EventServiceInterface
	maxUploadSize int64
	collector     metrics.MetricsCollector
}

// NewEventHandler はEventHandlerを生成する。
func NewEventHandler(service EventServiceInterface, maxUploadSize int64, collector metrics.MetricsCollector) *EventHandler {
	return &EventHandler{
		service:       service,
		maxUploadSize: maxUploadSize,
		collector:     collector,
	}
}

// createEventForm はイベント作成フォームの検証対象フィールド。
type createEventForm struct {
	Title       string `validate:"required,max=255"`
	Description string `validate:"max=5000"`
	PlaceName   string `validate:"required,max=255"`
	Address     string `validate:"required,max=255"`
	City        string `validate:"required,max=100"`
	Type        string `validate:"required"`
	Subtype     string `validate:"required"`
}

// artistResponse は出演アーティストのAPIレスポンス。
type artistResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// eventResponse はイベント情報のAPIレスポンス。
type eventResponse struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	BannerURL   string           `json:"bannerUrl"`
	StartDate   time.Time        `json:"startDate"`
	EndDate     time.Time        `json:"endDate"`
	StartHour   time.Time        `json:"startHour"`
	OpenHour    *time.Time       `json:"openHour,omitempty"`
	Latitude    float64          `json:"latitude"`
	Longitude   float64          `json:"longitude"`
	PlaceName   string           `json:"placeName"`
	Address     string           `json:"address"`
	City        string           `json:"city"`
	Type        string           `json:"type"`
	Subtype     string           `json:"subtype"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	Artists     []artistResponse `json:"artists"`
}

// eventListResponse はイベント一覧のAPIレスポンス。
type eventListResponse struct {
	Data []eventResponse `json:"data"`
	Meta model.PageMeta  `json:"meta"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// ListEvents はイベント一覧を取得する。
// GET /api/events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := model.EventFilter{
		Type:    model.EventType(q.Get("type")),
		Subtype: model.EventSubtype(q.Get("subtype")),
		City:    q.Get("city"),
	}

	if filter.Type != "" && !model.ValidEventType(filter.Type) {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("typeの値が不正です"))
		return
	}
	if filter.Subtype != "" && !model.ValidEventSubtype(filter.Subtype) {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("subtypeの値が不正です"))
		return
	}

	if v := q.Get("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("start_dateはYYYY-MM-DD形式で指定してください"))
			return
		}
		filter.StartDate = &t
	}
	if v := q.Get("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("end_dateはYYYY-MM-DD形式で指定してください"))
			return
		}
		filter.EndDate = &t
	}

	filter.Page, filter.Limit = parsePageParams(q.Get("page"), q.Get("limit"))

	events, meta, err := h.service.GetAll(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := eventListResponse{
		Data: make([]eventResponse, 0, len(events)),
		Meta: *meta,
	}
	for _, e := range events {
		resp.Data = append(resp.Data, toEventResponse(e))
	}

	writeJSONResponse(w, http.StatusOK, resp)
}

// GetEvent はイベント詳細を出演アーティスト付きで取得する。
// GET /api/events/:id
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	ev, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toEventResponse(ev))
}

// CreateEvent はイベントを作成する。
// POST /api/events (multipart/form-data、バナー画像必須)
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidMultipartError())
		return
	}

	form := createEventForm{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		PlaceName:   r.FormValue("placeName"),
		Address:     r.FormValue("address"),
		City:        r.FormValue("city"),
		Type:        r.FormValue("type"),
		Subtype:     r.FormValue("subtype"),
	}
	if err := validate.Struct(form); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError(formatValidationError(err)))
		return
	}

	input := event.CreateEventInput{
		Title:       form.Title,
		Description: form.Description,
		PlaceName:   form.PlaceName,
		Address:     form.Address,
		City:        form.City,
		Type:        model.EventType(form.Type),
		Subtype:     model.EventSubtype(form.Subtype),
	}
	if !model.ValidEventType(input.Type) {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("typeの値が不正です"))
		return
	}
	if !model.ValidEventSubtype(input.Subtype) {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("subtypeの値が不正です"))
		return
	}

	var err error
	if input.StartDate, err = parseTimeForm(r, "startDate"); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError(err.Error()))
		return
	}
	if input.EndDate, err = parseTimeForm(r, "endDate"); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError(err.Error()))
		return
	}
	if input.StartHour, err = parseTimeForm(r, "startHour"); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError(err.Error()))
		return
	}
	if v, ok := formValue(r, "openHour"); ok && v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("openHourはRFC3339形式で指定してください"))
			return
		}
		input.OpenHour = &t
	}
	if input.Latitude, err = parseFloatForm(r, "latitude"); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError(err.Error()))
		return
	}
	if input.Longitude, err = parseFloatForm(r, "longitude"); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError(err.Error()))
		return
	}
	if v, ok := formValue(r, "artistIds"); ok {
		ids, err := parseArtistIDs(v)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError(err.Error()))
			return
		}
		input.ArtistIDs = ids
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
	input.Banner = banner

	ev, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.recordUploadError("event", err)
		handleServiceError(w, err)
		return
	}

	h.collector.RecordUpload("event")
	writeJSONResponse(w, http.StatusCreated, toEventResponse(ev))
}

// UpdateEvent はイベントを部分更新する。
// PATCH /api/events/:id (multipart/form-data、未指定のフィールドは変更しない)
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
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

	var input event.UpdateEventInput

	if v, ok := formValue(r, "title"); ok {
		if strings.TrimSpace(v) == "" {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("titleは空にできません"))
			return
		}
		input.Title = &v
	}
	if v, ok := formValue(r, "description"); ok {
		input.Description = &v
	}
	if v, ok := formValue(r, "placeName"); ok {
		input.PlaceName = &v
	}
	if v, ok := formValue(r, "address"); ok {
		input.Address = &v
	}
	if v, ok := formValue(r, "city"); ok {
		input.City = &v
	}
	if v, ok := formValue(r, "type"); ok {
		t := model.EventType(v)
		if !model.ValidEventType(t) {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("typeの値が不正です"))
			return
		}
		input.Type = &t
	}
	if v, ok := formValue(r, "subtype"); ok {
		s := model.EventSubtype(v)
		if !model.ValidEventSubtype(s) {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("subtypeの値が不正です"))
			return
		}
		input.Subtype = &s
	}

	timeFields := []struct {
		key  string
		dest **time.Time
	}{
		{"startDate", &input.StartDate},
		{"endDate", &input.EndDate},
		{"startHour", &input.StartHour},
		{"openHour", &input.OpenHour},
	}
	for _, f := range timeFields {
		if v, ok := formValue(r, f.key); ok {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError(f.key+"はRFC3339形式で指定してください"))
				return
			}
			*f.dest = &t
		}
	}

	if v, ok := formValue(r, "latitude"); ok {
		lat, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("latitudeは数値で指定してください"))
			return
		}
		input.Latitude = &lat
	}
	if v, ok := formValue(r, "longitude"); ok {
		lon, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("longitudeは数値で指定してください"))
			return
		}
		input.Longitude = &lon
	}

	// artistIdsフィールドが存在する場合（空値を含む）は出演者セットを全置換する
	if v, ok := formValue(r, "artistIds"); ok {
		ids, err := parseArtistIDs(v)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError(err.Error()))
			return
		}
		if ids == nil {
			ids = []int64{}
		}
		input.ArtistIDs = &ids
	}

	banner, closeBanner, err := extractFormFile(r, "banner")
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if banner != nil {
		defer closeBanner()
		input.Banner = banner
	}

	ev, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		if banner != nil {
			h.recordUploadError("event", err)
		}
		handleServiceError(w, err)
		return
	}

	if banner != nil {
		h.collector.RecordUpload("event")
	}
	writeJSONResponse(w, http.StatusOK, toEventResponse(ev))
}

// DeleteEvent はイベントとバナーファイルを削除する。
// DELETE /api/events/:id
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
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
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewEventNotFoundError(id))
		return
	}

	h.observeCleanup("event", id, cleanup)
	w.WriteHeader(http.StatusNoContent)
}

// recordUploadError はアップロード起因のエラーのみメトリクスに記録する。
func (h *EventHandler) recordUploadError(entityType string, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeUploadFailed {
		h.collector.RecordUploadFailure(entityType)
	}
}

// observeCleanup は旧ファイル削除の失敗をログとメトリクスに記録する。
// 削除失敗は行の削除を妨げないため、レスポンスには影響しない。
func (h *EventHandler) observeCleanup(entityType string, entityID int64, cleanup storage.Cleanup) {
	if cleanup.Attempted && cleanup.Err != nil {
		h.collector.RecordCleanupFailure()
		slog.Warn("orphaned file left behind",
			slog.String("entity_type", entityType),
			slog.Int64("entity_id", entityID),
			slog.String("error", cleanup.Err.Error()),
		)
	}
}

// --- ヘルパー関数 ---

// toEventResponse はmodel.EventからAPIレスポンスに変換する。
func toEventResponse(ev *model.Event) eventResponse {
	resp := eventResponse{
		ID:          ev.ID,
		Title:       ev.Title,
		Description: ev.Description,
		BannerURL:   ev.BannerURL,
		StartDate:   ev.StartDate,
		EndDate:     ev.EndDate,
		StartHour:   ev.StartHour,
		OpenHour:    ev.OpenHour,
		Latitude:    ev.Latitude,
		Longitude:   ev.Longitude,
		PlaceName:   ev.PlaceName,
		Address:     ev.Address,
		City:        ev.City,
		Type:        string(ev.Type),
		Subtype:     string(ev.Subtype),
		CreatedAt:   ev.CreatedAt,
		UpdatedAt:   ev.UpdatedAt,
		Artists:     make([]artistResponse, 0, len(ev.Artists)),
	}
	for _, a := range ev.Artists {
		resp.Artists = append(resp.Artists, toArtistResponse(a))
	}
	return resp
}

// toArtistResponse はmodel.ArtistからAPIレスポンスに変換する。
func toArtistResponse(a *model.Artist) artistResponse {
	return artistResponse{
		ID:        a.ID,
		Name:      a.Name,
		Image:     a.Image,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// requireUserID はコンテキストから認証済みユーザーIDを取得する。
// 未認証の場合は401を書き込み、okにfalseを返す。
func requireUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, unauthorizedError())
		return 0, false
	}
	return userID, true
}

// parseIDParam はURLパスの:idパラメータをint64として取得する。
// 数値でない場合は400を書き込み、okにfalseを返す。
func parseIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("IDは正の整数で指定してください"))
		return 0, false
	}
	return id, true
}

// parsePageParams はクエリ文字列からページ番号と件数を取得する。
// 不正な値はデフォルトにフォールバックする。
func parsePageParams(pageStr, limitStr string) (int, int) {
	page, _ := strconv.Atoi(pageStr)
	limit, _ := strconv.Atoi(limitStr)
	return model.NormalizePage(page, limit)
}

// formValue はmultipartフォームにキーが存在するかどうかを区別して値を返す。
// 部分更新で「未指定」と「空文字列」を区別するために使用する。
func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// parseTimeForm は必須のRFC3339日時フィールドを解析する。
func parseTimeForm(r *http.Request, key string) (time.Time, error) {
	v, ok := formValue(r, key)
	if !ok || v == "" {
		return time.Time{}, errors.New(key + "は必須です")
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, errors.New(key + "はRFC3339形式で指定してください")
	}
	return t, nil
}

// parseFloatForm は必須の数値フィールドを解析する。
func parseFloatForm(r *http.Request, key string) (float64, error) {
	v, ok := formValue(r, key)
	if !ok || v == "" {
		return 0, errors.New(key + "は必須です")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.New(key + "は数値で指定してください")
	}
	return f, nil
}

// parseArtistIDs はカンマ区切りのアーティストIDリストを解析する。
// 空文字列はnilを返す。
func parseArtistIDs(v string) ([]int64, error) {
	if strings.TrimSpace(v) == "" {
		return nil, nil
	}
	parts := strings.Split(v, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || id < 1 {
			return nil, errors.New("artistIdsは正の整数のカンマ区切りで指定してください")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// extractFormFile はmultipartフォームからアップロードファイルを取り出す。
// ファイルが添付されていない場合は(nil, nil, nil)を返す。
// 呼び出し側はファイル使用後にclose関数を呼ぶこと。
func extractFormFile(r *http.Request, key string) (*storage.File, func(), error) {
	file, header, err := r.FormFile(key)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, model.NewUploadFailedError("ファイルの読み取りに失敗しました")
	}

	f := &storage.File{
		Name:    header.Filename,
		Size:    header.Size,
		Content: file,
	}
	return f, func() { file.Close() }, nil
}

// writeJSONResponse はJSONレスポンスを書き込む。
func writeJSONResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSONResponse(w, statusCode, apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// unauthorizedError は認証されていないリクエストへのエラーを生成する。
func unauthorizedError() *model.APIError {
	return &model.APIError{
		Code:     "UNAUTHORIZED",
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// invalidRequestBodyError はJSONボディ解析失敗のエラーを生成する。
func invalidRequestBodyError() *model.APIError {
	return &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// invalidMultipartError はmultipartフォーム解析失敗のエラーを生成する。
func invalidMultipartError() *model.APIError {
	return &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "フォームデータの解析に失敗しました。",
		Category: "validation",
		Action:   "multipart/form-data形式でリクエストしてください。",
	}
}

// formatValidationError はvalidatorのエラーを読みやすい理由文字列に変換する。
func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	reasons := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			reasons = append(reasons, fe.Field()+"は必須です")
		case "max":
			reasons = append(reasons, fe.Field()+"が長すぎます")
		case "min":
			reasons = append(reasons, fe.Field()+"が短すぎます")
		case "email":
			reasons = append(reasons, fe.Field()+"はメールアドレス形式で指定してください")
		default:
			reasons = append(reasons, fe.Field()+"の値が不正です")
		}
	}
	return strings.Join(reasons, ", ")
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	// 存在しないアーティストIDの集約エラーは統一フォーマットに変換する
	var artistsErr *model.ArtistsNotFoundError
	if errors.As(err, &artistsErr) {
		writeAPIErrorResponse(w, http.StatusBadRequest, artistsErr.APIError())
		return
	}

	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidation, model.ErrCodeArtistsNotFound,
		model.ErrCodeBannerRequired, model.ErrCodeImageRequired, model.ErrCodeInvalidFileType:
		return http.StatusBadRequest
	case model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeNotMessageOwner:
		return http.StatusForbidden
	case model.ErrCodeEventNotFound, model.ErrCodeArtistNotFound,
		model.ErrCodeUserNotFound, model.ErrCodeMessageNotFound:
		return http.StatusNotFound
	case model.ErrCodeEmailTaken, model.ErrCodeOAuthNotLinked:
		return http.StatusConflict
	case model.ErrCodeUploadFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
