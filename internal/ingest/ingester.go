package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/hitoshi/livefes/internal/model"
	"github.com/hitoshi/livefes/internal/security"
)

// パートナーフィードはRSS Eventモジュール（ev名前空間）でイベント情報を持つ。
//   - ev:startdate / ev:enddate : RFC3339形式の開催日時
//   - ev:type                   : "festival/rock" のように 大分類/小分類
//   - ev:location               : "会場名; 住所; 都市" のセミコロン区切り
// 出演アーティストは本文HTMLの<li>要素で列挙される。
const evExtension = "ev"

// EventStore は取り込みが必要とするイベント永続化の操作。
type EventStore interface {
	// FindByTitleAndDate はタイトルと開催日の一致するイベントを検索する。
	// 見つからない場合はnilを返す。
	FindByTitleAndDate(ctx context.Context, title string, startDate time.Time) (*model.Event, error)
	// Create はイベントを作成し、採番されたIDをセットする。
	Create(ctx context.Context, event *model.Event) error
	// DeleteByID はイベントを削除する。
	DeleteByID(ctx context.Context, id int64) error
}

// ArtistResolver は出演アーティストの名前解決を行う。
type ArtistResolver interface {
	// FindOrCreateByName は名前でアーティストを検索し、無ければ作成する。
	FindOrCreateByName(ctx context.Context, name, imageURL string) (*model.Artist, error)
}

// AssociationStore はイベントと出演アーティストの関連を永続化する。
type AssociationStore interface {
	CreateMany(ctx context.Context, eventID int64, artistIDs []int64) error
}

// Result は1回の取り込み実行の結果を表す。
type Result struct {
	// Processed はフィードに含まれていた項目数。
	Processed int
	// Created は新規作成されたイベント数。
	Created int
	// Skipped は登録済み・不正データなどで見送った項目数。
	Skipped int
}

// Ingester はパートナーフィードを取り込み、イベントとして登録する。
// 不正な項目があっても取り込み全体は中断せず、その項目だけを見送る。
type Ingester struct {
	eventStore   EventStore
	artists      ArtistResolver
	associations AssociationStore
	geocoder     Geocoder
	ssrfGuard    security.SSRFGuardService
	timeout      time.Duration
	maxBodySize  int64
}

// NewIngester はIngesterの新しいインスタンスを生成する。
func NewIngester(
	eventStore EventStore,
	artists ArtistResolver,
	associations AssociationStore,
	geocoder Geocoder,
	ssrfGuard security.SSRFGuardService,
	timeout time.Duration,
	maxBodySize int64,
) *Ingester {
	return &Ingester{
		eventStore:   eventStore,
		artists:      artists,
		associations: associations,
		geocoder:     geocoder,
		ssrfGuard:    ssrfGuard,
		timeout:      timeout,
		maxBodySize:  maxBodySize,
	}
}

// Ingest は指定URLのパートナーフィードを取得し、項目をイベントとして登録する。
// フィード自体の取得・解析に失敗した場合のみエラーを返す。
func (ig *Ingester) Ingest(ctx context.Context, feedURL string) (*Result, error) {
	if err := ig.ssrfGuard.ValidateURL(feedURL); err != nil {
		return nil, fmt.Errorf("フィードURLの検証に失敗しました: %w", err)
	}

	client := ig.ssrfGuard.NewSafeClient(ig.timeout, ig.maxBodySize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("フィードリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", "Livefes/1.0 Event Aggregator")
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, */*")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("フィードの取得に失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("フィードの取得でエラー応答を受信しました: status=%d", resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("フィードの解析に失敗しました: %w", err)
	}

	result := &Result{Processed: len(feed.Items)}
	for _, item := range feed.Items {
		created, err := ig.ingestItem(ctx, item)
		if err != nil {
			slog.Warn("フィード項目の取り込みを見送りました",
				"feed_url", feedURL,
				"item_title", item.Title,
				"error", err)
			result.Skipped++
			continue
		}
		if created {
			result.Created++
		} else {
			result.Skipped++
		}
	}

	slog.Info("フィードの取り込みが完了しました",
		"feed_url", feedURL,
		"processed", result.Processed,
		"created", result.Created,
		"skipped", result.Skipped)

	return result, nil
}

// ingestItem はフィード項目1件をイベントとして登録する。
// 登録済みの場合は (false, nil) を返す。
func (ig *Ingester) ingestItem(ctx context.Context, item *gofeed.Item) (bool, error) {
	event, err := buildEvent(item)
	if err != nil {
		return false, err
	}

	existing, err := ig.eventStore.FindByTitleAndDate(ctx, event.Title, event.StartDate)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	lat, lon, err := ig.geocoder.Geocode(ctx, event.Address)
	if err != nil {
		return false, err
	}
	event.Latitude = lat
	event.Longitude = lon

	if err := ig.eventStore.Create(ctx, event); err != nil {
		return false, err
	}

	if err := ig.associateLineup(ctx, event.ID, item.Description); err != nil {
		// 出演者の無いイベント行を残さないよう、作成済みの行を取り消す
		if delErr := ig.eventStore.DeleteByID(ctx, event.ID); delErr != nil {
			slog.Error("取り込み失敗イベントの取り消しに失敗しました",
				"event_id", event.ID,
				"error", delErr)
		}
		return false, fmt.Errorf("出演アーティストの関連付けに失敗しました: %w", err)
	}

	return true, nil
}

// associateLineup は本文HTMLから出演者を抽出し、イベントに関連付ける。
func (ig *Ingester) associateLineup(ctx context.Context, eventID int64, rawHTML string) error {
	names := ExtractLineup(rawHTML)
	if len(names) == 0 {
		return nil
	}

	artistIDs := make([]int64, 0, len(names))
	for _, name := range names {
		artist, err := ig.artists.FindOrCreateByName(ctx, name, "")
		if err != nil {
			return fmt.Errorf("アーティストの解決に失敗しました (%s): %w", name, err)
		}
		artistIDs = append(artistIDs, artist.ID)
	}

	return ig.associations.CreateMany(ctx, eventID, artistIDs)
}

// buildEvent はフィード項目からイベントを組み立てる。
// 必須の拡張要素が欠けている場合はエラーを返す。
func buildEvent(item *gofeed.Item) (*model.Event, error) {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return nil, fmt.Errorf("タイトルがありません")
	}

	startDate, err := parseExtensionTime(item, "startdate")
	if err != nil {
		return nil, err
	}
	endDate, err := parseExtensionTime(item, "enddate")
	if err != nil {
		return nil, err
	}
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("終了日時が開始日時より前です")
	}

	eventType, eventSubtype, err := parseTypeExtension(item)
	if err != nil {
		return nil, err
	}

	placeName, address, city, err := parseLocationExtension(item)
	if err != nil {
		return nil, err
	}

	var bannerURL string
	if item.Image != nil {
		bannerURL = item.Image.URL
	}

	now := time.Now()
	return &model.Event{
		Title:       title,
		Description: strings.TrimSpace(item.Description),
		BannerURL:   bannerURL,
		StartDate:   startDate,
		EndDate:     endDate,
		StartHour:   startDate,
		PlaceName:   placeName,
		Address:     address,
		City:        city,
		Type:        eventType,
		Subtype:     eventSubtype,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// extensionValue はev名前空間の拡張要素の値を返す。無い場合は空文字列。
func extensionValue(item *gofeed.Item, key string) string {
	exts, ok := item.Extensions[evExtension]
	if !ok {
		return ""
	}
	values, ok := exts[key]
	if !ok || len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0].Value)
}

// parseExtensionTime はRFC3339形式の拡張要素を日時として解析する。
func parseExtensionTime(item *gofeed.Item, key string) (time.Time, error) {
	raw := extensionValue(item, key)
	if raw == "" {
		return time.Time{}, fmt.Errorf("ev:%s がありません", key)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("ev:%s の解析に失敗しました: %w", key, err)
	}
	return t, nil
}

// parseTypeExtension は "大分類/小分類" 形式のev:typeを解析する。
func parseTypeExtension(item *gofeed.Item) (model.EventType, model.EventSubtype, error) {
	raw := extensionValue(item, "type")
	if raw == "" {
		return "", "", fmt.Errorf("ev:type がありません")
	}

	parts := strings.SplitN(raw, "/", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("ev:type の形式が不正です: %s", raw)
	}

	eventType := model.EventType(strings.TrimSpace(parts[0]))
	eventSubtype := model.EventSubtype(strings.TrimSpace(parts[1]))
	if !model.ValidEventType(eventType) {
		return "", "", fmt.Errorf("未定義のイベント種別です: %s", eventType)
	}
	if !model.ValidEventSubtype(eventSubtype) {
		return "", "", fmt.Errorf("未定義のジャンルです: %s", eventSubtype)
	}

	return eventType, eventSubtype, nil
}

// parseLocationExtension は "会場名; 住所; 都市" 形式のev:locationを解析する。
func parseLocationExtension(item *gofeed.Item) (placeName, address, city string, err error) {
	raw := extensionValue(item, "location")
	if raw == "" {
		return "", "", "", fmt.Errorf("ev:location がありません")
	}

	parts := strings.Split(raw, ";")
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("ev:location の形式が不正です: %s", raw)
	}

	placeName = strings.TrimSpace(parts[0])
	address = strings.TrimSpace(parts[1])
	city = strings.TrimSpace(parts[2])
	if placeName == "" || address == "" || city == "" {
		return "", "", "", fmt.Errorf("ev:location に空の要素があります: %s", raw)
	}

	return placeName, address, city, nil
}
