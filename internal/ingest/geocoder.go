// Package ingest はパートナーフィードからのイベント取り込みを提供する。
//
// パートナー（フェス主催者・プロモーター）が公開するRSS/Atomフィードを
// 定期的に取り込み、イベント・出演アーティスト・会場座標を登録する。
// フィードURLと住所ジオコーディングはいずれも外部入力のため、
// HTTPアクセスにはSSRF防止付きクライアントを使用する。
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Geocoder は住所から緯度経度を解決するインターフェース。
type Geocoder interface {
	// Geocode は住所文字列を緯度・経度に変換する。
	// 解決できない場合はエラーを返す。
	Geocode(ctx context.Context, address string) (lat, lon float64, err error)
}

// nominatimResult はNominatim APIのレスポンス1件を表す。
// latとlonは文字列で返される。
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// NominatimGeocoder はOpenStreetMapのNominatim APIを使用したGeocoderの実装。
type NominatimGeocoder struct {
	client  *http.Client
	baseURL string
}

// NewNominatimGeocoder はNominatimGeocoderを生成する。
// clientにはSSRF防止付きのHTTPクライアントを渡すこと。
// baseURLが空の場合は公式エンドポイントを使用する。
func NewNominatimGeocoder(client *http.Client, baseURL string) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	return &NominatimGeocoder{client: client, baseURL: baseURL}
}

// Geocode は住所をNominatimで検索し、最上位の結果の座標を返す。
func (g *NominatimGeocoder) Geocode(ctx context.Context, address string) (float64, float64, error) {
	endpoint := fmt.Sprintf("%s/search?format=json&limit=1&q=%s", g.baseURL, url.QueryEscape(address))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("ジオコーディングリクエストの作成に失敗しました: %w", err)
	}
	// Nominatimの利用規約によりUser-Agentの明示が必須
	req.Header.Set("User-Agent", "Livefes/1.0 Event Aggregator")

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("ジオコーディングリクエストに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("ジオコーディングAPIがエラーを返しました: status=%d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, 0, fmt.Errorf("ジオコーディング結果の解析に失敗しました: %w", err)
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("住所を解決できませんでした: %s", address)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("緯度の解析に失敗しました: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("経度の解析に失敗しました: %w", err)
	}

	return lat, lon, nil
}

// compile-time interface check
var _ Geocoder = (*NominatimGeocoder)(nil)
