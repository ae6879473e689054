// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラー・サービス層・取り込みワーカーから利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordUpload(entityType string)
	RecordUploadFailure(entityType string)
	RecordCleanupFailure()
	RecordIngestCreated(count int)
	RecordIngestSkipped(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus      *prometheus.CounterVec
	requestLatency  prometheus.Histogram
	uploads         *prometheus.CounterVec
	uploadFailures  *prometheus.CounterVec
	cleanupFailures prometheus.Counter
	ingestCreated   prometheus.Counter
	ingestSkipped   prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "livefes_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "livefes_http_request_duration_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "livefes_uploads_total",
			Help: "エンティティ種別ごとの画像アップロード成功数",
		}, []string{"entity_type"}),
		uploadFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "livefes_upload_failures_total",
			Help: "エンティティ種別ごとの画像アップロード失敗数",
		}, []string{"entity_type"}),
		cleanupFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livefes_file_cleanup_failures_total",
			Help: "画像ファイル削除失敗の合計数（孤児ファイルの発生数）",
		}),
		ingestCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livefes_ingest_created_total",
			Help: "フィード取り込みで作成されたイベントの合計数",
		}),
		ingestSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livefes_ingest_skipped_total",
			Help: "フィード取り込みで見送られた項目の合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.uploads,
		c.uploadFailures,
		c.cleanupFailures,
		c.ingestCreated,
		c.ingestSkipped,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordUpload は画像アップロード成功を記録する。
func (c *Collector) RecordUpload(entityType string) {
	c.uploads.WithLabelValues(entityType).Inc()
}

// RecordUploadFailure は画像アップロード失敗を記録する。
func (c *Collector) RecordUploadFailure(entityType string) {
	c.uploadFailures.WithLabelValues(entityType).Inc()
}

// RecordCleanupFailure は画像ファイル削除の失敗を記録する。
// 孤児ファイルの発生量を監視するために使用する。
func (c *Collector) RecordCleanupFailure() {
	c.cleanupFailures.Inc()
}

// RecordIngestCreated は取り込みで作成されたイベント数を記録する。
func (c *Collector) RecordIngestCreated(count int) {
	c.ingestCreated.Add(float64(count))
}

// RecordIngestSkipped は取り込みで見送られた項目数を記録する。
func (c *Collector) RecordIngestSkipped(count int) {
	c.ingestSkipped.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
// /metricsルートとしてルーターに登録して使用する。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
