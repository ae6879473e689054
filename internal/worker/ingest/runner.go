// Package ingest はパートナーフィード取り込みのバックグラウンド実行を提供する。
// スケジューラと失敗時の指数バックオフ戦略を含む。
package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	feedingest "github.com/hitoshi/livefes/internal/ingest"
	"github.com/hitoshi/livefes/internal/metrics"
)

// IngestService はフィード取り込みの実行インターフェース。
type IngestService interface {
	// Ingest は指定フィードを取得し、新規イベントを登録する。
	Ingest(ctx context.Context, feedURL string) (*feedingest.Result, error)
}

// Runner はパートナーフィード取り込みのスケジューリングと並列制御を行う。
// 設定された間隔のティッカーで全フィードを走査し、
// semaphoreパターンで最大並列数を制御しながら取り込みを実行する。
// 失敗したフィードは指数バックオフで次回以降のサイクルからスキップされる。
type Runner struct {
	feedURLs       []string
	ingester       IngestService
	collector      metrics.MetricsCollector
	logger         *slog.Logger
	backoff        *backoffTracker
	maxConcurrency int
}

// NewRunner はRunnerの新しいインスタンスを生成する。
// maxConcurrencyが0以下の場合はデフォルト値4を使用する。
func NewRunner(
	feedURLs []string,
	ingester IngestService,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
	maxConcurrency int,
) *Runner {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	return &Runner{
		feedURLs:       feedURLs,
		ingester:       ingester,
		collector:      collector,
		logger:         logger,
		backoff:        newBackoffTracker(),
		maxConcurrency: maxConcurrency,
	}
}

// Start は指定間隔のティッカーでランナーを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
func (r *Runner) Start(ctx context.Context, interval time.Duration) {
	if len(r.feedURLs) == 0 {
		r.logger.Info("取り込み対象のフィードが設定されていないため、取り込みランナーを起動しません")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.logger.Info("フィード取り込みランナーを開始しました",
		slog.Duration("interval", interval),
		slog.Int("feed_count", len(r.feedURLs)),
		slog.Int("max_concurrency", r.maxConcurrency),
	)

	// 起動直後に1回実行
	r.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("フィード取り込みランナーを停止しました")
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce は全フィードを1回走査し、並列で取り込みを実行する。
// バックオフ期間中のフィードはスキップされる。
func (r *Runner) RunOnce(ctx context.Context) {
	start := time.Now()

	sem := make(chan struct{}, r.maxConcurrency)
	var wg sync.WaitGroup

	for _, url := range r.feedURLs {
		if !r.backoff.Due(url) {
			r.logger.Info("バックオフ期間中のためフィードをスキップします",
				slog.String("feed_url", url),
			)
			continue
		}

		wg.Add(1)
		sem <- struct{}{} // semaphore取得（ブロック）

		go func(feedURL string) {
			defer wg.Done()
			defer func() { <-sem }() // semaphore解放

			r.ingestOne(ctx, feedURL)
		}(url)
	}

	wg.Wait()

	r.logger.Info("取り込みサイクルが完了しました",
		slog.Int("feed_count", len(r.feedURLs)),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
}

// ingestOne は1フィードの取り込みを実行し、結果をメトリクスとバックオフに反映する。
func (r *Runner) ingestOne(ctx context.Context, feedURL string) {
	result, err := r.ingester.Ingest(ctx, feedURL)
	if err != nil {
		r.backoff.RecordFailure(feedURL)
		r.logger.Error("フィード取り込みに失敗しました",
			slog.String("feed_url", feedURL),
			slog.Int("consecutive_errors", r.backoff.ConsecutiveErrors(feedURL)),
			slog.String("error", err.Error()),
		)
		return
	}

	r.backoff.RecordSuccess(feedURL)
	r.collector.RecordIngestCreated(result.Created)
	r.collector.RecordIngestSkipped(result.Skipped)
}
