package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	feedingest "github.com/hitoshi/livefes/internal/ingest"
)

// mockIngestService は呼び出しを記録し、URLごとの結果を返すモック。
type mockIngestService struct {
	mu      sync.Mutex
	calls   []string
	results map[string]*feedingest.Result
	errs    map[string]error
}

func newMockIngestService() *mockIngestService {
	return &mockIngestService{
		results: make(map[string]*feedingest.Result),
		errs:    make(map[string]error),
	}
}

func (m *mockIngestService) Ingest(ctx context.Context, feedURL string) (*feedingest.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, feedURL)
	m.mu.Unlock()

	if err, ok := m.errs[feedURL]; ok {
		return nil, err
	}
	if result, ok := m.results[feedURL]; ok {
		return result, nil
	}
	return &feedingest.Result{}, nil
}

func (m *mockIngestService) callCount(feedURL string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.calls {
		if c == feedURL {
			count++
		}
	}
	return count
}

// mockRunnerCollector は取り込みメトリクスの記録を数えるモック。
type mockRunnerCollector struct {
	mu      sync.Mutex
	created int
	skipped int
}

func (c *mockRunnerCollector) RecordHTTPStatus(statusCode int)             {}
func (c *mockRunnerCollector) RecordRequestLatency(duration time.Duration) {}
func (c *mockRunnerCollector) RecordUpload(entityType string)              {}
func (c *mockRunnerCollector) RecordUploadFailure(entityType string)       {}
func (c *mockRunnerCollector) RecordCleanupFailure()                       {}

func (c *mockRunnerCollector) RecordIngestCreated(count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.created += count
}

func (c *mockRunnerCollector) RecordIngestSkipped(count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skipped += count
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRunner_RunOnce_IngestsAllFeeds(t *testing.T) {
	service := newMockIngestService()
	service.results["https://a.example.com/events.xml"] = &feedingest.Result{Processed: 3, Created: 2, Skipped: 1}
	service.results["https://b.example.com/events.xml"] = &feedingest.Result{Processed: 1, Created: 1}

	collector := &mockRunnerCollector{}
	runner := NewRunner(
		[]string{"https://a.example.com/events.xml", "https://b.example.com/events.xml"},
		service, collector, discardLogger(), 2,
	)

	runner.RunOnce(context.Background())

	if len(service.calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(service.calls))
	}
	if collector.created != 3 {
		t.Errorf("created = %d, want 3", collector.created)
	}
	if collector.skipped != 1 {
		t.Errorf("skipped = %d, want 1", collector.skipped)
	}
}

func TestRunner_RunOnce_FailedFeedEntersBackoff(t *testing.T) {
	service := newMockIngestService()
	service.errs["https://bad.example.com/events.xml"] = fmt.Errorf("フィードの取得に失敗しました")
	service.results["https://ok.example.com/events.xml"] = &feedingest.Result{Processed: 1, Created: 1}

	collector := &mockRunnerCollector{}
	runner := NewRunner(
		[]string{"https://bad.example.com/events.xml", "https://ok.example.com/events.xml"},
		service, collector, discardLogger(), 2,
	)

	runner.RunOnce(context.Background())
	// 2サイクル目: 失敗したフィードはバックオフでスキップされる
	runner.RunOnce(context.Background())

	if got := service.callCount("https://bad.example.com/events.xml"); got != 1 {
		t.Errorf("bad feed calls = %d, want 1 (skipped by backoff)", got)
	}
	if got := service.callCount("https://ok.example.com/events.xml"); got != 2 {
		t.Errorf("ok feed calls = %d, want 2", got)
	}
	// 失敗したフィードのメトリクスは記録されない
	if collector.created != 2 {
		t.Errorf("created = %d, want 2", collector.created)
	}
}

func TestRunner_Start_StopsOnContextCancel(t *testing.T) {
	service := newMockIngestService()
	runner := NewRunner([]string{"https://a.example.com/events.xml"}, service, &mockRunnerCollector{}, discardLogger(), 1)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		runner.Start(ctx, time.Hour)
		close(done)
	}()

	// 起動直後の1回が走るのを待ってからキャンセル
	deadline := time.After(2 * time.Second)
	for service.callCount("https://a.example.com/events.xml") == 0 {
		select {
		case <-deadline:
			t.Fatal("initial ingest cycle did not run")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after context cancel")
	}
}

func TestRunner_Start_NoFeedsReturnsImmediately(t *testing.T) {
	runner := NewRunner(nil, newMockIngestService(), &mockRunnerCollector{}, discardLogger(), 1)

	done := make(chan struct{})
	go func() {
		runner.Start(context.Background(), time.Hour)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner should return immediately when no feeds are configured")
	}
}
