package ingest

import (
	"sync"
	"time"
)

const (
	// initialBackoff は指数バックオフの初回遅延（30分）。
	initialBackoff = 30 * time.Minute
	// maxBackoff は指数バックオフの最大遅延（12時間）。
	maxBackoff = 12 * time.Hour
)

// CalculateBackoff は連続エラー回数に基づいて指数バックオフ遅延を計算する。
// 初回30分、2倍ずつ増加、最大12時間。
func CalculateBackoff(consecutiveErrors int) time.Duration {
	delay := initialBackoff
	for i := 0; i < consecutiveErrors; i++ {
		delay *= 2
		if delay > maxBackoff {
			return maxBackoff
		}
	}
	return delay
}

// feedState はフィードURLごとの取り込み状態を保持する。
type feedState struct {
	consecutiveErrors int
	nextAttemptAt     time.Time
}

// backoffTracker はフィードURLごとの指数バックオフ状態を管理する。
// フィードは設定値で与えられるため、状態はプロセス内メモリに保持する。
type backoffTracker struct {
	mu     sync.Mutex
	states map[string]*feedState
	now    func() time.Time
}

func newBackoffTracker() *backoffTracker {
	return &backoffTracker{
		states: make(map[string]*feedState),
		now:    time.Now,
	}
}

// Due は指定URLが取り込み可能（バックオフ期間外）かどうかを返す。
func (t *backoffTracker) Due(url string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.states[url]
	if !ok {
		return true
	}
	return !t.now().Before(state.nextAttemptAt)
}

// RecordSuccess は取り込み成功時にバックオフ状態をリセットする。
func (t *backoffTracker) RecordSuccess(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, url)
}

// RecordFailure は取り込み失敗時に連続エラー回数をインクリメントし、
// 指数バックオフで次回試行時刻を設定する。
func (t *backoffTracker) RecordFailure(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.states[url]
	if !ok {
		state = &feedState{}
		t.states[url] = state
	}
	state.consecutiveErrors++
	state.nextAttemptAt = t.now().Add(CalculateBackoff(state.consecutiveErrors - 1))
}

// ConsecutiveErrors は指定URLの連続エラー回数を返す。
func (t *backoffTracker) ConsecutiveErrors(url string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.states[url]
	if !ok {
		return 0
	}
	return state.consecutiveErrors
}
