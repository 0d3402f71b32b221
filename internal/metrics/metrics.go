package metrics

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const defaultMaxLatencySamples = 1000

// Config はメトリクスの設定
type Config struct {
	MaxLatencySamples int // P99 計算用に保持するサンプル数
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{MaxLatencySamples: defaultMaxLatencySamples}
}

// Metrics はジョブのメトリクスを収集する
type Metrics struct {
	submittedJobs atomic.Uint64
	completedJobs atomic.Uint64
	panickedJobs  atomic.Uint64
	droppedJobs   atomic.Uint64
	totalRunNs    atomic.Uint64

	mu                sync.RWMutex
	startTime         time.Time
	lastResetTime     time.Time
	windowJobs        uint64
	latencies         []time.Duration
	maxLatencySamples int
}

// New は新しいメトリクスを作成する
func New() *Metrics {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig は設定を指定してメトリクスを作成する
func NewWithConfig(config Config) *Metrics {
	samples := config.MaxLatencySamples
	if samples <= 0 {
		samples = defaultMaxLatencySamples
	}
	now := time.Now()
	return &Metrics{
		startTime:         now,
		lastResetTime:     now,
		latencies:         make([]time.Duration, 0, samples),
		maxLatencySamples: samples,
	}
}

// RecordSubmitted はジョブの投入を記録する
func (m *Metrics) RecordSubmitted() {
	m.submittedJobs.Add(1)
}

// RecordCompleted は正常終了したジョブを記録する
func (m *Metrics) RecordCompleted(runtime time.Duration) {
	m.completedJobs.Add(1)
	m.record(runtime, true)
}

// RecordPanicked はパニックしたジョブを記録する
func (m *Metrics) RecordPanicked(runtime time.Duration) {
	m.panickedJobs.Add(1)
	m.record(runtime, false)
}

// RecordDropped は実行されずに破棄されたジョブを記録する
func (m *Metrics) RecordDropped(n int) {
	if n > 0 {
		m.droppedJobs.Add(uint64(n))
	}
}

func (m *Metrics) record(runtime time.Duration, sample bool) {
	m.totalRunNs.Add(uint64(runtime.Nanoseconds()))

	m.mu.Lock()
	m.windowJobs++
	if sample && len(m.latencies) < m.maxLatencySamples {
		m.latencies = append(m.latencies, runtime)
	}
	m.mu.Unlock()
}

// SubmittedJobs は投入されたジョブ数を返す
func (m *Metrics) SubmittedJobs() uint64 {
	return m.submittedJobs.Load()
}

// CompletedJobs は正常終了したジョブ数を返す
func (m *Metrics) CompletedJobs() uint64 {
	return m.completedJobs.Load()
}

// PanickedJobs はパニックしたジョブ数を返す
func (m *Metrics) PanickedJobs() uint64 {
	return m.panickedJobs.Load()
}

// DroppedJobs は破棄されたジョブ数を返す
func (m *Metrics) DroppedJobs() uint64 {
	return m.droppedJobs.Load()
}

// ExecutedJobs は実行を試みたジョブ数（正常終了 + パニック）を返す
func (m *Metrics) ExecutedJobs() uint64 {
	return m.completedJobs.Load() + m.panickedJobs.Load()
}

// Pending はまだ実行されていないジョブ数を返す
func (m *Metrics) Pending() uint64 {
	submitted := m.submittedJobs.Load()
	done := m.ExecutedJobs() + m.droppedJobs.Load()
	if done >= submitted {
		return 0
	}
	return submitted - done
}

// JPS はリセット以降の Jobs Per Second を返す
func (m *Metrics) JPS() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	elapsed := time.Since(m.lastResetTime).Seconds()
	if elapsed == 0 {
		return 0
	}
	return float64(m.windowJobs) / elapsed
}

// OverallJPS は開始からの平均 JPS を返す
func (m *Metrics) OverallJPS() float64 {
	elapsed := time.Since(m.startTime).Seconds()
	if elapsed == 0 {
		return 0
	}
	return float64(m.ExecutedJobs()) / elapsed
}

// AverageLatency は平均実行時間を返す
func (m *Metrics) AverageLatency() time.Duration {
	total := m.ExecutedJobs()
	if total == 0 {
		return 0
	}
	return time.Duration(m.totalRunNs.Load() / total)
}

// P99Latency は P99 実行時間を返す（サンプルベース）
func (m *Metrics) P99Latency() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.latencies) == 0 {
		return 0
	}

	sorted := slices.Clone(m.latencies)
	slices.Sort(sorted)

	idx := int(float64(len(sorted)) * 0.99)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// PanicRate はパニック率を返す（0.0〜1.0）
func (m *Metrics) PanicRate() float64 {
	total := m.ExecutedJobs()
	if total == 0 {
		return 0
	}
	return float64(m.panickedJobs.Load()) / float64(total)
}

// Reset はウィンドウメトリクスをリセットする
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.windowJobs = 0
	m.lastResetTime = time.Now()
	m.latencies = m.latencies[:0]
}

// Snapshot はメトリクスのスナップショット
type Snapshot struct {
	SubmittedJobs  uint64        `json:"submitted_jobs"`
	CompletedJobs  uint64        `json:"completed_jobs"`
	PanickedJobs   uint64        `json:"panicked_jobs"`
	DroppedJobs    uint64        `json:"dropped_jobs"`
	Pending        uint64        `json:"pending"`
	JPS            float64       `json:"jps"`
	OverallJPS     float64       `json:"overall_jps"`
	AverageLatency time.Duration `json:"average_latency_ns"`
	P99Latency     time.Duration `json:"p99_latency_ns"`
	PanicRate      float64       `json:"panic_rate"`
	Elapsed        time.Duration `json:"elapsed_ns"`
}

// Snapshot は現在のメトリクスのスナップショットを返す
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		SubmittedJobs:  m.SubmittedJobs(),
		CompletedJobs:  m.CompletedJobs(),
		PanickedJobs:   m.PanickedJobs(),
		DroppedJobs:    m.DroppedJobs(),
		Pending:        m.Pending(),
		JPS:            m.JPS(),
		OverallJPS:     m.OverallJPS(),
		AverageLatency: m.AverageLatency(),
		P99Latency:     m.P99Latency(),
		PanicRate:      m.PanicRate(),
		Elapsed:        time.Since(m.startTime),
	}
}

// Report はスナップショットを人間向けのテキストにする
func (s Snapshot) Report() string {
	var b strings.Builder
	b.WriteString("=== Job Metrics ===\n")
	fmt.Fprintf(&b, "Submitted:   %d\n", s.SubmittedJobs)
	fmt.Fprintf(&b, "Completed:   %d\n", s.CompletedJobs)
	fmt.Fprintf(&b, "Panicked:    %d (%.2f%%)\n", s.PanickedJobs, s.PanicRate*100)
	fmt.Fprintf(&b, "Dropped:     %d\n", s.DroppedJobs)
	fmt.Fprintf(&b, "Throughput:  %.2f jobs/s\n", s.OverallJPS)
	fmt.Fprintf(&b, "Avg runtime: %v\n", s.AverageLatency)
	fmt.Fprintf(&b, "P99 runtime: %v\n", s.P99Latency)
	fmt.Fprintf(&b, "Elapsed:     %v\n", s.Elapsed.Round(time.Millisecond))
	return b.String()
}
