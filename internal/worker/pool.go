package worker

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"threadpool/internal/events"
	"threadpool/internal/metrics"
	"threadpool/internal/queue"
)

var (
	// ErrInvalidSize はプールサイズが 0 以下のときのパニック値
	ErrInvalidSize = errors.New("pool size must be greater than zero")

	// ErrPoolClosed はシャットダウン後に投入されたことを表す
	ErrPoolClosed = errors.New("pool is closed")

	// ErrNilJob は nil のジョブが投入されたことを表す
	ErrNilJob = errors.New("job must not be nil")
)

// Option はプールの設定関数
type Option func(*Pool)

// WithSink はライフサイクルイベントの送信先を設定する
func WithSink(sink events.Sink) Option {
	return func(p *Pool) {
		if sink != nil {
			p.sink = sink
		}
	}
}

// WithMetrics はメトリクスの記録先を設定する
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pool) {
		if m != nil {
			p.metrics = m
		}
	}
}

// Pool は固定数のワーカーとディスパッチキューの送信側を所有する
type Pool struct {
	workers  []*Worker
	sender   *queue.Sender[Message]
	receiver *sharedReceiver

	sink    events.Sink
	metrics *metrics.Metrics
	live    atomic.Int32

	mu           sync.RWMutex // Submit と Shutdown の排他
	closed       bool
	shutdownOnce sync.Once
}

// NewPool は size 個のワーカーを持つプールを作成する
// size が 0 以下の場合は呼び出し側の誤りとしてパニックする
func NewPool(size int, opts ...Option) *Pool {
	if size <= 0 {
		panic(fmt.Errorf("%w: got %d", ErrInvalidSize, size))
	}

	sender, receiver := queue.New[Message]()

	p := &Pool{
		workers:  make([]*Worker, 0, size),
		sender:   sender,
		receiver: &sharedReceiver{rx: receiver},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.sink == nil {
		p.sink = events.NewLogSink(nil)
	}
	if p.metrics == nil {
		p.metrics = metrics.New()
	}

	for id := range size {
		p.workers = append(p.workers, newWorker(id, p.receiver, p.sink, p.metrics, &p.live))
	}

	p.sink.Publish(events.NewPoolStartedEvent(size))

	return p
}

// Submit はジョブをキューに投入する。容量待ちでブロックすることはない
// シャットダウン後の投入は ErrPoolClosed でパニックする
func (p *Pool) Submit(job Job) {
	if err := p.TrySubmit(job); err != nil {
		panic(err)
	}
}

// TrySubmit は Submit と同じだが、誤用をエラーとして返す
func (p *Pool) TrySubmit(job Job) error {
	if job == nil {
		return ErrNilJob
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	p.metrics.RecordSubmitted()
	if err := p.sender.Send(NewJob(job)); err != nil {
		return fmt.Errorf("%w: %w", ErrPoolClosed, err)
	}
	return nil
}

// Shutdown はワーカー数分の終了メッセージを投入し、全ワーカーの終了を待つ
// 2回目以降の呼び出しは最初の呼び出しの完了を待って戻る
func (p *Pool) Shutdown() {
	p.shutdownOnce.Do(p.shutdown)
}

// Close は Shutdown を呼ぶ（io.Closer 用）
func (p *Pool) Close() error {
	p.Shutdown()
	return nil
}

func (p *Pool) shutdown() {
	start := time.Now()

	p.mu.Lock()
	p.closed = true
	for range p.workers {
		_ = p.sender.Send(Terminate())
	}
	p.sender.Close()
	p.mu.Unlock()

	p.sink.Publish(events.NewShutdownStartedEvent(len(p.workers)))

	for _, w := range p.workers {
		if w.join() {
			p.sink.Publish(events.NewWorkerJoinedEvent(w.id))
		}
	}

	// パニックでワーカーが減っていた場合、未実行のジョブが残り得る
	dropped := 0
	for {
		msg, ok := p.receiver.tryRecv()
		if !ok {
			break
		}
		if msg.Kind == MessageNewJob {
			dropped++
		}
	}
	if dropped > 0 {
		p.metrics.RecordDropped(dropped)
		p.sink.Publish(events.NewJobsDroppedEvent(dropped))
	}

	p.sink.Publish(events.NewShutdownCompleteEvent(len(p.workers), time.Since(start)))
}

// Size はワーカー数を返す
func (p *Pool) Size() int {
	return len(p.workers)
}

// Workers はワーカーの一覧を作成順で返す
func (p *Pool) Workers() []*Worker {
	out := make([]*Worker, len(p.workers))
	copy(out, p.workers)
	return out
}

// LiveWorkers は動作中のワーカー数を返す
func (p *Pool) LiveWorkers() int {
	return int(p.live.Load())
}

// QueueDepth はキューに残っているメッセージ数を返す
func (p *Pool) QueueDepth() int {
	return p.receiver.len()
}

// Closed はシャットダウンが開始されたかを返す
func (p *Pool) Closed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

// Metrics はプールのメトリクスを返す
func (p *Pool) Metrics() *metrics.Metrics {
	return p.metrics
}
