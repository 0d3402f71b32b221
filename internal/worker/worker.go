package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"threadpool/internal/events"
	"threadpool/internal/metrics"
	"threadpool/internal/queue"
)

// sharedReceiver は全ワーカーで共有する受信側
// ロックは1回の取り出しの間だけ保持し、ジョブ実行中は保持しない
type sharedReceiver struct {
	mu sync.Mutex
	rx *queue.Receiver[Message]
}

func (s *sharedReceiver) recv() (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rx.Recv()
}

func (s *sharedReceiver) tryRecv() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rx.TryRecv()
}

func (s *sharedReceiver) len() int {
	return s.rx.Len()
}

// Worker は共有キューからメッセージを取り出して実行するゴルーチン
type Worker struct {
	id   int
	done chan struct{} // ゴルーチン終了で close、join 後は nil

	alive     atomic.Bool
	processed atomic.Uint64

	rx      *sharedReceiver
	sink    events.Sink
	metrics *metrics.Metrics
	live    *atomic.Int32
}

// newWorker はワーカーを作成し、ゴルーチンを起動する
func newWorker(id int, rx *sharedReceiver, sink events.Sink, m *metrics.Metrics, live *atomic.Int32) *Worker {
	w := &Worker{
		id:      id,
		done:    make(chan struct{}),
		rx:      rx,
		sink:    sink,
		metrics: m,
		live:    live,
	}
	w.alive.Store(true)
	live.Add(1)

	go w.run()

	return w
}

// ID はワーカー番号を返す
func (w *Worker) ID() int {
	return w.id
}

// Alive はゴルーチンが動作中かを返す
func (w *Worker) Alive() bool {
	return w.alive.Load()
}

// Processed は取り出したメッセージ数（終了メッセージを含む）を返す
func (w *Worker) Processed() uint64 {
	return w.processed.Load()
}

// run はワーカーのメインループ
func (w *Worker) run() {
	defer close(w.done)
	defer w.live.Add(-1)
	defer w.alive.Store(false)

	for {
		msg, err := w.rx.recv()
		if err != nil {
			// 送信側がクローズされ、キューも空
			return
		}
		w.processed.Add(1)

		switch msg.Kind {
		case MessageNewJob:
			w.sink.Publish(events.NewJobStartedEvent(w.id))
			if !w.execute(msg.Job) {
				return
			}
		case MessageTerminate:
			w.sink.Publish(events.NewWorkerTerminatedEvent(w.id))
			return
		}
	}
}

// execute はジョブを同期的に実行する。パニックした場合は false を返す
func (w *Worker) execute(job Job) (ok bool) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			w.metrics.RecordPanicked(time.Since(start))
			w.sink.Publish(events.NewJobPanickedEvent(w.id, r))
			ok = false
		}
	}()

	job()

	elapsed := time.Since(start)
	w.metrics.RecordCompleted(elapsed)
	w.sink.Publish(events.NewJobFinishedEvent(w.id, elapsed))
	return true
}

// join はゴルーチンの終了を待ち、ハンドルを取り出す
// 既に取り出し済みなら false を返す
func (w *Worker) join() bool {
	if w.done == nil {
		return false
	}
	<-w.done
	w.done = nil
	return true
}
