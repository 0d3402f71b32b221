package load

import (
	"context"
	"testing"
	"time"

	"threadpool/internal/events"
	"threadpool/internal/worker"
)

func newTestPool(t *testing.T, size int) *worker.Pool {
	t.Helper()
	pool := worker.NewPool(size, worker.WithSink(events.Discard))
	t.Cleanup(pool.Shutdown)
	return pool
}

func TestGeneratorSubmitsExactCount(t *testing.T) {
	pool := newTestPool(t, 4)
	g := New(pool, Config{Producers: 5, Jobs: 500})

	submitted := g.Run(context.Background())
	pool.Shutdown()

	if submitted != 500 {
		t.Errorf("expected 500 submitted, got %d", submitted)
	}
	if n := pool.Metrics().CompletedJobs(); n != 500 {
		t.Errorf("expected 500 completed, got %d", n)
	}
	if g.Injected() != 0 {
		t.Errorf("expected no injected failures, got %d", g.Injected())
	}
}

func TestGeneratorDefaultsToOneProducer(t *testing.T) {
	pool := newTestPool(t, 1)
	g := New(pool, Config{Jobs: 3})

	if g.config.Producers != 1 {
		t.Errorf("expected 1 producer, got %d", g.config.Producers)
	}
	if n := g.Run(context.Background()); n != 3 {
		t.Errorf("expected 3 submitted, got %d", n)
	}
}

func TestGeneratorStopsOnClosedPool(t *testing.T) {
	pool := newTestPool(t, 2)
	pool.Shutdown()

	g := New(pool, Config{Producers: 3, Jobs: 10})
	if n := g.Run(context.Background()); n != 0 {
		t.Errorf("expected 0 submitted to a closed pool, got %d", n)
	}
	if !g.rejected.Load() {
		t.Error("expected generator to record rejection")
	}
}

func TestGeneratorStopsOnContextCancel(t *testing.T) {
	pool := newTestPool(t, 2)
	g := New(pool, Config{Producers: 2})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan uint64, 1)
	go func() {
		done <- g.Run(ctx)
	}()

	select {
	case n := <-done:
		if n == 0 {
			t.Error("expected some jobs before cancellation")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("generator did not stop after context cancel")
	}
}

func TestGeneratorPanicInjection(t *testing.T) {
	pool := newTestPool(t, 3)
	g := New(pool, Config{Producers: 1, Jobs: 3, PanicRatio: 1})

	g.Run(context.Background())
	pool.Shutdown()

	if g.Injected() != 3 {
		t.Errorf("expected 3 injected failures, got %d", g.Injected())
	}
	m := pool.Metrics()
	if m.PanickedJobs() != 3 {
		t.Errorf("expected 3 panicked jobs, got %d", m.PanickedJobs())
	}
	if pool.LiveWorkers() != 0 {
		t.Errorf("expected every worker to have exited, got %d", pool.LiveWorkers())
	}
}
