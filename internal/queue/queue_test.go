package queue

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestQueueFIFO(t *testing.T) {
	tx, rx := New[int]()

	for i := range 200 {
		if err := tx.Send(i); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	if rx.Len() != 200 {
		t.Errorf("expected len 200, got %d", rx.Len())
	}

	for i := range 200 {
		v, err := rx.Recv()
		if err != nil {
			t.Fatalf("recv %d: %v", i, err)
		}
		if v != i {
			t.Fatalf("expected %d, got %d", i, v)
		}
	}

	if rx.Len() != 0 {
		t.Errorf("expected empty queue, got %d", rx.Len())
	}
}

func TestQueueSendAfterClose(t *testing.T) {
	tx, _ := New[int]()
	tx.Close()
	// Double close should be no-op
	tx.Close()

	if !tx.Closed() {
		t.Error("expected sender to report closed")
	}
	if err := tx.Send(1); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestQueueDrainAfterClose(t *testing.T) {
	tx, rx := New[string]()
	_ = tx.Send("a")
	_ = tx.Send("b")
	tx.Close()

	for _, want := range []string{"a", "b"} {
		got, err := rx.Recv()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	}

	if _, err := rx.Recv(); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after drain, got %v", err)
	}
}

func TestQueueRecvBlocksUntilSend(t *testing.T) {
	tx, rx := New[int]()
	got := make(chan int, 1)

	go func() {
		v, err := rx.Recv()
		if err == nil {
			got <- v
		}
	}()

	select {
	case <-got:
		t.Fatal("Recv returned before anything was sent")
	case <-time.After(20 * time.Millisecond):
	}

	_ = tx.Send(42)

	select {
	case v := <-got:
		if v != 42 {
			t.Errorf("expected 42, got %d", v)
		}
	case <-time.After(time.Second):
		t.Error("timeout waiting for Recv")
	}
}

func TestQueueCloseWakesReceivers(t *testing.T) {
	tx, rx := New[int]()
	errs := make(chan error, 3)

	for range 3 {
		go func() {
			_, err := rx.Recv()
			errs <- err
		}()
	}

	time.Sleep(10 * time.Millisecond)
	tx.Close()

	for range 3 {
		select {
		case err := <-errs:
			if !errors.Is(err, ErrClosed) {
				t.Errorf("expected ErrClosed, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for receivers to wake")
		}
	}
}

func TestQueueTryRecv(t *testing.T) {
	tx, rx := New[int]()

	if _, ok := rx.TryRecv(); ok {
		t.Error("expected TryRecv on empty queue to fail")
	}

	_ = tx.Send(7)
	v, ok := rx.TryRecv()
	if !ok || v != 7 {
		t.Errorf("expected (7, true), got (%d, %v)", v, ok)
	}
}

func TestQueueConcurrentProducersConsumers(t *testing.T) {
	tx, rx := New[int]()
	const producers = 8
	const perProducer = 500

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				_ = tx.Send(p*perProducer + i)
			}
		}()
	}

	var mu sync.Mutex
	seen := make(map[int]int)
	var consumers sync.WaitGroup
	for range 4 {
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			for {
				v, err := rx.Recv()
				if err != nil {
					return
				}
				mu.Lock()
				seen[v]++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	tx.Close()
	consumers.Wait()

	if len(seen) != producers*perProducer {
		t.Fatalf("expected %d distinct values, got %d", producers*perProducer, len(seen))
	}
	for v, n := range seen {
		if n != 1 {
			t.Errorf("value %d delivered %d times", v, n)
		}
	}
}

func TestQueueCompaction(t *testing.T) {
	tx, rx := New[int]()

	// Interleave sends and receives so head advances past the compaction threshold
	var sent []int
	var received []int
	for i := range 1000 {
		_ = tx.Send(i)
		_ = tx.Send(i + 100000)
		sent = append(sent, i, i+100000)
		v, _ := rx.Recv()
		received = append(received, v)
	}

	if rx.Len() != 1000 {
		t.Errorf("expected 1000 remaining, got %d", rx.Len())
	}

	for rx.Len() > 0 {
		v, _ := rx.Recv()
		received = append(received, v)
	}

	for i := range sent {
		if sent[i] != received[i] {
			t.Fatalf("order broken at %d: sent %d, received %d", i, sent[i], received[i])
		}
	}
}
