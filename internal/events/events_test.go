package events

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"threadpool/internal/logger"
)

func TestEventCreation(t *testing.T) {
	t.Run("PoolStarted", func(t *testing.T) {
		e := NewPoolStartedEvent(4)
		if e.Type != EventPoolStarted {
			t.Errorf("expected %s, got %s", EventPoolStarted, e.Type)
		}
		if e.WorkerID != PoolScope {
			t.Errorf("expected pool scope, got %d", e.WorkerID)
		}
		if e.Data.Workers != 4 {
			t.Errorf("expected 4 workers, got %d", e.Data.Workers)
		}
	})

	t.Run("JobFinished", func(t *testing.T) {
		e := NewJobFinishedEvent(2, 150*time.Millisecond)
		if e.Data.Duration != "150ms" {
			t.Errorf("expected 150ms, got %s", e.Data.Duration)
		}
	})

	t.Run("JobPanicked", func(t *testing.T) {
		e := NewJobPanickedEvent(1, errors.New("boom"))
		if e.Data.Panic != "boom" {
			t.Errorf("expected boom, got %s", e.Data.Panic)
		}
	})

	t.Run("JobsDropped", func(t *testing.T) {
		e := NewJobsDroppedEvent(7)
		if e.Data.Count != 7 {
			t.Errorf("expected 7, got %d", e.Data.Count)
		}
	})
}

func TestEventComponent(t *testing.T) {
	if got := NewShutdownStartedEvent(2).Component(); got != "pool" {
		t.Errorf("expected pool, got %s", got)
	}
	if got := NewWorkerJoinedEvent(5).Component(); got != "worker-5" {
		t.Errorf("expected worker-5, got %s", got)
	}
}

func TestTee(t *testing.T) {
	var a, b []EventType
	sink := Tee(
		SinkFunc(func(e Event) { a = append(a, e.Type) }),
		nil,
		SinkFunc(func(e Event) { b = append(b, e.Type) }),
	)

	sink.Publish(NewWorkerTerminatedEvent(0))
	sink.Publish(NewWorkerJoinedEvent(0))

	for name, got := range map[string][]EventType{"a": a, "b": b} {
		if len(got) != 2 || got[0] != EventWorkerTerminated || got[1] != EventWorkerJoined {
			t.Errorf("sink %s: unexpected events %v", name, got)
		}
	}

	// Discard must accept anything
	Discard.Publish(NewJobStartedEvent(0))
}

func TestLogSink(t *testing.T) {
	buf := &bytes.Buffer{}
	sink := NewLogSink(logger.New(buf, logger.LevelDebug))

	sink.Publish(NewPoolStartedEvent(4))
	sink.Publish(NewJobStartedEvent(1))
	sink.Publish(NewJobPanickedEvent(2, "bad input"))
	sink.Publish(NewWorkerTerminatedEvent(3))
	sink.Publish(NewJobsDroppedEvent(5))

	output := buf.String()
	for _, want := range []string{
		"[INFO] [pool] started 4 workers",
		"[DEBUG] [worker-1] got a job; executing",
		"[ERROR] [worker-2] job panicked: bad input",
		"[DEBUG] [worker-3] was told to terminate",
		"[WARN] [pool] 5 queued jobs dropped",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestLogSinkRespectsLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	sink := NewLogSink(logger.New(buf, logger.LevelInfo))

	sink.Publish(NewJobStartedEvent(1))
	if buf.Len() != 0 {
		t.Errorf("expected debug event to be filtered, got %q", buf.String())
	}
}
