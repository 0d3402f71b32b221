// Package events provides lifecycle events for the worker pool and the
// sinks that consume them.
package events

import (
	"fmt"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	// EventPoolStarted is emitted once all workers have been spawned
	EventPoolStarted EventType = "pool_started"
	// EventJobStarted is emitted when a worker dequeues a job and begins executing it
	EventJobStarted EventType = "job_started"
	// EventJobFinished is emitted when a job returns normally
	EventJobFinished EventType = "job_finished"
	// EventJobPanicked is emitted when a job panics; the worker exits afterwards
	EventJobPanicked EventType = "job_panicked"
	// EventWorkerTerminated is emitted when a worker dequeues a terminate message
	EventWorkerTerminated EventType = "worker_terminated"
	// EventShutdownStarted is emitted after terminate messages have been enqueued
	EventShutdownStarted EventType = "shutdown_started"
	// EventWorkerJoined is emitted when shutdown has waited for a worker to exit
	EventWorkerJoined EventType = "worker_joined"
	// EventShutdownComplete is emitted after every worker has been joined
	EventShutdownComplete EventType = "shutdown_complete"
	// EventJobsDropped is emitted when jobs remain queued after every worker exited
	EventJobsDropped EventType = "jobs_dropped"
)

// PoolScope is the WorkerID used for events that concern the whole pool
const PoolScope = -1

// Event represents a pool lifecycle event
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	WorkerID  int       `json:"worker_id"`
	Data      EventData `json:"data,omitempty"`
}

// EventData contains event-specific data
type EventData struct {
	Workers  int    `json:"workers,omitempty"`
	Count    int    `json:"count,omitempty"`
	Duration string `json:"duration,omitempty"`
	Panic    string `json:"panic,omitempty"`
}

// Component returns the logger component tag for the event
func (e Event) Component() string {
	if e.WorkerID == PoolScope {
		return "pool"
	}
	return fmt.Sprintf("worker-%d", e.WorkerID)
}

// NewPoolStartedEvent creates a pool started event
func NewPoolStartedEvent(workers int) Event {
	return Event{
		Type:      EventPoolStarted,
		Timestamp: time.Now(),
		WorkerID:  PoolScope,
		Data:      EventData{Workers: workers},
	}
}

// NewJobStartedEvent creates a job started event
func NewJobStartedEvent(workerID int) Event {
	return Event{
		Type:      EventJobStarted,
		Timestamp: time.Now(),
		WorkerID:  workerID,
	}
}

// NewJobFinishedEvent creates a job finished event
func NewJobFinishedEvent(workerID int, elapsed time.Duration) Event {
	return Event{
		Type:      EventJobFinished,
		Timestamp: time.Now(),
		WorkerID:  workerID,
		Data:      EventData{Duration: elapsed.String()},
	}
}

// NewJobPanickedEvent creates a job panicked event
func NewJobPanickedEvent(workerID int, recovered any) Event {
	return Event{
		Type:      EventJobPanicked,
		Timestamp: time.Now(),
		WorkerID:  workerID,
		Data:      EventData{Panic: fmt.Sprint(recovered)},
	}
}

// NewWorkerTerminatedEvent creates a worker terminated event
func NewWorkerTerminatedEvent(workerID int) Event {
	return Event{
		Type:      EventWorkerTerminated,
		Timestamp: time.Now(),
		WorkerID:  workerID,
	}
}

// NewShutdownStartedEvent creates a shutdown started event
func NewShutdownStartedEvent(workers int) Event {
	return Event{
		Type:      EventShutdownStarted,
		Timestamp: time.Now(),
		WorkerID:  PoolScope,
		Data:      EventData{Workers: workers},
	}
}

// NewWorkerJoinedEvent creates a worker joined event
func NewWorkerJoinedEvent(workerID int) Event {
	return Event{
		Type:      EventWorkerJoined,
		Timestamp: time.Now(),
		WorkerID:  workerID,
	}
}

// NewShutdownCompleteEvent creates a shutdown complete event
func NewShutdownCompleteEvent(workers int, elapsed time.Duration) Event {
	return Event{
		Type:      EventShutdownComplete,
		Timestamp: time.Now(),
		WorkerID:  PoolScope,
		Data:      EventData{Workers: workers, Duration: elapsed.String()},
	}
}

// NewJobsDroppedEvent creates a jobs dropped event
func NewJobsDroppedEvent(count int) Event {
	return Event{
		Type:      EventJobsDropped,
		Timestamp: time.Now(),
		WorkerID:  PoolScope,
		Data:      EventData{Count: count},
	}
}
