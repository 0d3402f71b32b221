package events

import (
	"threadpool/internal/logger"
)

// Sink receives pool lifecycle events.
// Publish is called from worker goroutines and must not block for long.
type Sink interface {
	Publish(Event)
}

// SinkFunc adapts a plain function to Sink
type SinkFunc func(Event)

// Publish calls f(event)
func (f SinkFunc) Publish(event Event) {
	f(event)
}

// Discard drops every event
var Discard Sink = SinkFunc(func(Event) {})

type tee []Sink

func (t tee) Publish(event Event) {
	for _, s := range t {
		s.Publish(event)
	}
}

// Tee returns a Sink that forwards each event to every non-nil sink in order
func Tee(sinks ...Sink) Sink {
	out := make(tee, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// LogSink renders events as log lines
type LogSink struct {
	log *logger.Logger
}

// NewLogSink creates a sink writing to l; nil means logger.Default
func NewLogSink(l *logger.Logger) *LogSink {
	if l == nil {
		l = logger.Default
	}
	return &LogSink{log: l}
}

// Publish writes one line for the event
func (s *LogSink) Publish(e Event) {
	c := e.Component()
	switch e.Type {
	case EventPoolStarted:
		s.log.Info(c, "started %d workers", e.Data.Workers)
	case EventJobStarted:
		s.log.Debug(c, "got a job; executing")
	case EventJobFinished:
		s.log.Debug(c, "job finished in %s", e.Data.Duration)
	case EventJobPanicked:
		s.log.Error(c, "job panicked: %s; worker exiting", e.Data.Panic)
	case EventWorkerTerminated:
		s.log.Debug(c, "was told to terminate")
	case EventShutdownStarted:
		s.log.Info(c, "gracefully shutting down %d workers", e.Data.Workers)
	case EventWorkerJoined:
		s.log.Debug(c, "shut down")
	case EventShutdownComplete:
		s.log.Info(c, "all %d workers stopped in %s", e.Data.Workers, e.Data.Duration)
	case EventJobsDropped:
		s.log.Warn(c, "%d queued jobs dropped: no live workers", e.Data.Count)
	default:
		s.log.Debug(c, "%s", e.Type)
	}
}
