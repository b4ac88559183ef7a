// Package progress reports the progress of long-running imports and exports
// to logs and to websocket clients.
package progress

import (
	"log/slog"
	"sync"
)

// Sink receives progress updates. Implementations must be safe to call from
// the goroutine running the import.
type Sink interface {
	// Progress reports that current of max steps are done.
	Progress(current, max int, message string)
	// Done delivers the final report of the operation.
	Done(report any)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Progress(int, int, string) {}
func (Nop) Done(any)                  {}

// LogSink logs updates at debug level, rate limited to one record per Every
// steps, and the final report at info level.
type LogSink struct {
	Logger *slog.Logger
	Every  int
}

// NewLogSink returns a sink logging every n steps.
func NewLogSink(logger *slog.Logger, n int) *LogSink {
	if n < 1 {
		n = 1
	}
	return &LogSink{Logger: logger, Every: n}
}

func (s *LogSink) Progress(current, max int, message string) {
	if s.Every > 1 && current%s.Every != 0 && current != max {
		return
	}
	s.Logger.Debug("progress", "current", current, "max", max, "message", message)
}

func (s *LogSink) Done(report any) {
	s.Logger.Info("progress_done", "report", report)
}

// Multi fans updates out to several sinks.
type Multi []Sink

func (m Multi) Progress(current, max int, message string) {
	for _, s := range m {
		s.Progress(current, max, message)
	}
}

func (m Multi) Done(report any) {
	for _, s := range m {
		s.Done(report)
	}
}

// Update is one recorded progress update.
type Update struct {
	Current int
	Max     int
	Message string
}

// Recorder keeps every update; it is meant for tests and for callers that
// want to inspect progress after the fact.
type Recorder struct {
	mu      sync.Mutex
	Updates []Update
	Report  any
}

func (r *Recorder) Progress(current, max int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Updates = append(r.Updates, Update{Current: current, Max: max, Message: message})
}

func (r *Recorder) Done(report any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Report = report
}

// Last returns the most recent update.
func (r *Recorder) Last() (Update, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Updates) == 0 {
		return Update{}, false
	}
	return r.Updates[len(r.Updates)-1], true
}
