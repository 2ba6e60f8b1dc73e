// Package events carries progress and degradation signals out of the
// analysis core. Emission is a side channel: nothing in the core's control
// flow depends on a sink observing, or ignoring, an event.
package events

import "github.com/sirupsen/logrus"

// Sink receives analysis lifecycle events.
type Sink interface {
	BatchStarted(op string, items int)
	CallFailed(op string, item int, err error)
	FellBack(op string, item int)
	BatchFinished(op string, attempted, succeeded, failed, fellBack int64)
	StageCompleted(stage, detail string)
	ServiceDegraded(service string, err error)
}

// NopSink discards every event. Useful for tests and library callers that
// bring their own observability.
type NopSink struct{}

func (NopSink) BatchStarted(string, int)                         {}
func (NopSink) CallFailed(string, int, error)                    {}
func (NopSink) FellBack(string, int)                             {}
func (NopSink) BatchFinished(string, int64, int64, int64, int64) {}
func (NopSink) StageCompleted(string, string)                    {}
func (NopSink) ServiceDegraded(string, error)                    {}

// OrNop substitutes a NopSink for nil so callers never nil-check.
func OrNop(s Sink) Sink {
	if s == nil {
		return NopSink{}
	}
	return s
}

// LogSink writes events through logrus.
type LogSink struct {
	log *logrus.Logger
}

// NewLogSink wraps the given logger, defaulting to the standard one.
func NewLogSink(log *logrus.Logger) *LogSink {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogSink{log: log}
}

func (s *LogSink) BatchStarted(op string, items int) {
	s.log.WithFields(logrus.Fields{"op": op, "items": items}).Info("batch started")
}

func (s *LogSink) CallFailed(op string, item int, err error) {
	s.log.WithFields(logrus.Fields{"op": op, "item": item}).WithError(err).Warn("provider call failed")
}

func (s *LogSink) FellBack(op string, item int) {
	s.log.WithFields(logrus.Fields{"op": op, "item": item}).Debug("substituted heuristic result")
}

func (s *LogSink) BatchFinished(op string, attempted, succeeded, failed, fellBack int64) {
	s.log.WithFields(logrus.Fields{
		"op":        op,
		"attempted": attempted,
		"succeeded": succeeded,
		"failed":    failed,
		"fell_back": fellBack,
	}).Info("batch finished")
}

func (s *LogSink) StageCompleted(stage, detail string) {
	s.log.WithFields(logrus.Fields{"stage": stage, "detail": detail}).Info("stage completed")
}

func (s *LogSink) ServiceDegraded(service string, err error) {
	s.log.WithField("service", service).WithError(err).Warn("service degraded")
}
