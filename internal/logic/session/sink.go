package session

import (
	"github.com/cjeanneret/MotionFocus/internal/debug"
	"github.com/cjeanneret/MotionFocus/internal/logic/focus"
)

// StatusSink receives focus status changes. Publish is fire-and-forget:
// it must not block and must not call back into the session.
type StatusSink interface {
	Publish(ev focus.Event)
}

// SinkFunc adapts a function to StatusSink.
type SinkFunc func(ev focus.Event)

func (f SinkFunc) Publish(ev focus.Event) { f(ev) }

// MultiSink fans a status change out to several sinks, in order.
type MultiSink []StatusSink

func (m MultiSink) Publish(ev focus.Event) {
	for _, s := range m {
		if s != nil {
			s.Publish(ev)
		}
	}
}

// LogSink writes status changes to the log.
type LogSink struct{}

func (LogSink) Publish(ev focus.Event) {
	debug.With(debug.Fields{
		"cycle":   ev.Cycle,
		"attempt": ev.Attempt,
	}).Infof("Autofocus : %s", ev.Status)
}
