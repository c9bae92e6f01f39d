package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/cjeanneret/MotionFocus/internal/logic/focus"
)

// consoleSink prints each focus status change as one line.
type consoleSink struct {
	mu      sync.Mutex
	w       io.Writer
	started *color.Color
	success *color.Color
	plain   *color.Color
}

func newConsoleSink(w io.Writer, colored bool) *consoleSink {
	s := &consoleSink{
		w:       w,
		started: color.New(color.FgYellow),
		success: color.New(color.Bold, color.FgGreen),
		plain:   color.New(color.Reset),
	}
	for _, c := range []*color.Color{s.started, s.success, s.plain} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

func (s *consoleSink) Publish(ev focus.Event) {
	c := s.plain
	switch ev.Status {
	case focus.StatusFocusingStarted:
		c = s.started
	case focus.StatusSuccess:
		c = s.success
	}

	line := "Autofocus : " + c.Sprint(string(ev.Status))
	if ev.Cycle != "" {
		line += fmt.Sprintf(" (cycle %.8s, attempt %d)", ev.Cycle, ev.Attempt)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "%s %s\n", ev.Time.Format("15:04:05.000"), line)
}
