package focus

import "time"

// Status is the text observers see for the current focus cycle.
type Status string

const (
	StatusNone            Status = ""
	StatusFocusingStarted Status = "Focusing started"
	StatusSuccess         Status = "Success"
)

// Event is one published status change.
type Event struct {
	Status  Status    `json:"status"`
	Cycle   string    `json:"cycle"`   // focus cycle correlation ID
	Attempt int       `json:"attempt"` // focus passes issued in the cycle so far
	Time    time.Time `json:"time"`
}

type state int

const (
	idle state = iota
	focusing
)

func (s state) String() string {
	if s == focusing {
		return "focusing"
	}
	return "idle"
}
