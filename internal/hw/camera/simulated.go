package camera

import (
	"sync"
	"time"

	"github.com/cjeanneret/MotionFocus/internal/debug"
)

// SimulatedFocus stands in for a camera during development. It counts
// passes, not cycles: after each success the next failAttempts passes fail
// and the one after succeeds. It knows nothing of cycles, so a cycle
// abandoned part-way leaves its failures counted for the next one.
// Results are delivered on a timer goroutine after delay.
type SimulatedFocus struct {
	failAttempts int
	delay        time.Duration

	mu       sync.Mutex
	failed   int
	requests int
}

var _ FocusCapability = &SimulatedFocus{}

func NewSimulatedFocus(failAttempts int, delay time.Duration) *SimulatedFocus {
	if failAttempts < 0 {
		failAttempts = 0
	}
	return &SimulatedFocus{
		failAttempts: failAttempts,
		delay:        delay,
	}
}

func (s *SimulatedFocus) RequestFocus(onResult func(success bool)) {
	s.mu.Lock()
	s.requests++
	success := s.failed >= s.failAttempts
	if success {
		s.failed = 0
	} else {
		s.failed++
	}
	s.mu.Unlock()

	debug.Trace("Camera (simulated): focus pass will report success=%v in %v", success, s.delay)
	time.AfterFunc(s.delay, func() { onResult(success) })
}

// Requests returns how many passes were requested so far.
func (s *SimulatedFocus) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}
