// Package focus holds the autofocus state machine: it owns whether a focus
// cycle is running, issues passes to the camera, retries failed passes and
// publishes status.
package focus

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cjeanneret/MotionFocus/internal/debug"
	"github.com/cjeanneret/MotionFocus/internal/hw/camera"
)

// Options wires the controller to its surroundings. Nil hooks are no-ops.
type Options struct {
	// Publish receives every status change. It runs under the controller
	// lock, so it must not block and must not call back into the controller.
	Publish func(Event)
	// Rearm is called, under the same rules, when a cycle ends successfully.
	Rearm func()
	// RetryDelay waits before reissuing a failed pass. Zero retries
	// immediately, which is the reference behaviour. Retries are unbounded
	// either way.
	RetryDelay time.Duration
}

// Controller serialises triggers and focus results under one mutex.
// Status is published under that mutex, so observers see "Focusing
// started" and "Success" strictly alternating. Camera calls happen after
// the lock is released, so a camera that answers synchronously cannot
// deadlock it.
type Controller struct {
	cam  camera.FocusCapability
	opts Options

	mu       sync.Mutex
	state    state
	status   Status
	cycle    string
	attempts int    // passes issued in the current cycle
	token    uint64 // identifies the pass whose result is awaited; 0 is never issued
	retry    *time.Timer
}

func NewController(cam camera.FocusCapability, opts Options) *Controller {
	if opts.Publish == nil {
		opts.Publish = func(Event) {}
	}
	if opts.Rearm == nil {
		opts.Rearm = func() {}
	}
	return &Controller{
		cam:  cam,
		opts: opts,
	}
}

// OnTrigger starts a focus cycle. It returns false, and does nothing, when
// a cycle is already running.
func (c *Controller) OnTrigger() bool {
	c.mu.Lock()
	if c.state == focusing {
		cycle := c.cycle
		c.mu.Unlock()
		debug.Trace("focus trigger ignored, cycle %s still running", cycle)
		return false
	}

	c.state = focusing
	c.cycle = uuid.NewString()
	c.attempts = 0
	c.status = StatusFocusingStarted
	token := c.nextPassLocked()
	ev := c.eventLocked()
	c.opts.Publish(ev)
	c.mu.Unlock()

	debug.Focus(ev.Cycle, ev.Attempt, "started")
	c.issue(token)
	return true
}

// OnFocusResult applies a result to the pass currently awaited. Results
// that arrive while no cycle is running are dropped.
func (c *Controller) OnFocusResult(success bool) {
	c.resolve(0, success)
}

// Status returns the last published status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Cancel abandons a running cycle, e.g. on session teardown. Results still
// in flight become stale. No status is published and the gate is not
// re-armed. It reports whether a cycle was running.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != focusing {
		return false
	}
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
	c.state = idle
	c.token++
	debug.Live("focus cycle %s cancelled after %d attempt(s)", c.cycle, c.attempts)
	return true
}

// nextPassLocked accounts for a new pass and returns its token.
func (c *Controller) nextPassLocked() uint64 {
	c.token++
	c.attempts++
	return c.token
}

func (c *Controller) eventLocked() Event {
	return Event{
		Status:  c.status,
		Cycle:   c.cycle,
		Attempt: c.attempts,
		Time:    time.Now(),
	}
}

func (c *Controller) issue(token uint64) {
	c.cam.RequestFocus(func(success bool) {
		c.resolve(token, success)
	})
}

// resolve handles the result of pass token; token 0 means whichever pass
// is currently awaited.
func (c *Controller) resolve(token uint64, success bool) {
	c.mu.Lock()
	if c.state != focusing || (token != 0 && token != c.token) {
		c.mu.Unlock()
		debug.Trace("dropping stale focus result (success=%v, pass=%d)", success, token)
		return
	}

	if success {
		c.state = idle
		c.status = StatusSuccess
		ev := c.eventLocked()
		c.opts.Publish(ev)
		c.opts.Rearm()
		c.mu.Unlock()

		debug.Focus(ev.Cycle, ev.Attempt, "succeeded")
		return
	}

	next := c.nextPassLocked()
	cycle, attempts := c.cycle, c.attempts
	delay := c.opts.RetryDelay
	if delay > 0 {
		c.retry = time.AfterFunc(delay, func() { c.retryPass(next) })
	}
	c.mu.Unlock()

	debug.Focus(cycle, attempts-1, "failed, retrying")
	if delay <= 0 {
		c.issue(next)
	}
}

// retryPass issues a delayed retry unless the cycle moved on meanwhile.
func (c *Controller) retryPass(token uint64) {
	c.mu.Lock()
	current := c.state == focusing && c.token == token
	if current {
		c.retry = nil
	}
	c.mu.Unlock()

	if current {
		c.issue(token)
	}
}
