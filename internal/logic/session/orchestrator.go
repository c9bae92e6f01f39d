package session

import (
	"context"
	"time"

	"github.com/cjeanneret/MotionFocus/internal/debug"
	"github.com/cjeanneret/MotionFocus/internal/hw/camera"
	"github.com/cjeanneret/MotionFocus/internal/hw/imu"
	"github.com/cjeanneret/MotionFocus/internal/logic/focus"
	"github.com/cjeanneret/MotionFocus/internal/logic/motion"
)

// Orchestrator connects the motion gate to the focus controller and the
// controller's status to the outside. It holds no state of its own.
type Orchestrator struct {
	gate  *motion.Gate
	focus *focus.Controller
	sink  StatusSink
}

// NewOrchestrator builds the focus controller for cam: gate triggers start
// focus cycles, a successful cycle re-arms the gate, and every status
// change goes to sink. retryDelay is passed to the controller (0 = retry
// immediately).
func NewOrchestrator(gate *motion.Gate, cam camera.FocusCapability, sink StatusSink, retryDelay time.Duration) *Orchestrator {
	if sink == nil {
		sink = MultiSink(nil)
	}
	o := &Orchestrator{
		gate: gate,
		sink: sink,
	}
	o.focus = focus.NewController(cam, focus.Options{
		Publish:    o.forward,
		Rearm:      gate.Rearm,
		RetryDelay: retryDelay,
	})
	return o
}

func (o *Orchestrator) forward(ev focus.Event) {
	o.sink.Publish(ev)
}

// HandleSample feeds one motion sample through the gate and reports
// whether it started a focus cycle.
func (o *Orchestrator) HandleSample(s imu.Sample) bool {
	if !o.gate.Evaluate(s) {
		return false
	}
	return o.focus.OnTrigger()
}

// Trigger starts a focus cycle without motion, e.g. on user request.
// Like a motion trigger it is ignored while a cycle is running.
func (o *Orchestrator) Trigger() bool {
	debug.Live("manual focus trigger")
	return o.focus.OnTrigger()
}

// Status returns the last published focus status.
func (o *Orchestrator) Status() focus.Status {
	return o.focus.Status()
}

// Armed reports whether the motion gate can trigger.
func (o *Orchestrator) Armed() bool {
	return o.gate.Armed()
}

// Cancel abandons the focus cycle in flight, if any, and reports whether
// there was one. Results the camera delivers afterwards are dropped.
func (o *Orchestrator) Cancel() bool {
	if !o.focus.Cancel() {
		return false
	}
	debug.Info("focus cycle abandoned on shutdown")
	return true
}

// Run feeds samples from src until ctx is done or the source closes. A
// focus cycle still running when ctx is done is cancelled; one still
// running when the source merely runs out is left to finish.
func (o *Orchestrator) Run(ctx context.Context, src imu.Source) error {
	samples := src.Stream(ctx)
	for {
		select {
		case <-ctx.Done():
			o.Cancel()
			return ctx.Err()
		case s, ok := <-samples:
			if !ok {
				if err := ctx.Err(); err != nil {
					o.Cancel()
					return err
				}
				debug.Info("motion source closed")
				return nil
			}
			o.HandleSample(s)
		}
	}
}
