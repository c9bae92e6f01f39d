package motion

import (
	"sync"

	"github.com/cjeanneret/MotionFocus/internal/debug"
	"github.com/cjeanneret/MotionFocus/internal/hw/imu"
)

// DefaultThreshold is the |a|²/g² ratio at which motion counts as a scene change.
const DefaultThreshold = 1.08

// GateConfig holds the trigger parameters. Zero values select the defaults.
type GateConfig struct {
	Threshold float64 // compared against |a|²/g²
	Gravity   float64 // local gravity in m/s²
}

// Gate turns accelerometer samples into refocus triggers. It sits between
// the sensor feed and the focus controller: once it has fired it stays
// quiet until Rearm is called, so a burst of high-rate samples yields a
// single trigger.
type Gate struct {
	threshold float64
	gravitySq float64

	mu    sync.Mutex
	armed bool
}

func NewGate(cfg GateConfig) *Gate {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Gravity <= 0 {
		cfg.Gravity = imu.StandardGravity
	}
	return &Gate{
		threshold: cfg.Threshold,
		gravitySq: cfg.Gravity * cfg.Gravity,
		armed:     true,
	}
}

// Ratio returns (x²+y²+z²)/g² for the sample.
func (g *Gate) Ratio(s imu.Sample) float64 {
	return s.Accel.Norm2() / g.gravitySq
}

// Evaluate reports whether s should trigger a refocus. A trigger disarms the gate.
func (g *Gate) Evaluate(s imu.Sample) bool {
	ratio := g.Ratio(s)

	g.mu.Lock()
	armed := g.armed
	triggered := armed && ratio >= g.threshold
	if triggered {
		g.armed = false
	}
	g.mu.Unlock()

	debug.Sample(ratio, armed, triggered)
	return triggered
}

// Rearm lets the next sample over the threshold trigger again.
func (g *Gate) Rearm() {
	g.mu.Lock()
	g.armed = true
	g.mu.Unlock()
	debug.Trace("motion gate re-armed")
}

// Armed reports whether the gate can currently trigger.
func (g *Gate) Armed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.armed
}

// Threshold returns the configured ratio threshold.
func (g *Gate) Threshold() float64 {
	return g.threshold
}
