package camera

import (
	"time"

	"github.com/cjeanneret/MotionFocus/internal/debug"
	"github.com/cjeanneret/MotionFocus/internal/hw/gpio"
)

// GPIOFocus drives autofocus through a wired remote connector:
// - FOCUS: half-press, activated by setting it LOW
// - CONFIRM (optional): focus-confirm input, LOW when the lens is in focus
//
// Focus pass:
// 1. FOCUS to LOW (starts autofocus)
// 2. Wait focusDelay on a timer, without blocking the caller
// 3. Read CONFIRM (no confirm pin = assume success)
// 4. FOCUS back to HIGH and report the result
type GPIOFocus struct {
	gpio       gpio.Driver
	focusPin   int
	confirmPin int           // 0 = not wired
	focusDelay time.Duration // time for one autofocus pass
}

var _ FocusCapability = &GPIOFocus{}

// NewGPIOFocus creates a GPIO focus line driver.
// focusPin is the FOCUS line; confirmPin is the optional confirm input (0 = none).
func NewGPIOFocus(g gpio.Driver, focusPin, confirmPin int, focusDelay time.Duration) *GPIOFocus {
	_ = g.SetupPin(focusPin, gpio.Output)
	// By default, the line is HIGH (inactive)
	_ = g.WritePin(focusPin, gpio.High)

	if confirmPin > 0 {
		_ = g.SetupPin(confirmPin, gpio.Input)
	}

	return &GPIOFocus{
		gpio:       g,
		focusPin:   focusPin,
		confirmPin: confirmPin,
		focusDelay: focusDelay,
	}
}

// RequestFocus half-presses FOCUS and reports the outcome after focusDelay.
func (f *GPIOFocus) RequestFocus(onResult func(success bool)) {
	debug.Verbose("Camera: activating FOCUS (pin %d -> LOW)", f.focusPin)
	if err := f.gpio.WritePin(f.focusPin, gpio.Low); err != nil {
		debug.Error(err)
		// Report asynchronously, as the hardware path would.
		go onResult(false)
		return
	}

	time.AfterFunc(f.focusDelay, func() {
		onResult(f.finish())
	})
}

func (f *GPIOFocus) finish() bool {
	ok := true
	if f.confirmPin > 0 {
		level, err := f.gpio.ReadPin(f.confirmPin)
		if err != nil {
			debug.Error(err)
			ok = false
		} else {
			ok = level == gpio.Low
		}
	}

	debug.Verbose("Camera: releasing FOCUS (pin %d -> HIGH)", f.focusPin)
	if err := f.gpio.WritePin(f.focusPin, gpio.High); err != nil {
		debug.Error(err)
		return false
	}
	return ok
}
