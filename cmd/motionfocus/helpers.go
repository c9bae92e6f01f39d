package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/cjeanneret/MotionFocus/internal/config"
	"github.com/cjeanneret/MotionFocus/internal/debug"
	"github.com/cjeanneret/MotionFocus/internal/hw/camera"
	"github.com/cjeanneret/MotionFocus/internal/hw/gpio"
	"github.com/cjeanneret/MotionFocus/internal/hw/imu"
)

// noRetryOverride is the --retry-delay-ms value meaning "use config".
const noRetryOverride = -1

// validateCLIOverrides checks CLI overrides. A zero threshold and a
// retry delay of noRetryOverride mean "use config default".
func validateCLIOverrides(threshold float64, retryDelayMs int) error {
	if threshold != 0 {
		if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold <= 0 || threshold > 100 {
			return fmt.Errorf("threshold must be in (0, 100], got %g", threshold)
		}
	}
	if retryDelayMs != noRetryOverride && (retryDelayMs < 0 || retryDelayMs > 60000) {
		return fmt.Errorf("retry_delay_ms must be between 0 and 60000, got %d", retryDelayMs)
	}
	return nil
}

// applyOverrides mutates cfg with the validated CLI overrides.
func applyOverrides(cfg *config.Config, threshold float64, retryDelayMs int) {
	if threshold > 0 {
		cfg.Motion.Threshold = threshold
	}
	if retryDelayMs != noRetryOverride {
		cfg.Focus.RetryDelayMs = retryDelayMs
	}
}

// webPortFlag implements pflag.Value for --web: 0 = disabled, --web alone → 8080, --web=8980 → 8980.
type webPortFlag struct {
	val         int
	defaultPort int
}

func (w *webPortFlag) String() string {
	if w.val == 0 {
		return "0"
	}
	return strconv.Itoa(w.val)
}

func (w *webPortFlag) Set(s string) error {
	if s == "" {
		w.val = w.defaultPort
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 || v > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", v)
	}
	w.val = v
	return nil
}

func (w *webPortFlag) Type() string { return "port" }

func (w *webPortFlag) port() int { return w.val }

// newFocusFromConfig selects a focus implementation based on configuration.
// g may be nil unless the camera type is gpio.
func newFocusFromConfig(g gpio.Driver, cfg *config.Config) (camera.FocusCapability, error) {
	switch cfg.Camera.Type {
	case config.CameraGPIO:
		if g == nil {
			return nil, fmt.Errorf("gpio camera needs a GPIO driver")
		}
		return camera.NewGPIOFocus(g, cfg.Camera.FocusPin, cfg.Camera.ConfirmPin, cfg.FocusDelay()), nil
	case config.CameraSimulated:
		return camera.NewSimulatedFocus(cfg.Camera.FailAttempts, cfg.FocusDelay()), nil
	default:
		return nil, fmt.Errorf("unsupported camera type: %s", cfg.Camera.Type)
	}
}

// newSourceFromConfig opens the motion source. The returned close function
// is never nil.
func newSourceFromConfig(cfg *config.Config, stdin io.Reader) (imu.Source, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Motion.Source {
	case config.SourceSimulated:
		return imu.NewSimulated(cfg.SampleInterval(), cfg.Motion.ShakeEvery, cfg.Motion.ShakeRatio), noop, nil
	case config.SourceReplay:
		if cfg.Motion.ReplayPath == "-" {
			return imu.NewReplay(stdin, cfg.SampleInterval()), noop, nil
		}
		f, err := os.Open(cfg.Motion.ReplayPath)
		if err != nil {
			return nil, noop, fmt.Errorf("open replay file: %w", err)
		}
		return imu.NewReplay(f, cfg.SampleInterval()), f.Close, nil
	default:
		return nil, noop, fmt.Errorf("unsupported motion source: %s", cfg.Motion.Source)
	}
}

// closeLogged runs closeFn on teardown and logs a failure.
func closeLogged(what string, closeFn func() error) {
	if err := closeFn(); err != nil {
		debug.Warn("closing %s failed: %v", what, err)
	}
}
