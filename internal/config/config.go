package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/cjeanneret/MotionFocus/internal/hw/camera"
)

// MaxConfigFileBytes caps the size of a config file.
const MaxConfigFileBytes = 1 << 20

// Camera backends.
const (
	CameraSimulated = "simulated"
	CameraGPIO      = "gpio"
)

// Motion sources.
const (
	SourceSimulated = "simulated"
	SourceReplay    = "replay"
)

// DeviceConfig describes one camera offered by the enumeration source.
type DeviceConfig struct {
	ID         string   `yaml:"id"`
	Facing     string   `yaml:"facing"`      // back | front | other
	FocusModes []string `yaml:"focus_modes"` // e.g. auto, continuous-picture
}

// CameraConfig describes how to drive the camera.
// Type selects a concrete implementation ("simulated" or "gpio").
type CameraConfig struct {
	Type         string         `yaml:"type"`
	FocusPin     int            `yaml:"focus_pin"`      // gpio: FOCUS line (active LOW)
	ConfirmPin   int            `yaml:"confirm_pin"`    // gpio: focus-confirm input, 0 = not wired
	FocusDelayMs int            `yaml:"focus_delay_ms"` // time for one AF pass
	FailAttempts int            `yaml:"fail_attempts"`  // simulated: failed passes before success
	Devices      []DeviceConfig `yaml:"devices"`
}

// MotionConfig describes the accelerometer feed and the trigger.
type MotionConfig struct {
	Source           string  `yaml:"source"`      // simulated | replay
	ReplayPath       string  `yaml:"replay_path"` // replay: file, "-" = stdin
	SampleIntervalMs int     `yaml:"sample_interval_ms"`
	ShakeEvery       int     `yaml:"shake_every"` // simulated: spike every N samples, 0 = never
	ShakeRatio       float64 `yaml:"shake_ratio"` // simulated: |a|²/g² of a spike
	Threshold        float64 `yaml:"threshold"`   // |a|²/g² trigger level
	Gravity          float64 `yaml:"gravity"`     // m/s²
}

// FocusConfig tunes the focus retry loop.
type FocusConfig struct {
	RetryDelayMs int `yaml:"retry_delay_ms"` // pause between failed pass and retry, 0 = immediate
}

// DefaultsConfig contains generic parameters.
type DefaultsConfig struct {
	DebugLevel int  `yaml:"debug_level"` // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	MockGPIO   bool `yaml:"mock_gpio"`   // use mock GPIO (true=dev/test, false=real Raspberry Pi)
}

// Config aggregates all application configuration.
type Config struct {
	Camera   CameraConfig   `yaml:"camera"`
	Motion   MotionConfig   `yaml:"motion"`
	Focus    FocusConfig    `yaml:"focus"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// ValidateConfigPath accepts only .yaml files inside a configs/ directory.
func ValidateConfigPath(path string) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if filepath.Ext(path) != ".yaml" {
		return errors.Errorf("config path %q must end in .yaml", path)
	}
	clean := filepath.Clean(path)
	if strings.HasPrefix(clean, "..") {
		return errors.Errorf("config path %q escapes the working directory", path)
	}
	abs, err := filepath.Abs(clean)
	if err != nil {
		return errors.Wrapf(err, "resolve config path %q", path)
	}
	if filepath.Base(filepath.Dir(abs)) != "configs" {
		return errors.Errorf("config path %q must be inside a configs/ directory", path)
	}
	return nil
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "stat config file")
	}
	if info.Size() > MaxConfigFileBytes {
		return nil, errors.Errorf("config file is %d bytes, limit is %d", info.Size(), MaxConfigFileBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal yaml")
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() error {
	switch c.Camera.Type {
	case CameraSimulated:
		if c.Camera.FailAttempts < 0 {
			return errors.Errorf("camera.fail_attempts must be >= 0, got %d", c.Camera.FailAttempts)
		}
	case CameraGPIO:
		if c.Camera.FocusPin <= 0 {
			return errors.New("camera.focus_pin is required for gpio camera")
		}
		if c.Camera.ConfirmPin == c.Camera.FocusPin {
			return errors.New("camera.confirm_pin must differ from camera.focus_pin")
		}
	case "":
		return errors.New("camera.type is required")
	default:
		return errors.Errorf("unsupported camera type: %q", c.Camera.Type)
	}
	// An empty device list is valid here; camera selection reports it.
	if _, err := c.CameraDevices(); err != nil {
		return err
	}
	if c.Camera.FocusDelayMs <= 0 {
		c.Camera.FocusDelayMs = 500 // 500ms for autofocus
	}

	switch c.Motion.Source {
	case "":
		c.Motion.Source = SourceSimulated
	case SourceSimulated:
	case SourceReplay:
		if c.Motion.ReplayPath == "" {
			return errors.New("motion.replay_path is required for replay source")
		}
	default:
		return errors.Errorf("unsupported motion source: %q", c.Motion.Source)
	}
	if c.Motion.SampleIntervalMs <= 0 {
		c.Motion.SampleIntervalMs = 20 // 50 Hz
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"threshold", c.Motion.Threshold},
		{"gravity", c.Motion.Gravity},
		{"shake_ratio", c.Motion.ShakeRatio},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return errors.Errorf("motion.%s must be a finite number >= 0, got %g", f.name, f.v)
		}
	}
	if c.Motion.Threshold == 0 {
		c.Motion.Threshold = 1.08
	}
	if c.Motion.Gravity == 0 {
		c.Motion.Gravity = 9.80665
	}
	if c.Motion.ShakeRatio <= 0 {
		c.Motion.ShakeRatio = 1.5
	}

	if c.Focus.RetryDelayMs < 0 {
		return errors.Errorf("focus.retry_delay_ms must be >= 0, got %d", c.Focus.RetryDelayMs)
	}
	if c.Defaults.DebugLevel < 0 || c.Defaults.DebugLevel > 4 {
		return errors.Errorf("defaults.debug_level must be between 0 and 4, got %d", c.Defaults.DebugLevel)
	}
	return nil
}

// CameraDevices converts the configured device list for camera.NewStaticEnumeration.
func (c *Config) CameraDevices() ([]camera.Device, error) {
	devices := make([]camera.Device, 0, len(c.Camera.Devices))
	for i, d := range c.Camera.Devices {
		if d.ID == "" {
			return nil, errors.Errorf("camera.devices[%d].id is required", i)
		}
		facing, err := camera.ParseFacing(d.Facing)
		if err != nil {
			return nil, errors.WithMessagef(err, "camera.devices[%d]", i)
		}
		modes := make([]camera.FocusMode, len(d.FocusModes))
		for j, m := range d.FocusModes {
			modes[j] = camera.FocusMode(m)
		}
		devices = append(devices, camera.Device{
			Descriptor: camera.Descriptor{ID: d.ID, Facing: facing},
			FocusModes: modes,
		})
	}
	return devices, nil
}

// FocusDelay returns the duration of one autofocus pass.
func (c *Config) FocusDelay() time.Duration {
	return time.Duration(c.Camera.FocusDelayMs) * time.Millisecond
}

// SampleInterval returns the period between two motion samples.
func (c *Config) SampleInterval() time.Duration {
	return time.Duration(c.Motion.SampleIntervalMs) * time.Millisecond
}

// RetryDelay returns the pause before retrying a failed pass.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Focus.RetryDelayMs) * time.Millisecond
}
