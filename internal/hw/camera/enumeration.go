package camera

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/cjeanneret/MotionFocus/internal/debug"
)

// Device is one camera as declared in the configuration.
type Device struct {
	Descriptor Descriptor
	FocusModes []FocusMode
}

// StaticEnumeration serves a fixed list of cameras, typically from config.
type StaticEnumeration struct {
	devices []Device

	mu      sync.Mutex
	applied map[string]FocusMode
}

var (
	_ EnumerationSource = &StaticEnumeration{}
	_ ModeConfigurer    = &StaticEnumeration{}
)

// NewStaticEnumeration keeps the devices in the given order.
func NewStaticEnumeration(devices []Device) *StaticEnumeration {
	return &StaticEnumeration{
		devices: devices,
		applied: make(map[string]FocusMode),
	}
}

func (s *StaticEnumeration) ListCameras() ([]Descriptor, error) {
	out := make([]Descriptor, 0, len(s.devices))
	for _, d := range s.devices {
		out = append(out, d.Descriptor)
	}
	return out, nil
}

func (s *StaticEnumeration) ListSupportedFocusModes(d Descriptor) ([]FocusMode, error) {
	for _, dev := range s.devices {
		if dev.Descriptor == d {
			return append([]FocusMode(nil), dev.FocusModes...), nil
		}
	}
	return nil, errors.Errorf("unknown camera %s", d)
}

// SetFocusMode records the mode; a real camera would program it here.
func (s *StaticEnumeration) SetFocusMode(d Descriptor, m FocusMode) error {
	if _, err := s.ListSupportedFocusModes(d); err != nil {
		return err
	}
	debug.Verbose("Camera %s: focus mode set to %s", d, m)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied[d.ID] = m
	return nil
}

// AppliedMode returns the mode last set on the camera with the given ID.
func (s *StaticEnumeration) AppliedMode(id string) (FocusMode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.applied[id]
	return m, ok
}
