package camera

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Facing is the camera orientation relative to the device.
type Facing int

const (
	Other Facing = iota
	Back
	Front
)

func (f Facing) String() string {
	switch f {
	case Back:
		return "back"
	case Front:
		return "front"
	default:
		return "other"
	}
}

// ParseFacing accepts "back", "front" or "other" (case-insensitive).
func ParseFacing(s string) (Facing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "back":
		return Back, nil
	case "front":
		return Front, nil
	case "other", "external":
		return Other, nil
	default:
		return Other, errors.Errorf("unknown camera facing %q", s)
	}
}

// Descriptor identifies one enumerated camera.
type Descriptor struct {
	ID     string
	Facing Facing
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s(%s)", d.ID, d.Facing)
}

// FocusMode names an autofocus algorithm variant. Any name other than
// the three constants below is an "other" mode the controller cannot use
// unless it is the only one a camera offers.
type FocusMode string

const (
	FocusModeAuto              FocusMode = "auto"
	FocusModeContinuousPicture FocusMode = "continuous-picture"
	FocusModeContinuousVideo   FocusMode = "continuous-video"
)

// Known reports whether m is one of the three usable modes.
func (m FocusMode) Known() bool {
	switch m {
	case FocusModeAuto, FocusModeContinuousPicture, FocusModeContinuousVideo:
		return true
	}
	return false
}

// EnumerationSource lists the cameras of the device and what they support.
// It is consulted once at session start.
type EnumerationSource interface {
	ListCameras() ([]Descriptor, error)
	ListSupportedFocusModes(d Descriptor) ([]FocusMode, error)
}

// ModeConfigurer is implemented by sources that can apply the selected focus mode.
type ModeConfigurer interface {
	SetFocusMode(d Descriptor, m FocusMode) error
}

// FocusCapability runs autofocus passes. RequestFocus must return
// immediately; onResult is called later, from any goroutine, and badly
// behaved implementations may call it more than once or never.
type FocusCapability interface {
	RequestFocus(onResult func(success bool))
}
