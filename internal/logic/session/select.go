package session

import (
	"github.com/pkg/errors"

	"github.com/cjeanneret/MotionFocus/internal/debug"
	"github.com/cjeanneret/MotionFocus/internal/hw/camera"
	"github.com/cjeanneret/MotionFocus/internal/logic/selection"
)

// Selection is the camera and focus mode a session runs with. It is
// chosen once at startup and never changes afterwards.
type Selection struct {
	Camera camera.Descriptor
	Mode   camera.FocusMode
}

// Select enumerates the cameras, picks one and its focus mode, and applies
// the mode when the source supports it. The returned error wraps
// selection.ErrNoCameraAvailable or selection.ErrNoAcceptableFocusMode
// when the device cannot be used.
func Select(src camera.EnumerationSource) (Selection, error) {
	cams, err := src.ListCameras()
	if err != nil {
		return Selection{}, errors.Wrap(err, "list cameras")
	}
	debug.PrintStruct("Enumerated cameras", cams)

	cam, err := selection.Camera(cams)
	if err != nil {
		return Selection{}, err
	}

	modes, err := src.ListSupportedFocusModes(cam)
	if err != nil {
		return Selection{}, errors.Wrapf(err, "list focus modes of camera %s", cam)
	}
	debug.PrintStruct("Supported focus modes", modes)

	mode, err := selection.FocusMode(modes)
	if err != nil {
		return Selection{}, errors.WithMessagef(err, "camera %s", cam)
	}

	if mc, ok := src.(camera.ModeConfigurer); ok {
		if err := mc.SetFocusMode(cam, mode); err != nil {
			return Selection{}, errors.Wrapf(err, "set focus mode %s on camera %s", mode, cam)
		}
	}

	debug.With(debug.Fields{
		"camera": cam.ID,
		"facing": cam.Facing.String(),
		"mode":   string(mode),
	}).Info("camera selected")

	return Selection{Camera: cam, Mode: mode}, nil
}
