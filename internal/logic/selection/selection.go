// Package selection picks the camera and the focus mode a session runs with.
// Both choices are pure functions of what the device reports.
package selection

import (
	"github.com/pkg/errors"

	"github.com/cjeanneret/MotionFocus/internal/hw/camera"
)

// focusModePriority is the order in which usable modes are preferred.
var focusModePriority = []camera.FocusMode{
	camera.FocusModeAuto,
	camera.FocusModeContinuousPicture,
	camera.FocusModeContinuousVideo,
}

// Camera returns the first back-facing camera, or failing that the first
// front-facing one.
func Camera(descs []camera.Descriptor) (camera.Descriptor, error) {
	for _, facing := range []camera.Facing{camera.Back, camera.Front} {
		for _, d := range descs {
			if d.Facing == facing {
				return d, nil
			}
		}
	}
	return camera.Descriptor{}, errors.Wrapf(ErrNoCameraAvailable, "cameras: %v", descs)
}

// FocusMode picks the focus mode. A camera offering a single usable mode
// gets that mode; otherwise the first of auto, continuous-picture,
// continuous-video that is supported wins. A lone mode outside those
// three is rejected like any other unusable set.
func FocusMode(supported []camera.FocusMode) (camera.FocusMode, error) {
	set := make(map[camera.FocusMode]struct{}, len(supported))
	for _, m := range supported {
		set[m] = struct{}{}
	}

	if len(set) == 1 && supported[0].Known() {
		return supported[0], nil
	}

	for _, m := range focusModePriority {
		if _, ok := set[m]; ok {
			return m, nil
		}
	}
	return "", errors.Wrapf(ErrNoAcceptableFocusMode, "supported: %v", supported)
}
