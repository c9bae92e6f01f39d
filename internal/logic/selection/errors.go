package selection

import "errors"

var (
	// ErrNoCameraAvailable is returned when no enumerated camera faces back or front.
	ErrNoCameraAvailable = errors.New("no camera available")

	// ErrNoAcceptableFocusMode is returned when the camera supports none of
	// auto, continuous-picture or continuous-video.
	ErrNoAcceptableFocusMode = errors.New("no acceptable focus mode")
)
