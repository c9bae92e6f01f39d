package imu

import (
	"context"

	"github.com/golang/geo/r3"
)

// StandardGravity is the Earth gravity constant in m/s².
const StandardGravity = 9.80665

// Sample is one accelerometer reading in m/s². Samples are delivered
// in arrival order, which is taken as temporal order.
type Sample struct {
	Accel r3.Vector
}

// NewSample builds a sample from the three axis readings.
func NewSample(x, y, z float64) Sample {
	return Sample{Accel: r3.Vector{X: x, Y: y, Z: z}}
}

// Source produces an unbounded stream of samples. The channel is closed
// when ctx is done or the source is exhausted.
type Source interface {
	Stream(ctx context.Context) <-chan Sample
}
