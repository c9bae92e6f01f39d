package imu

import (
	"context"
	"math"
	"time"
)

// Simulated emits a device at rest (gravity on Z with a small wobble)
// every interval, and a shake spike every shakeEvery samples.
type Simulated struct {
	interval   time.Duration
	shakeEvery int
	shakeRatio float64
}

var _ Source = &Simulated{}

// NewSimulated creates a simulated accelerometer. shakeEvery <= 0 disables
// spikes; shakeRatio is the |a|²/g² ratio of a spike.
func NewSimulated(interval time.Duration, shakeEvery int, shakeRatio float64) *Simulated {
	if interval <= 0 {
		interval = 20 * time.Millisecond
	}
	return &Simulated{
		interval:   interval,
		shakeEvery: shakeEvery,
		shakeRatio: shakeRatio,
	}
}

// At returns the n-th simulated sample.
func (s *Simulated) At(n int) Sample {
	if s.shakeEvery > 0 && n > 0 && n%s.shakeEvery == 0 {
		return NewSample(0, 0, StandardGravity*math.Sqrt(s.shakeRatio))
	}
	wobble := 0.05 * math.Sin(float64(n)/7)
	return NewSample(wobble, -wobble, StandardGravity)
}

func (s *Simulated) Stream(ctx context.Context) <-chan Sample {
	ch := make(chan Sample)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for n := 0; ; n++ {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			select {
			case ch <- s.At(n):
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
