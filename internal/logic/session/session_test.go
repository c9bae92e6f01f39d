package session

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cjeanneret/MotionFocus/internal/hw/camera"
	"github.com/cjeanneret/MotionFocus/internal/hw/imu"
	"github.com/cjeanneret/MotionFocus/internal/logic/focus"
	"github.com/cjeanneret/MotionFocus/internal/logic/motion"
	"github.com/cjeanneret/MotionFocus/internal/logic/selection"
)

// recordingCamera keeps every callback; the test completes passes itself.
type recordingCamera struct {
	mu        sync.Mutex
	callbacks []func(bool)
}

func (r *recordingCamera) RequestFocus(onResult func(success bool)) {
	r.mu.Lock()
	r.callbacks = append(r.callbacks, onResult)
	r.mu.Unlock()
}

func (r *recordingCamera) requests() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.callbacks)
}

func (r *recordingCamera) complete(success bool) {
	r.mu.Lock()
	cb := r.callbacks[len(r.callbacks)-1]
	r.mu.Unlock()
	cb(success)
}

type statusLog struct {
	mu     sync.Mutex
	status []focus.Status
}

func (l *statusLog) Publish(ev focus.Event) {
	l.mu.Lock()
	l.status = append(l.status, ev.Status)
	l.mu.Unlock()
}

func (l *statusLog) count(s focus.Status) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, st := range l.status {
		if st == s {
			n++
		}
	}
	return n
}

func sampleWithRatio(ratio float64) imu.Sample {
	return imu.NewSample(0, 0, imu.StandardGravity*math.Sqrt(ratio))
}

func TestOrchestrator_EndToEnd(t *testing.T) {
	cam := &recordingCamera{}
	sink := &statusLog{}
	gate := motion.NewGate(motion.GateConfig{})
	o := NewOrchestrator(gate, cam, sink, 0)

	for _, r := range []float64{0.5, 1.2, 0.3} {
		o.HandleSample(sampleWithRatio(r))
	}
	for _, res := range []bool{false, true} {
		cam.complete(res)
	}

	if n := sink.count(focus.StatusFocusingStarted); n != 1 {
		t.Errorf("Focusing started published %d times, want 1", n)
	}
	if n := cam.requests(); n != 2 {
		t.Errorf("requestFocus called %d times, want 2", n)
	}
	if n := sink.count(focus.StatusSuccess); n != 1 {
		t.Errorf("Success published %d times, want 1", n)
	}
	if !o.Armed() {
		t.Error("gate should be re-armed after success")
	}
	if o.Status() != focus.StatusSuccess {
		t.Errorf("Status() = %q, want Success", o.Status())
	}
}

func TestOrchestrator_MotionWhileFocusingIsIgnored(t *testing.T) {
	cam := &recordingCamera{}
	sink := &statusLog{}
	o := NewOrchestrator(motion.NewGate(motion.GateConfig{}), cam, sink, 0)

	if !o.HandleSample(sampleWithRatio(1.5)) {
		t.Fatal("first strong sample should start a cycle")
	}
	for i := 0; i < 10; i++ {
		if o.HandleSample(sampleWithRatio(2)) {
			t.Fatal("motion during a focus cycle must not start another")
		}
	}
	cam.complete(false)
	if o.Armed() {
		t.Error("a failed pass must not re-arm the gate")
	}
	cam.complete(true)

	if !o.HandleSample(sampleWithRatio(1.5)) {
		t.Error("after success the next strong sample should start a new cycle")
	}
	if n := cam.requests(); n != 3 {
		t.Errorf("requests = %d, want 3", n)
	}
}

func TestOrchestrator_ManualTrigger(t *testing.T) {
	cam := &recordingCamera{}
	o := NewOrchestrator(motion.NewGate(motion.GateConfig{}), cam, nil, 0)

	if !o.Trigger() {
		t.Fatal("manual trigger while idle should start a cycle")
	}
	if o.Trigger() {
		t.Error("manual trigger while focusing should be ignored")
	}
	if o.Status() != focus.StatusFocusingStarted {
		t.Errorf("Status() = %q", o.Status())
	}
}

func TestOrchestrator_RunWithReplayAndSimulatedCamera(t *testing.T) {
	cam := camera.NewSimulatedFocus(1, time.Millisecond)
	sink := &statusLog{}
	o := NewOrchestrator(motion.NewGate(motion.GateConfig{}), cam, sink, 0)

	// One shake, then enough quiet samples for the cycle to finish.
	lines := []string{"0 0 9.8", "0 0 12"}
	for i := 0; i < 50; i++ {
		lines = append(lines, "0 0 9.8")
	}
	src := imu.NewReplay(strings.NewReader(strings.Join(lines, "\n")), 2*time.Millisecond)

	if err := o.Run(context.Background(), src); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := sink.count(focus.StatusFocusingStarted); n != 1 {
		t.Errorf("Focusing started published %d times, want 1", n)
	}
	if n := sink.count(focus.StatusSuccess); n != 1 {
		t.Errorf("Success published %d times, want 1", n)
	}
	if n := cam.Requests(); n != 2 {
		t.Errorf("requests = %d, want 2 (one failure, one success)", n)
	}
}

func TestOrchestrator_RunSourceEndsDuringCycle(t *testing.T) {
	cam := camera.NewSimulatedFocus(0, 5*time.Millisecond)
	sink := &statusLog{}
	o := NewOrchestrator(motion.NewGate(motion.GateConfig{}), cam, sink, 0)

	// The shake is the last line, so the source closes before the camera answers.
	src := imu.NewReplay(strings.NewReader("0 0 9.8\n0 0 12\n"), time.Millisecond)
	if err := o.Run(context.Background(), src); err != nil {
		t.Fatalf("Run: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for o.Status() != focus.StatusSuccess {
		if time.Now().After(deadline) {
			t.Fatalf("status = %q after source closed, want %q", o.Status(), focus.StatusSuccess)
		}
		time.Sleep(time.Millisecond)
	}
	if !o.Armed() {
		t.Error("gate not re-armed after the cycle finished")
	}
	if n := cam.Requests(); n != 1 {
		t.Errorf("requests = %d, want 1", n)
	}
	if o.Cancel() {
		t.Error("Cancel reported a cycle in flight after success")
	}
}

func TestOrchestrator_RunStopsOnCancel(t *testing.T) {
	cam := &recordingCamera{}
	o := NewOrchestrator(motion.NewGate(motion.GateConfig{}), cam, nil, 0)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- o.Run(ctx, imu.NewSimulated(time.Millisecond, 3, 1.5))
	}()

	deadline := time.Now().Add(2 * time.Second)
	for cam.requests() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("timeout waiting for a focus request")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	// The cycle was cancelled on shutdown, so a late result is dropped.
	cam.complete(true)
	if o.Status() != focus.StatusFocusingStarted {
		t.Errorf("late result after shutdown changed status to %q", o.Status())
	}
}

// ---------- Select ----------

type brokenSource struct {
	listErr  error
	modesErr error
	cams     []camera.Descriptor
}

func (b brokenSource) ListCameras() ([]camera.Descriptor, error) { return b.cams, b.listErr }

func (b brokenSource) ListSupportedFocusModes(camera.Descriptor) ([]camera.FocusMode, error) {
	return nil, b.modesErr
}

func TestSelect_PicksAndAppliesMode(t *testing.T) {
	enum := camera.NewStaticEnumeration([]camera.Device{
		{Descriptor: camera.Descriptor{ID: "front", Facing: camera.Front}, FocusModes: []camera.FocusMode{camera.FocusModeAuto}},
		{Descriptor: camera.Descriptor{ID: "back", Facing: camera.Back}, FocusModes: []camera.FocusMode{camera.FocusModeContinuousVideo, camera.FocusModeContinuousPicture}},
	})

	sel, err := Select(enum)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.Camera.ID != "back" || sel.Mode != camera.FocusModeContinuousPicture {
		t.Errorf("Select = %+v, want back camera with continuous-picture", sel)
	}
	if m, ok := enum.AppliedMode("back"); !ok || m != camera.FocusModeContinuousPicture {
		t.Errorf("mode not applied to camera: %q, %v", m, ok)
	}
}

func TestSelect_Errors(t *testing.T) {
	back := camera.Descriptor{ID: "0", Facing: camera.Back}
	boom := errors.New("boom")

	cases := []struct {
		name string
		src  camera.EnumerationSource
		want error
	}{
		{"list_fails", brokenSource{listErr: boom}, boom},
		{"no_camera", brokenSource{cams: []camera.Descriptor{{ID: "x", Facing: camera.Other}}}, selection.ErrNoCameraAvailable},
		{"modes_fail", brokenSource{cams: []camera.Descriptor{back}, modesErr: boom}, boom},
		{"no_mode", camera.NewStaticEnumeration([]camera.Device{{Descriptor: back, FocusModes: []camera.FocusMode{"macro", "edof"}}}), selection.ErrNoAcceptableFocusMode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Select(tc.src)
			if !errors.Is(err, tc.want) {
				t.Errorf("Select error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestMultiSink(t *testing.T) {
	a, b := &statusLog{}, &statusLog{}
	var calls int
	sink := MultiSink{a, nil, b, SinkFunc(func(focus.Event) { calls++ })}

	sink.Publish(focus.Event{Status: focus.StatusSuccess})

	if a.count(focus.StatusSuccess) != 1 || b.count(focus.StatusSuccess) != 1 || calls != 1 {
		t.Error("every sink should receive the event once")
	}
}
