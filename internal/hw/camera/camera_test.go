package camera

import (
	"testing"
	"time"

	"github.com/cjeanneret/MotionFocus/internal/hw/gpio"
)

func waitResult(t *testing.T, ch <-chan bool) bool {
	t.Helper()
	select {
	case ok := <-ch:
		return ok
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for focus result")
		return false
	}
}

func TestGPIOFocus_PinInitializedHigh(t *testing.T) {
	drv := &gpio.MockDriver{}
	NewGPIOFocus(drv, 24, 0, time.Millisecond)

	writes := drv.Writes()
	if len(writes) != 1 || writes[0].Pin != 24 || writes[0].Level != gpio.High {
		t.Errorf("focus pin should be initialized to HIGH, got %v", writes)
	}
}

func TestGPIOFocus_PassSequence(t *testing.T) {
	drv := &gpio.MockDriver{}
	cam := NewGPIOFocus(drv, 24, 0, time.Microsecond)

	results := make(chan bool, 1)
	cam.RequestFocus(func(ok bool) { results <- ok })

	if !waitResult(t, results) {
		t.Error("without a confirm pin a pass should report success")
	}

	// Expected: init HIGH, FOCUS LOW (activate AF), FOCUS HIGH (release)
	writes := drv.Writes()
	expected := []gpio.Write{
		{Pin: 24, Level: gpio.High},
		{Pin: 24, Level: gpio.Low},
		{Pin: 24, Level: gpio.High},
	}
	if len(writes) != len(expected) {
		t.Fatalf("expected %d writes, got %d: %v", len(expected), len(writes), writes)
	}
	for i, exp := range expected {
		if writes[i] != exp {
			t.Errorf("write %d = %+v, want %+v", i, writes[i], exp)
		}
	}
}

func TestGPIOFocus_ConfirmPin(t *testing.T) {
	cases := []struct {
		name    string
		confirm gpio.Level
		want    bool
	}{
		{"confirmed", gpio.Low, true},
		{"not_confirmed", gpio.High, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			drv := &gpio.MockDriver{}
			drv.SetInput(23, tc.confirm)
			cam := NewGPIOFocus(drv, 24, 23, time.Microsecond)

			results := make(chan bool, 1)
			cam.RequestFocus(func(ok bool) { results <- ok })
			if got := waitResult(t, results); got != tc.want {
				t.Errorf("success = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestGPIOFocus_ImplementsFocusCapability(t *testing.T) {
	var _ FocusCapability = NewGPIOFocus(&gpio.MockDriver{}, 24, 0, time.Millisecond)
}

func TestSimulatedFocus_FailsThenSucceeds(t *testing.T) {
	cam := NewSimulatedFocus(2, time.Microsecond)
	results := make(chan bool, 1)

	var got []bool
	for i := 0; i < 6; i++ {
		cam.RequestFocus(func(ok bool) { results <- ok })
		got = append(got, waitResult(t, results))
	}

	want := []bool{false, false, true, false, false, true}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("results = %v, want %v", got, want)
		}
	}
	if cam.Requests() != 6 {
		t.Errorf("Requests() = %d, want 6", cam.Requests())
	}
}

func TestSimulatedFocus_CountsPassesAcrossCycles(t *testing.T) {
	cam := NewSimulatedFocus(2, time.Microsecond)
	results := make(chan bool, 1)

	// First cycle is abandoned after one failed pass.
	cam.RequestFocus(func(ok bool) { results <- ok })
	if waitResult(t, results) {
		t.Fatal("first pass should fail")
	}

	// The next cycle inherits that failure and succeeds on its second pass.
	var got []bool
	for i := 0; i < 2; i++ {
		cam.RequestFocus(func(ok bool) { results <- ok })
		got = append(got, waitResult(t, results))
	}
	if got[0] || !got[1] {
		t.Errorf("results after abandoned cycle = %v, want [false true]", got)
	}
}

func TestSimulatedFocus_NegativeFailAttempts(t *testing.T) {
	cam := NewSimulatedFocus(-3, time.Microsecond)
	results := make(chan bool, 1)
	cam.RequestFocus(func(ok bool) { results <- ok })
	if !waitResult(t, results) {
		t.Error("negative fail attempts should behave as 0")
	}
}

func TestParseFacing(t *testing.T) {
	cases := []struct {
		in      string
		want    Facing
		wantErr bool
	}{
		{"back", Back, false},
		{"FRONT", Front, false},
		{" other ", Other, false},
		{"external", Other, false},
		{"sideways", Other, true},
	}
	for _, tc := range cases {
		got, err := ParseFacing(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseFacing(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if got != tc.want {
			t.Errorf("ParseFacing(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFocusMode_Known(t *testing.T) {
	for _, m := range []FocusMode{FocusModeAuto, FocusModeContinuousPicture, FocusModeContinuousVideo} {
		if !m.Known() {
			t.Errorf("%q should be known", m)
		}
	}
	if FocusMode("macro").Known() {
		t.Error("macro should not be known")
	}
}

func TestStaticEnumeration(t *testing.T) {
	back := Descriptor{ID: "0", Facing: Back}
	front := Descriptor{ID: "1", Facing: Front}
	enum := NewStaticEnumeration([]Device{
		{Descriptor: back, FocusModes: []FocusMode{FocusModeAuto}},
		{Descriptor: front, FocusModes: []FocusMode{FocusModeContinuousVideo}},
	})

	cams, err := enum.ListCameras()
	if err != nil {
		t.Fatalf("ListCameras: %v", err)
	}
	if len(cams) != 2 || cams[0] != back || cams[1] != front {
		t.Errorf("ListCameras = %v, want [%v %v]", cams, back, front)
	}

	modes, err := enum.ListSupportedFocusModes(front)
	if err != nil {
		t.Fatalf("ListSupportedFocusModes: %v", err)
	}
	if len(modes) != 1 || modes[0] != FocusModeContinuousVideo {
		t.Errorf("modes = %v", modes)
	}

	if _, err := enum.ListSupportedFocusModes(Descriptor{ID: "9"}); err == nil {
		t.Error("expected error for unknown camera")
	}

	if err := enum.SetFocusMode(back, FocusModeAuto); err != nil {
		t.Fatalf("SetFocusMode: %v", err)
	}
	if m, ok := enum.AppliedMode("0"); !ok || m != FocusModeAuto {
		t.Errorf("AppliedMode = %q, %v", m, ok)
	}
	if _, ok := enum.AppliedMode("1"); ok {
		t.Error("no mode should be applied to the front camera")
	}
}
