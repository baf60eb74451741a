package osc

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-synth/internal/testutil"
)

const testSampleRate = 44100.0

func TestNewValidation(t *testing.T) {
	for _, sr := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := New(ShapeSine, sr); err == nil {
			t.Fatalf("New(sampleRate=%v) expected error", sr)
		}
	}

	if _, err := New(Shape(42), testSampleRate); err == nil {
		t.Fatal("New(invalid shape) expected error")
	}

	o, err := NewSine(testSampleRate)
	if err != nil {
		t.Fatalf("NewSine() error = %v", err)
	}

	if o.Gain() != 1 || o.Width() != 0.5 || o.Sync() != SyncFreq || o.Frequency() != 0 {
		t.Fatalf("unexpected defaults: gain=%v width=%v sync=%v freq=%v",
			o.Gain(), o.Width(), o.Sync(), o.Frequency())
	}
}

func TestSineFirstSamples(t *testing.T) {
	o, err := NewSine(testSampleRate)
	if err != nil {
		t.Fatal(err)
	}

	if err := o.SetFrequency(1000); err != nil {
		t.Fatal(err)
	}

	o.SetGain(1)

	if got := o.Next(); got != 0 {
		t.Fatalf("first sample = %v, want 0", got)
	}

	want := math.Sin(2 * math.Pi * 1000 / testSampleRate)
	if got := o.Next(); math.Abs(got-want) > 1e-12 {
		t.Fatalf("second sample = %v, want %v", got, want)
	}
}

func TestSineMatchesReference(t *testing.T) {
	o, err := NewSine(testSampleRate)
	if err != nil {
		t.Fatal(err)
	}

	if err := o.SetFrequency(1000); err != nil {
		t.Fatal(err)
	}

	got := testutil.Render(o, 512)
	want := testutil.DeterministicSine(1000, testSampleRate, 1, 512)
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-9)
}

func TestPhaseAdvanceAndWrap(t *testing.T) {
	o, err := NewPhasor(100)
	if err != nil {
		t.Fatal(err)
	}

	if err := o.SetFrequency(30); err != nil {
		t.Fatal(err)
	}

	want := []float64{0, 0.3, 0.6, 0.9, 0.2, 0.5}
	for i, w := range want {
		got := o.Next()
		if math.Abs(got-w) > 1e-12 {
			t.Fatalf("sample %d = %v, want %v", i, got, w)
		}

		if p := o.Phase(); p < 0 || p >= 1 {
			t.Fatalf("phase %v out of [0,1)", p)
		}
	}
}

func TestSineIntegratesToZero(t *testing.T) {
	o, err := NewSine(testSampleRate)
	if err != nil {
		t.Fatal(err)
	}

	// 441 Hz at 44.1 kHz is exactly 100 samples per period.
	if err := o.SetFrequency(441); err != nil {
		t.Fatal(err)
	}

	var sum, peak float64
	for range 100 {
		v := o.Next()
		sum += v
		peak = math.Max(peak, math.Abs(v))
	}

	if math.Abs(sum) > 1e-9 {
		t.Fatalf("sum over one period = %v, want ~0", sum)
	}

	if math.Abs(peak-1) > 1e-3 {
		t.Fatalf("peak = %v, want ~1", peak)
	}
}

func TestShapeValues(t *testing.T) {
	tests := []struct {
		name  string
		fn    func(float64) float64
		phase float64
		want  float64
	}{
		{"sine 0", Sine, 0, 0},
		{"sine quarter", Sine, 0.25, 1},
		{"sine half", Sine, 0.5, 0},
		{"sine three quarters", Sine, 0.75, -1},
		{"phasor", Phasor, 0.4, 0.4},
		{"tri 0", func(p float64) float64 { return Triangle(p, 0.5) }, 0, 0},
		{"tri quarter", func(p float64) float64 { return Triangle(p, 0.5) }, 0.25, 1},
		{"tri half", func(p float64) float64 { return Triangle(p, 0.5) }, 0.5, 0},
		{"tri three quarters", func(p float64) float64 { return Triangle(p, 0.5) }, 0.75, -1},
		{"tri width 0", func(p float64) float64 { return Triangle(p, 0) }, 0, 0.5},
		{"tri width 0 edge", func(p float64) float64 { return Triangle(p, 0) }, 0.75, 1},
		{"tri width 1", func(p float64) float64 { return Triangle(p, 1) }, 0, -0.5},
		{"tri width 1 edge", func(p float64) float64 { return Triangle(p, 1) }, 0.75, -1},
		{"pulse high", func(p float64) float64 { return Pulse(p, 0.25) }, 0.1, 1},
		{"pulse low", func(p float64) float64 { return Pulse(p, 0.25) }, 0.3, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn(tt.phase)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTriangleDegenerateWidthsStayFinite(t *testing.T) {
	for _, width := range []float64{0, 1} {
		for i := range 1000 {
			phase := float64(i) / 1000
			v := Triangle(phase, width)
			if math.IsNaN(v) || math.IsInf(v, 0) || v < -1 || v > 1 {
				t.Fatalf("Triangle(%v, %v) = %v", phase, width, v)
			}
		}
	}
}

func TestZeroFrequencyIsSilent(t *testing.T) {
	o, err := NewSine(testSampleRate)
	if err != nil {
		t.Fatal(err)
	}

	_ = o.SetPhase(0.25)

	for range 10 {
		if v := o.Next(); v != 0 {
			t.Fatalf("Next() = %v, want 0", v)
		}
	}

	if o.Phase() != 0.25 {
		t.Fatalf("phase moved to %v while silent", o.Phase())
	}
}

func TestSyncPhaseDoesNotAdvance(t *testing.T) {
	o, err := NewSine(testSampleRate)
	if err != nil {
		t.Fatal(err)
	}

	_ = o.SetFrequency(1000)
	_ = o.SetSync(SyncPhase)
	_ = o.SetPhase(0.25)

	for range 4 {
		if v := o.Next(); math.Abs(v-1) > 1e-12 {
			t.Fatalf("Next() = %v, want 1", v)
		}
	}

	_ = o.SetPhase(0.75)
	if v := o.Next(); math.Abs(v+1) > 1e-12 {
		t.Fatalf("Next() = %v, want -1", v)
	}
}

func TestSyncFMAddsModulation(t *testing.T) {
	o, err := NewPhasor(100)
	if err != nil {
		t.Fatal(err)
	}

	_ = o.SetFrequency(10)
	_ = o.SetMod(20)
	_ = o.SetSync(SyncFM)

	o.Next()

	if got := o.PhaseIncrement(); math.Abs(got-0.3) > 1e-12 {
		t.Fatalf("phase increment = %v, want 0.3", got)
	}

	if got := o.Phase(); math.Abs(got-0.3) > 1e-12 {
		t.Fatalf("phase = %v, want 0.3", got)
	}
}

func TestNoteOnNoteOff(t *testing.T) {
	o, err := NewSine(testSampleRate)
	if err != nil {
		t.Fatal(err)
	}

	_ = o.SetPhase(0.5)
	o.NoteOn(57, 0.5)

	if o.Frequency() != 220 {
		t.Fatalf("frequency = %v, want 220", o.Frequency())
	}

	if o.Gain() != 0.5 || o.Phase() != 0 {
		t.Fatalf("gain=%v phase=%v after NoteOn", o.Gain(), o.Phase())
	}

	o.Next()

	v := o.Next()
	want := 0.5 * math.Sin(2*math.Pi*220/testSampleRate)
	if math.Abs(v-want) > 1e-12 {
		t.Fatalf("Next() = %v, want %v", v, want)
	}

	o.NoteOff(57)

	if v := o.Next(); v != 0 {
		t.Fatalf("Next() after NoteOff = %v, want 0", v)
	}
}

func TestNoteOnOutOfRangeIsSilent(t *testing.T) {
	o, err := NewSine(testSampleRate)
	if err != nil {
		t.Fatal(err)
	}

	o.NoteOn(69, 1)
	o.Next()

	for _, note := range []float64{1e5, math.NaN()} {
		o.NoteOn(note, 1)

		if o.Frequency() != 0 || o.PhaseIncrement() != 0 {
			t.Fatalf("NoteOn(%v): frequency=%v incr=%v, want 0", note, o.Frequency(), o.PhaseIncrement())
		}

		for i := 0; i < 8; i++ {
			if v := o.Next(); v != 0 {
				t.Fatalf("NoteOn(%v): sample %d = %v, want 0", note, i, v)
			}
		}
	}
}

func TestSetterValidation(t *testing.T) {
	o, err := NewPulse(testSampleRate)
	if err != nil {
		t.Fatal(err)
	}

	if err := o.SetFrequency(math.NaN()); err == nil {
		t.Fatal("SetFrequency(NaN) expected error")
	}

	if err := o.SetPhase(math.Inf(1)); err == nil {
		t.Fatal("SetPhase(Inf) expected error")
	}

	if err := o.SetMod(math.NaN()); err == nil {
		t.Fatal("SetMod(NaN) expected error")
	}

	if err := o.SetSync(Sync(7)); err == nil {
		t.Fatal("SetSync(7) expected error")
	}

	_ = o.SetWidth(3)
	if o.Width() != 1 {
		t.Fatalf("width = %v, want clamp to 1", o.Width())
	}

	_ = o.SetPhase(1.25)
	if math.Abs(o.Phase()-0.25) > 1e-12 {
		t.Fatalf("phase = %v, want 0.25", o.Phase())
	}
}

func TestControlChange(t *testing.T) {
	o, err := NewTriangle(testSampleRate)
	if err != nil {
		t.Fatal(err)
	}

	o.ControlChange("osc.freq", 440)
	o.ControlChange("osc.width", float32(0.25))
	o.ControlChange("osc.mod", 5)
	o.ControlChange("osc.gain", 0.5)
	o.ControlChange("osc.sync", "fm")
	o.ControlChange("osc.freq", "not a number")
	o.ControlChange("unknown", 1.0)

	if o.Frequency() != 440 || o.Width() != 0.25 || o.Mod() != 5 || o.Gain() != 0.5 || o.Sync() != SyncFM {
		t.Fatalf("freq=%v width=%v mod=%v gain=%v sync=%v",
			o.Frequency(), o.Width(), o.Mod(), o.Gain(), o.Sync())
	}

	o.ControlChange("osc.sync", 1)
	if o.Sync() != SyncPhase {
		t.Fatalf("sync = %v, want phase", o.Sync())
	}

	o.ControlChange("osc.sync", SyncFreq)
	if o.Sync() != SyncFreq {
		t.Fatalf("sync = %v, want freq", o.Sync())
	}
}

func TestReset(t *testing.T) {
	o, err := NewSaw(testSampleRate)
	if err != nil {
		t.Fatal(err)
	}

	if o.Width() != 1 {
		t.Fatalf("saw width = %v, want 1", o.Width())
	}

	_ = o.SetFrequency(100)
	_ = o.SetMod(3)

	for range 17 {
		o.Next()
	}

	o.Reset()

	if o.Frequency() != 0 || o.Phase() != 0 || o.Mod() != 0 {
		t.Fatalf("Reset left freq=%v phase=%v mod=%v", o.Frequency(), o.Phase(), o.Mod())
	}
}

func TestParseShapeAndSync(t *testing.T) {
	if s, err := ParseShape("Square"); err != nil || s != ShapePulse {
		t.Fatalf("ParseShape(Square) = %v, %v", s, err)
	}

	if _, err := ParseShape("noise"); err == nil {
		t.Fatal("ParseShape(noise) expected error")
	}

	if s, err := ParseSync("FM"); err != nil || s != SyncFM {
		t.Fatalf("ParseSync(FM) = %v, %v", s, err)
	}

	if ShapeSine.String() != "sine" || SyncPhase.String() != "phase" {
		t.Fatal("unexpected String() output")
	}
}
