package osc

import (
	"math"
	"testing"
)

func TestSineFrequencyIsExact(t *testing.T) {
	sr := 48000.0
	o := New(sr)
	o.SetWaveform(Sine)
	o.SetFrequency(480) // exactly 100 samples per cycle

	n := 100
	first := make([]float64, n)
	for i := range first {
		first[i] = o.Tick()
	}
	// The second cycle must repeat the first exactly.
	for i := 0; i < n; i++ {
		v := o.Tick()
		if math.Abs(v-first[i]) > 1e-9 {
			t.Fatalf("cycle mismatch at sample %d: got %f, want %f", i, v, first[i])
		}
	}
}

func TestOutputBoundedAllWaveforms(t *testing.T) {
	sr := 48000.0
	for _, w := range []Waveform{Sine, Triangle, Saw, Square} {
		o := New(sr)
		o.SetWaveform(w)
		o.SetFrequency(2000)
		for i := 0; i < 48000; i++ {
			v := o.Tick()
			// PolyBLEP correction can overshoot the raw edge slightly.
			if math.Abs(v) > 1.2 {
				t.Fatalf("waveform %d sample %d out of range: %f", w, i, v)
			}
			if math.IsNaN(v) {
				t.Fatalf("waveform %d produced NaN at sample %d", w, i)
			}
		}
	}
}

func TestWaveformSwitchKeepsPhase(t *testing.T) {
	o := New(48000)
	o.SetWaveform(Saw)
	o.SetFrequency(440)
	for i := 0; i < 1000; i++ {
		o.Tick()
	}
	phase := o.phase
	o.SetWaveform(Square)
	if o.phase != phase {
		t.Errorf("waveform switch moved phase: got %f, want %f", o.phase, phase)
	}
}

func TestGlideConvergesExactly(t *testing.T) {
	sr := 48000.0
	o := New(sr)
	o.SetFrequency(440)
	frames := 256
	o.GlideTo(880, frames)
	for i := 0; i < frames; i++ {
		o.Tick()
	}
	want := 880 / sr
	if o.PhaseIncrement() != want {
		t.Errorf("after glide, increment = %g, want %g", o.PhaseIncrement(), want)
	}
	if o.Frequency() != 880 {
		t.Errorf("after glide, frequency = %f, want 880", o.Frequency())
	}
}

func TestGlideIsMonotonic(t *testing.T) {
	o := New(48000)
	o.SetFrequency(220)
	o.GlideTo(880, 100)
	prev := o.PhaseIncrement()
	for i := 0; i < 100; i++ {
		o.Tick()
		inc := o.PhaseIncrement()
		if inc < prev-1e-12 {
			t.Fatalf("increment decreased during upward glide at tick %d", i)
		}
		prev = inc
	}
}

func TestPitchDefaultsAreExact(t *testing.T) {
	if got := Pitch(440, 0, 0, 0); got != 440 {
		t.Errorf("Pitch at defaults = %g, want exactly 440", got)
	}
}

func TestPitchOctaveAndDetune(t *testing.T) {
	cases := []struct {
		octave int
		cents  float64
		wheel  float64
		want   float64
	}{
		{1, 0, 0, 880},
		{-1, 0, 0, 220},
		{0, 1200, 0, 880},
		{0, 0, 1, 440 * math.Exp2(2.0/12)},
		{0, 0, -1, 440 * math.Exp2(-2.0/12)},
	}
	for _, c := range cases {
		got := Pitch(440, c.octave, c.cents, c.wheel)
		if math.Abs(got-c.want) > 1e-6 {
			t.Errorf("Pitch(440, %d, %f, %f) = %f, want %f", c.octave, c.cents, c.wheel, got, c.want)
		}
	}
}

func TestPitchClampsOctaveAndWheel(t *testing.T) {
	if got, want := Pitch(440, 9, 0, 0), Pitch(440, MaxOctave, 0, 0); got != want {
		t.Errorf("octave clamp: got %f, want %f", got, want)
	}
	if got, want := Pitch(440, 0, 0, 5), Pitch(440, 0, 0, 1); got != want {
		t.Errorf("wheel clamp: got %f, want %f", got, want)
	}
}

func TestSawMeanNearZero(t *testing.T) {
	o := New(48000)
	o.SetWaveform(Saw)
	o.SetFrequency(100)
	var sum float64
	n := 48000
	for i := 0; i < n; i++ {
		sum += o.Tick()
	}
	if mean := sum / float64(n); math.Abs(mean) > 0.01 {
		t.Errorf("saw DC offset too large: %f", mean)
	}
}
