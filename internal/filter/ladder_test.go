package filter

import (
	"math"
	"testing"
)

// rms of the filter response to a sine, skipping the settling transient
func toneRMS(f *Ladder, freq, amp, sr float64, n int) float64 {
	skip := n / 2
	var sum float64
	for i := 0; i < n; i++ {
		in := amp * math.Sin(2*math.Pi*freq*float64(i)/sr)
		out := f.Tick(in)
		if i >= skip {
			sum += out * out
		}
	}
	return math.Sqrt(sum / float64(n-skip))
}

func TestPassbandNearUnity(t *testing.T) {
	sr := 48000.0
	f := New(sr)
	f.SetCutoff(4000)
	f.SetResonance(0)
	got := toneRMS(f, 100, 0.1, sr, 48000)
	want := 0.1 / math.Sqrt2
	if math.Abs(got-want)/want > 0.1 {
		t.Errorf("passband rms = %f, want ~%f", got, want)
	}
}

func TestStopbandSlopeIsFourPole(t *testing.T) {
	sr := 48000.0

	rms := func(freq float64) float64 {
		f := New(sr)
		f.SetCutoff(200)
		f.SetResonance(0)
		return toneRMS(f, freq, 0.1, sr, 96000)
	}

	low := rms(1600)
	high := rms(3200)
	ratio := low / high
	// one octave deeper into the stopband should cost close to 24 dB
	if ratio < 8 || ratio > 40 {
		t.Errorf("octave attenuation ratio = %f, want ~16", ratio)
	}
}

func TestResonancePeaksNearCutoff(t *testing.T) {
	sr := 48000.0
	flat := New(sr)
	flat.SetCutoff(1000)
	flat.SetResonance(0)
	peaked := New(sr)
	peaked.SetCutoff(1000)
	peaked.SetResonance(0.9)

	a := toneRMS(flat, 1000, 0.05, sr, 48000)
	b := toneRMS(peaked, 1000, 0.05, sr, 48000)
	if b <= a {
		t.Errorf("resonance did not boost cutoff region: flat %f, resonant %f", a, b)
	}
}

func TestCutoffClamped(t *testing.T) {
	f := New(48000)
	f.SetCutoff(1)
	if f.Cutoff() != MinCutoff {
		t.Errorf("low cutoff clamped to %f, want %f", f.Cutoff(), float64(MinCutoff))
	}
	f.SetCutoff(1e9)
	if f.Cutoff() != 48000*maxCutoffRatio {
		t.Errorf("high cutoff clamped to %f, want %f", f.Cutoff(), 48000*maxCutoffRatio)
	}
}

func TestResonanceClamped(t *testing.T) {
	f := New(48000)
	f.SetResonance(2)
	if f.Resonance() != MaxResonance {
		t.Errorf("resonance clamped to %f, want %f", f.Resonance(), float64(MaxResonance))
	}
	f.SetResonance(-1)
	if f.Resonance() != 0 {
		t.Errorf("negative resonance clamped to %f, want 0", f.Resonance())
	}
}

func TestStaysFiniteUnderRapidAutomation(t *testing.T) {
	sr := 48000.0
	f := New(sr)
	f.SetResonance(MaxResonance)
	for i := 0; i < 48000; i++ {
		// sweep cutoff hard every sample while driving near full scale
		f.SetCutoff(20 + 20000*math.Abs(math.Sin(float64(i)*0.1)))
		out := f.Tick(math.Sin(float64(i) * 0.3))
		if math.IsNaN(out) || math.IsInf(out, 0) {
			t.Fatalf("non-finite output at sample %d", i)
		}
	}
	if !f.Stable() {
		t.Error("state non-finite after automation sweep")
	}
}

func TestNaNInputDetectedAndRecovered(t *testing.T) {
	f := New(48000)
	f.SetCutoff(2000)
	f.Tick(math.NaN())
	if f.Stable() {
		t.Fatal("Stable() = true after NaN input")
	}
	f.Reset()
	if !f.Stable() {
		t.Fatal("Stable() = false after Reset")
	}
	for i := 0; i < 100; i++ {
		out := f.Tick(0.5)
		if math.IsNaN(out) {
			t.Fatalf("output still NaN after reset at sample %d", i)
		}
	}
}

func TestResetKeepsCoefficients(t *testing.T) {
	f := New(48000)
	f.SetCutoff(3000)
	f.SetResonance(0.5)
	f.Reset()
	if f.Cutoff() != 3000 || f.Resonance() != 0.5 {
		t.Errorf("Reset changed coefficients: cutoff %f resonance %f", f.Cutoff(), f.Resonance())
	}
}

func TestFlushDenormals(t *testing.T) {
	f := New(48000)
	f.stage[0] = 1e-30
	f.tanhStage[1] = -1e-30
	f.FlushDenormals()
	if f.stage[0] != 0 || f.tanhStage[1] != 0 {
		t.Error("tiny state values not flushed to zero")
	}
}
