package filter

import "math"

const (
	// MinCutoff is the lowest accepted cutoff frequency in Hz.
	MinCutoff = 20.0

	// MaxResonance keeps the feedback gain below the self-oscillation
	// threshold (k = 4 at resonance 1).
	MaxResonance = 0.999

	// maxCutoffRatio caps the cutoff relative to the sample rate.
	maxCutoffRatio = 0.45

	denormalFloor = 1e-20
)

// Ladder is a 4-pole resonant low-pass filter in the classic transistor
// ladder topology: four cascaded one-pole stages with tanh saturation and a
// global resonance feedback path. At resonance 0 it reduces to a plain
// 24 dB/octave low-pass. The tanh stages keep the state bounded across the
// whole parameter range; a non-finite state (which can only arise from
// non-finite input) is detected by Stable and cleared by Reset.
type Ladder struct {
	sampleRate float64
	cutoff     float64
	resonance  float64
	g          float64 // per-stage coefficient, 1 - exp(-2π·fc/fs)
	k          float64 // feedback gain, 4·resonance

	stage     [4]float64
	tanhStage [3]float64
}

func New(sampleRate float64) *Ladder {
	f := &Ladder{sampleRate: sampleRate}
	f.SetCutoff(1000)
	f.SetResonance(0)
	return f
}

// SetCutoff sets the cutoff frequency, clamped to [MinCutoff, 0.45·fs].
func (f *Ladder) SetCutoff(hz float64) {
	max := f.sampleRate * maxCutoffRatio
	if hz < MinCutoff {
		hz = MinCutoff
	}
	if hz > max {
		hz = max
	}
	if hz == f.cutoff {
		return
	}
	f.cutoff = hz
	f.g = 1 - math.Exp(-2*math.Pi*hz/f.sampleRate)
}

func (f *Ladder) Cutoff() float64 {
	return f.cutoff
}

// SetResonance sets the resonance as a fraction of the self-oscillation
// threshold, clamped to [0, MaxResonance].
func (f *Ladder) SetResonance(r float64) {
	if r < 0 {
		r = 0
	}
	if r > MaxResonance {
		r = MaxResonance
	}
	f.resonance = r
	f.k = 4 * r
}

func (f *Ladder) Resonance() float64 {
	return f.resonance
}

// Tick filters one sample.
func (f *Ladder) Tick(in float64) float64 {
	x := in - f.k*f.stage[3]

	f.stage[0] += f.g * (math.Tanh(x) - f.tanhStage[0])
	f.tanhStage[0] = math.Tanh(f.stage[0])

	f.stage[1] += f.g * (f.tanhStage[0] - f.tanhStage[1])
	f.tanhStage[1] = math.Tanh(f.stage[1])

	f.stage[2] += f.g * (f.tanhStage[1] - f.tanhStage[2])
	f.tanhStage[2] = math.Tanh(f.stage[2])

	f.stage[3] += f.g * (f.tanhStage[2] - math.Tanh(f.stage[3]))

	return f.stage[3]
}

// Stable reports whether all internal state is finite.
func (f *Ladder) Stable() bool {
	for _, s := range f.stage {
		if !isFinite(s) {
			return false
		}
	}
	for _, s := range f.tanhStage {
		if !isFinite(s) {
			return false
		}
	}
	return true
}

// Reset clears the delay state. Cutoff and resonance are kept.
func (f *Ladder) Reset() {
	f.stage = [4]float64{}
	f.tanhStage = [3]float64{}
}

// FlushDenormals zeroes state values too small to matter, so decaying tails
// do not drag per-sample cost up on denormal-penalized hardware. Call at
// block boundaries.
func (f *Ladder) FlushDenormals() {
	for i := range f.stage {
		if math.Abs(f.stage[i]) < denormalFloor {
			f.stage[i] = 0
		}
	}
	for i := range f.tanhStage {
		if math.Abs(f.tanhStage[i]) < denormalFloor {
			f.tanhStage[i] = 0
		}
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
