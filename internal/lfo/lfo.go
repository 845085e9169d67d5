package lfo

import "math"

// Waveform constants for the modulation oscillator.
const (
	WaveSine     = 0
	WaveTriangle = 1
	WaveSquare   = 2
	WaveSaw      = 3
	WaveRandom   = 4
)

// LFO is a low-frequency oscillator producing a control-rate modulation
// signal. One instance is shared per voice; the depth is typically driven by
// the mod wheel each block.
type LFO struct {
	depth    float64 // output scale (units depend on the target: semitones, Hz, gain)
	rateHz   float64
	waveform int
	phase    float64 // [0, 1)
	randVal  float64 // held value for sample-and-hold
}

// Set configures depth, rate, and waveform. Out-of-range waveforms fall back
// to sine.
func (l *LFO) Set(depth, rateHz float64, waveform int) {
	l.depth = depth
	l.rateHz = rateHz
	if waveform < WaveSine || waveform > WaveRandom {
		waveform = WaveSine
	}
	l.waveform = waveform
}

// Sample advances the LFO by one sample period and returns a value in
// [-depth, +depth]. Returns 0 when depth or rate is zero.
func (l *LFO) Sample(sampleRate float64) float64 {
	return l.SampleN(sampleRate, 1)
}

// SampleN advances the LFO by n sample periods in one step and returns the
// value at the current phase. Voices call this once per block so the LFO is
// evaluated at control rate while still tracking audio time.
func (l *LFO) SampleN(sampleRate float64, n int) float64 {
	if l.depth == 0 || l.rateHz == 0 || sampleRate == 0 || n <= 0 {
		return 0
	}

	var v float64
	switch l.waveform {
	case WaveTriangle:
		if l.phase < 0.5 {
			v = 4*l.phase - 1
		} else {
			v = 3 - 4*l.phase
		}
	case WaveSquare:
		if l.phase < 0.5 {
			v = 1
		} else {
			v = -1
		}
	case WaveSaw:
		v = 1 - 2*l.phase
	case WaveRandom:
		v = l.randVal
	default:
		v = math.Sin(2 * math.Pi * l.phase)
	}

	oldPhase := l.phase
	l.phase += l.rateHz * float64(n) / sampleRate
	for l.phase >= 1 {
		l.phase -= 1
	}
	if l.waveform == WaveRandom && l.phase < oldPhase {
		// Cheap deterministic hash of the phase for sample-and-hold.
		l.randVal = math.Sin(l.phase*12345.6789 + l.randVal*67890.1234)
		l.randVal -= math.Floor(l.randVal)
		l.randVal = l.randVal*2 - 1
	}

	return v * l.depth
}

// Active reports whether the LFO produces non-zero output.
func (l *LFO) Active() bool {
	return l.depth != 0 && l.rateHz != 0
}

// Reset zeros the phase and the held random value.
func (l *LFO) Reset() {
	l.phase = 0
	l.randVal = 0
}
