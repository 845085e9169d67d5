package audio

// Streamer adapts a mono SampleSource to the beep streaming interface, for
// hosts that already run a beep speaker mixer.
type Streamer struct {
	source SampleSource
	buf    []float32
}

func NewStreamer(source SampleSource) *Streamer {
	return &Streamer{source: source}
}

// Stream fills samples with the source output duplicated to both channels.
// It never ends on its own; a finishing source drains it.
func (s *Streamer) Stream(samples [][2]float64) (int, bool) {
	n := len(samples)
	if n == 0 {
		return 0, true
	}
	if fs, ok := s.source.(FinishingSource); ok && fs.Finished() {
		return 0, false
	}
	if cap(s.buf) < n {
		s.buf = make([]float32, n)
	}
	s.buf = s.buf[:n]
	s.source.ProcessBlock(s.buf)
	for i, v := range s.buf {
		f := float64(v)
		samples[i][0] = f
		samples[i][1] = f
	}
	return n, true
}

func (s *Streamer) Err() error { return nil }
