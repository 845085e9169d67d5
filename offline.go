package minimoog

import (
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// renderBlockFrames is the block size used for offline rendering.
const renderBlockFrames = 512

// RenderSamples renders the given number of frames from a source in
// fixed-size blocks, matching the block cadence a live audio callback would
// use.
func RenderSamples(source Source, frames int) []float32 {
	if frames <= 0 {
		return nil
	}
	out := make([]float32, frames)
	for start := 0; start < frames; start += renderBlockFrames {
		end := start + renderBlockFrames
		if end > frames {
			end = frames
		}
		source.ProcessBlock(out[start:end])
	}
	return out
}

// WriteWAV writes mono samples as a 16-bit PCM WAV file. Samples outside
// [-1,1] are hard-clipped.
func WriteWAV(w io.WriteSeeker, samples []float32, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		buf.Data[i] = int(s * 32767)
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}
