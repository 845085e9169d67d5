package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/rakyll/portmidi"

	"github.com/cbegin/minimoog-go"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		voices     = flag.Int("voices", 0, "polyphony (0 = default)")
		backend    = flag.String("backend", "ebiten", "playback backend: ebiten|beep")
		wavPath    = flag.String("wav", "", "render the demo phrase to a WAV file instead of playing")
		duration   = flag.Float64("dur", 6, "render/play duration in seconds")
		midiDevice = flag.Int("midi", -1, "MIDI input device id (-1 = play demo phrase)")
		listMIDI   = flag.Bool("list-midi", false, "list MIDI input devices and exit")
		cutoff     = flag.Float64("cutoff", 1200, "filter cutoff in Hz")
		resonance  = flag.Float64("resonance", 0.3, "filter resonance 0..0.999")
		contour    = flag.Float64("contour", 0.5, "filter envelope contour amount 0..1")
	)
	flag.Parse()

	if *listMIDI {
		listMIDIDevices()
		return
	}

	synth, err := minimoog.NewPoly(*sampleRate, *voices)
	if err != nil {
		log.Fatal(err)
	}
	must(synth.SetParameter(minimoog.FilterCutoff, *cutoff))
	must(synth.SetParameter(minimoog.FilterResonance, *resonance))
	must(synth.SetParameter(minimoog.ContourAmount, *contour))

	if *wavPath != "" {
		if err := renderWAV(synth, *wavPath, *sampleRate, *duration); err != nil {
			log.Fatal(err)
		}
		fmt.Println("wrote", *wavPath)
		return
	}

	stop, err := startPlayback(*backend, *sampleRate, synth)
	if err != nil {
		log.Fatal(err)
	}
	defer stop()

	if *midiDevice >= 0 {
		if err := runMIDI(portmidi.DeviceID(*midiDevice), synth); err != nil {
			log.Fatal(err)
		}
		return
	}
	playDemoPhrase(synth, *duration)
}

func startPlayback(backend string, sampleRate int, source minimoog.Source) (func(), error) {
	switch backend {
	case "ebiten":
		pl, err := minimoog.NewPlayer(sampleRate, source)
		if err != nil {
			return nil, err
		}
		if err := pl.Play(); err != nil {
			return nil, err
		}
		return func() { _ = pl.Stop() }, nil
	case "beep":
		sr := beep.SampleRate(sampleRate)
		if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
			return nil, err
		}
		speaker.Play(minimoog.Streamer(source))
		return speaker.Close, nil
	default:
		return nil, fmt.Errorf("invalid -backend %q (expected ebiten|beep)", backend)
	}
}

// playDemoPhrase holds an A minor arpeggio for the requested duration.
func playDemoPhrase(synth *minimoog.Poly, seconds float64) {
	notes := []int{57, 60, 64, 69, 64, 60} // A3 C4 E4 A4 E4 C4
	step := 350 * time.Millisecond
	deadline := time.Now().Add(time.Duration(seconds * float64(time.Second)))
	for time.Now().Before(deadline) {
		for _, n := range notes {
			f := midiToFreq(n)
			synth.NoteOn(f)
			time.Sleep(step * 3 / 4)
			synth.NoteOff(f)
			time.Sleep(step / 4)
			if !time.Now().Before(deadline) {
				break
			}
		}
	}
	synth.AllNotesOff()
	// let release tails ring out
	time.Sleep(1200 * time.Millisecond)
}

func renderWAV(synth *minimoog.Poly, path string, sampleRate int, seconds float64) error {
	frames := int(seconds * float64(sampleRate))
	notes := []int{57, 60, 64, 69}
	noteFrames := frames / (len(notes) + 1)
	var samples []float32
	for _, n := range notes {
		f := midiToFreq(n)
		synth.NoteOn(f)
		samples = append(samples, minimoog.RenderSamples(synth, noteFrames*3/4)...)
		synth.NoteOff(f)
		samples = append(samples, minimoog.RenderSamples(synth, noteFrames/4)...)
	}
	samples = append(samples, minimoog.RenderSamples(synth, frames-len(samples))...)

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := minimoog.WriteWAV(out, samples, sampleRate); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func listMIDIDevices() {
	if err := portmidi.Initialize(); err != nil {
		log.Fatal(err)
	}
	defer portmidi.Terminate()
	for i := 0; i < portmidi.CountDevices(); i++ {
		id := portmidi.DeviceID(i)
		info := portmidi.Info(id)
		if info == nil || !info.IsInputAvailable {
			continue
		}
		fmt.Printf("%d: %s (%s)\n", i, info.Name, info.Interface)
	}
}

// runMIDI drives the synth from a MIDI input stream until the stream fails.
func runMIDI(id portmidi.DeviceID, synth *minimoog.Poly) error {
	if err := portmidi.Initialize(); err != nil {
		return err
	}
	defer portmidi.Terminate()
	in, err := portmidi.NewInputStream(id, 1024)
	if err != nil {
		return err
	}
	defer in.Close()

	fmt.Println("listening for MIDI events (ctrl-c to quit)")
	for {
		events, err := in.Read(1024)
		if err != nil {
			return err
		}
		for _, ev := range events {
			note := int(ev.Data1)
			switch ev.Status & 0xf0 {
			case 0x90:
				if ev.Data2 == 0 {
					synth.NoteOff(midiToFreq(note))
				} else {
					synth.NoteOn(midiToFreq(note))
				}
			case 0x80:
				synth.NoteOff(midiToFreq(note))
			case 0xe0:
				// 14-bit pitch bend, 8192 is center
				bend := (float64(int(ev.Data2)<<7|int(ev.Data1)) - 8192) / 8192
				must(synth.SetParameter(minimoog.PitchWheel, bend))
			case 0xb0:
				if ev.Data1 == 1 {
					must(synth.SetParameter(minimoog.ModWheel, float64(ev.Data2)/127))
				}
			}
		}
		time.Sleep(time.Millisecond)
	}
}

func midiToFreq(note int) float64 {
	return 440 * math.Exp2(float64(note-69)/12)
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
