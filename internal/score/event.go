package score

import "github.com/sqrew/tunes-sub004/internal/envelope"

// EventKind tags the Event union (spec §3). Matching on Kind drives
// voice spawning in the block loop (§4.5); this is the "small tag"
// dispatch the design notes prefer over per-event virtual calls.
type EventKind uint8

const (
	NoteEvent EventKind = iota
	DrumEvent
	SampleEvent
	NoiseEvent
	TempoChangeEvent
	TimeSignatureChangeEvent
)

// Event is the tagged union of scheduled musical occurrences. Only
// the fields relevant to Kind are populated; see spec §3 for the
// per-variant field list this mirrors field-for-field.
type Event struct {
	Kind     EventKind
	Start    float64 // seconds, >= 0
	Duration float64 // seconds, > 0 (Note, Noise); ignored otherwise

	// Note
	Pitches            []float64 // Hz; >1 entry sums as a chord voice
	Waveform           WaveformKind
	Envelope           envelope.Params
	Synth              SynthParams
	PitchBendSemitones float64
	Velocity           float64 // [0,1]

	// Drum
	Drum DrumKind

	// Sample
	Sample       *Sample
	PlaybackRate float64
	Gain         float64

	// Noise
	Noise NoiseKind

	// TempoChange / TimeSignatureChange
	BPM                   float64
	TimeSignatureNum      int
	TimeSignatureDen      int
}

// WaveformKind selects a Note's default oscillator waveform. A Note's
// synth params may override this for FM/Additive/Wavetable kinds; it
// is the wavetable read for Subtractive voices.
type WaveformKind uint8

const (
	WaveSine WaveformKind = iota
	WaveSquare
	WaveTriangle
	WaveSawtooth
)

// ActivityEnd returns the last sample time at which the event can
// still be producing audio: start + its own maximal duration. The
// render package does not call it; its end-of-score check looks at
// live voices and pending events instead.
func (e Event) ActivityEnd() float64 {
	switch e.Kind {
	case NoteEvent:
		return e.Start + e.Envelope.Duration(e.Duration)
	case DrumEvent:
		return e.Start + e.Drum.NaturalDuration()
	case SampleEvent:
		if e.Sample == nil {
			return e.Start
		}
		return e.Start + e.Sample.DurationSeconds()/maxF(e.PlaybackRate, 1e-6)
	case NoiseEvent:
		return e.Start + e.Duration
	default:
		return e.Start
	}
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
