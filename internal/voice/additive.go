package voice

import (
	"math"

	"github.com/sqrew/tunes-sub004/internal/envelope"
	"github.com/sqrew/tunes-sub004/internal/score"
	"github.com/sqrew/tunes-sub004/internal/wavetable"
)

// additiveVoice sums score.Partial overtones per chord pitch, each a
// sine at Ratio*fundamental with its own Amplitude and starting
// Phase, per spec §4.3's additive recipe.
type additiveVoice struct {
	partialOscs []wavetable.Oscillator
	partialHz   []float32
	partialAmp  []float32

	env      envelope.Params
	duration float64
	velocity float32
	nVoices  int
}

func NewAdditiveVoice(e score.Event, sampleRate float64) *additiveVoice {
	sine := wavetable.Canonical(wavetable.Sine)
	bend := math.Pow(2, e.PitchBendSemitones/12)
	partials := e.Synth.Partials
	if len(partials) == 0 {
		partials = []score.Partial{{Ratio: 1, Amplitude: 1}}
	}

	v := &additiveVoice{nVoices: len(e.Pitches), env: e.Envelope, duration: e.Duration, velocity: float32(e.Velocity)}
	for _, hz := range e.Pitches {
		fundamental := hz * bend
		for _, p := range partials {
			osc := wavetable.NewOscillator(sine)
			osc.Phase = float32(p.Phase)
			v.partialOscs = append(v.partialOscs, osc)
			v.partialHz = append(v.partialHz, float32(fundamental*p.Ratio))
			v.partialAmp = append(v.partialAmp, float32(p.Amplitude))
		}
	}
	return v
}

func (v *additiveVoice) Render(out []float32, blockStartSample int64, sampleRate float64) bool {
	if len(v.partialOscs) == 0 || v.nVoices == 0 {
		return true
	}
	var done bool
	srF := float32(sampleRate)
	for i := range out {
		tSec := (float64(blockStartSample) + float64(i)) / sampleRate
		level := v.env.Level(tSec, v.duration)

		var mix float32
		for p := range v.partialOscs {
			mix += v.partialOscs[p].Advance(v.partialHz[p], srF) * v.partialAmp[p]
		}
		mix /= float32(v.nVoices)
		mix *= float32(level) * v.velocity

		out[i] += mix
		if v.env.Finished(tSec, v.duration) {
			done = true
		}
	}
	return done
}
