package voice

import (
	"math"

	"github.com/sqrew/tunes-sub004/internal/envelope"
	"github.com/sqrew/tunes-sub004/internal/score"
	"github.com/sqrew/tunes-sub004/internal/wavetable"
)

// fmVoice is a two-operator FM pair per chord pitch: a sine modulator
// phase-modulates a sine carrier, scaled by ModulationIndex and
// (optionally) an envelope driving the index over time, per spec
// §4.3's FM recipe.
type fmVoice struct {
	carriers   []wavetable.Oscillator
	modulators []wavetable.Oscillator
	carrierHz  []float32
	modHz      []float32

	modIndex float64
	modEnv   *envelope.Params
	env      envelope.Params
	duration float64
	velocity float32
}

func NewFMVoice(e score.Event, sampleRate float64) *fmVoice {
	sine := wavetable.Canonical(wavetable.Sine)
	n := len(e.Pitches)
	bend := math.Pow(2, e.PitchBendSemitones/12)

	v := &fmVoice{
		carriers:   make([]wavetable.Oscillator, n),
		modulators: make([]wavetable.Oscillator, n),
		carrierHz:  make([]float32, n),
		modHz:      make([]float32, n),
		modIndex:   e.Synth.ModulationIndex,
		modEnv:     e.Synth.ModEnv,
		env:        e.Envelope,
		duration:   e.Duration,
		velocity:   float32(e.Velocity),
	}
	for i, hz := range e.Pitches {
		fundamental := hz * bend
		v.carriers[i] = wavetable.NewOscillator(sine)
		v.modulators[i] = wavetable.NewOscillator(sine)
		v.carrierHz[i] = float32(fundamental * e.Synth.CarrierRatio)
		v.modHz[i] = float32(fundamental * e.Synth.ModulatorRatio)
	}
	return v
}

func (v *fmVoice) Render(out []float32, blockStartSample int64, sampleRate float64) bool {
	if len(v.carriers) == 0 {
		return true
	}
	var done bool
	srF := float32(sampleRate)
	for i := range out {
		tSec := (float64(blockStartSample) + float64(i)) / sampleRate
		level := v.env.Level(tSec, v.duration)

		index := v.modIndex
		if v.modEnv != nil {
			index *= float64(v.modEnv.Level(tSec, v.duration))
		}

		var mix float32
		for o := range v.carriers {
			modSample := v.modulators[o].Advance(v.modHz[o], srF)
			v.carriers[o].Phase += float32(index) * modSample
			mix += v.carriers[o].Advance(v.carrierHz[o], srF)
		}
		mix /= float32(len(v.carriers))
		mix *= float32(level) * v.velocity

		out[i] += mix
		if v.env.Finished(tSec, v.duration) {
			done = true
		}
	}
	return done
}
