package voice

import (
	"math"

	"github.com/sqrew/tunes-sub004/internal/envelope"
	"github.com/sqrew/tunes-sub004/internal/score"
	"github.com/sqrew/tunes-sub004/internal/wavetable"
)

func tableForWaveform(k score.WaveformKind) *wavetable.Table {
	switch k {
	case score.WaveSquare:
		return wavetable.Canonical(wavetable.Square)
	case score.WaveTriangle:
		return wavetable.Canonical(wavetable.Triangle)
	case score.WaveSawtooth:
		return wavetable.Canonical(wavetable.Sawtooth)
	default:
		return wavetable.Canonical(wavetable.Sine)
	}
}

// filterSweep is a single-pole lowpass whose cutoff is driven by an
// optional envelope, subtracting harmonic content from the raw
// oscillator output per spec §4.3's "Subtractive" recipe.
type filterSweep struct {
	state float32
}

func (f *filterSweep) step(in, cutoffNorm float32) float32 {
	f.state += cutoffNorm * (in - f.state)
	return f.state
}

// subtractiveVoice sums one oscillator per chord pitch through a
// shared envelope, then an optional filter envelope sweep.
type subtractiveVoice struct {
	oscillators []wavetable.Oscillator
	freqs       []float32
	env         envelope.Params
	duration    float64
	velocity    float32
	filterEnv   *envelope.Params
	filter      filterSweep
}

func NewSubtractiveVoice(e score.Event, sampleRate float64) *subtractiveVoice {
	table := tableForWaveform(e.Waveform)
	oscs := make([]wavetable.Oscillator, len(e.Pitches))
	freqs := make([]float32, len(e.Pitches))
	bend := math.Pow(2, e.PitchBendSemitones/12)
	for i, hz := range e.Pitches {
		oscs[i] = wavetable.NewOscillator(table)
		freqs[i] = float32(hz * bend)
	}
	return &subtractiveVoice{
		oscillators: oscs,
		freqs:       freqs,
		env:         e.Envelope,
		duration:    e.Duration,
		velocity:    float32(e.Velocity),
		filterEnv:   e.Synth.FilterEnv,
	}
}

func (v *subtractiveVoice) Render(out []float32, blockStartSample int64, sampleRate float64) bool {
	if len(v.oscillators) == 0 {
		return true
	}
	var done bool
	srF := float32(sampleRate)
	for i := range out {
		tSec := (float64(blockStartSample) + float64(i)) / sampleRate
		level := v.env.Level(tSec, v.duration)

		var mix float32
		for o := range v.oscillators {
			mix += v.oscillators[o].Advance(v.freqs[o], srF)
		}
		mix /= float32(len(v.oscillators))
		mix *= float32(level) * v.velocity

		if v.filterEnv != nil {
			cutoffLevel := v.filterEnv.Level(tSec, v.duration)
			cutoffHz := 200 + cutoffLevel*7800
			cutoffNorm := float32(clampF(float64(cutoffHz)/sampleRate, 0.001, 0.49))
			mix = v.filter.step(mix, cutoffNorm)
		}

		out[i] += mix
		if v.env.Finished(tSec, v.duration) {
			done = true
		}
	}
	return done
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
