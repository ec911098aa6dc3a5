package voice

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqrew/tunes-sub004/internal/envelope"
	"github.com/sqrew/tunes-sub004/internal/score"
)

const testSR = 48000.0

func renderAll(t *testing.T, v Voice, totalSamples int) []float32 {
	t.Helper()
	out := make([]float32, totalSamples)
	const blockSize = 256
	var done bool
	for start := 0; start < totalSamples && !done; start += blockSize {
		end := start + blockSize
		if end > totalSamples {
			end = totalSamples
		}
		done = v.Render(out[start:end], int64(start), testSR)
	}
	return out
}

func TestSubtractiveVoiceProducesSignalThenFinishes(t *testing.T) {
	e := score.Event{
		Kind:     score.NoteEvent,
		Pitches:  []float64{440},
		Waveform: score.WaveSine,
		Envelope: envelope.Params{Attack: 0.01, Decay: 0.01, Sustain: 0.8, Release: 0.05},
		Duration: 0.1,
		Velocity: 1,
		Synth:    score.DefaultSubtractive(),
	}
	v := NewSubtractiveVoice(e, testSR)
	totalSamples := int(e.Envelope.Duration(e.Duration) * testSR * 1.2)
	out := renderAll(t, v, totalSamples)

	var peak float32
	for _, s := range out {
		if math.Abs(float64(s)) > math.Abs(float64(peak)) {
			peak = s
		}
	}
	assert.Greater(t, math.Abs(float64(peak)), 0.01)

	tail := out[len(out)-10:]
	for _, s := range tail {
		assert.InDelta(t, 0, s, 0.01)
	}
}

func TestFMVoiceRenders(t *testing.T) {
	e := score.Event{
		Kind:     score.NoteEvent,
		Pitches:  []float64{220},
		Envelope: envelope.Params{Attack: 0.01, Decay: 0.01, Sustain: 1, Release: 0.01},
		Duration: 0.05,
		Velocity: 1,
		Synth: score.SynthParams{
			Kind: score.FM, CarrierRatio: 1, ModulatorRatio: 2, ModulationIndex: 3,
		},
	}
	v := NewFMVoice(e, testSR)
	out := renderAll(t, v, int(testSR*0.1))
	var nonzero bool
	for _, s := range out {
		if s != 0 {
			nonzero = true
			break
		}
	}
	assert.True(t, nonzero)
}

func TestAdditiveVoiceSumsPartials(t *testing.T) {
	e := score.Event{
		Kind:     score.NoteEvent,
		Pitches:  []float64{100},
		Envelope: envelope.Params{Attack: 0.001, Decay: 0.001, Sustain: 1, Release: 0.001},
		Duration: 0.05,
		Velocity: 1,
		Synth: score.SynthParams{
			Kind: score.Additive,
			Partials: []score.Partial{
				{Ratio: 1, Amplitude: 1},
				{Ratio: 2, Amplitude: 0.5},
				{Ratio: 3, Amplitude: 0.25},
			},
		},
	}
	v := NewAdditiveVoice(e, testSR)
	out := renderAll(t, v, int(testSR*0.1))
	var peak float32
	for _, s := range out {
		if s > peak {
			peak = s
		}
	}
	assert.Greater(t, peak, float32(0))
}

func TestNoiseVoiceBoundedByDuration(t *testing.T) {
	e := score.Event{Kind: score.NoiseEvent, Noise: score.White, Duration: 0.01, Velocity: 1}
	v := NewNoiseVoice(e, testSR)
	out := renderAll(t, v, int(testSR*0.05))
	for i := int(0.02 * testSR); i < len(out); i++ {
		assert.Equal(t, float32(0), out[i])
	}
}

func TestNoiseVoiceDeterministic(t *testing.T) {
	e := score.Event{Kind: score.NoiseEvent, Noise: score.Pink, Duration: 0.02, Velocity: 1}
	v1 := NewNoiseVoice(e, testSR)
	v2 := NewNoiseVoice(e, testSR)
	out1 := renderAll(t, v1, int(testSR*0.02))
	out2 := renderAll(t, v2, int(testSR*0.02))
	assert.Equal(t, out1, out2)
}

func TestSampleVoicePlaysBackAndDownmixesStereo(t *testing.T) {
	frames := []float32{1, -1, 1, -1, 1, -1, 1, -1}
	sample := &score.Sample{Channels: 2, SampleRate: int(testSR), Frames: frames}
	e := score.Event{Kind: score.SampleEvent, Sample: sample, PlaybackRate: 1, Gain: 1}
	v := NewSampleVoice(e)
	out := renderAll(t, v, 10)
	assert.InDelta(t, 0, out[0], 1e-5)
}

func TestDrumVoiceKickFinishesWithinNaturalDuration(t *testing.T) {
	e := score.Event{Kind: score.DrumEvent, Drum: score.Kick808, Velocity: 1}
	v := NewDrumVoice(e, testSR)
	totalSamples := int(score.Kick808.NaturalDuration()*testSR) + 1000
	out := renderAll(t, v, totalSamples)
	tail := out[len(out)-50:]
	for _, s := range tail {
		assert.Equal(t, float32(0), s)
	}
}

func TestAllDrumKindsRenderWithoutPanic(t *testing.T) {
	kinds := []score.DrumKind{
		score.Kick808, score.Kick909, score.SubKick, score.BassDrop, score.Boom,
		score.Snare808, score.Snare909, score.Rimshot, score.ClosedHat808, score.OpenHat808,
		score.ClosedHat909, score.OpenHat909, score.Clap, score.Cowbell, score.Clave,
		score.TomLow, score.TomMid, score.TomHigh, score.Crash, score.Ride, score.Shaker,
		score.Tambourine, score.Conga, score.LaserZap, score.WhiteNoiseHit, score.Sidestick,
	}
	for _, k := range kinds {
		e := score.Event{Kind: score.DrumEvent, Drum: k, Velocity: 1}
		v := NewDrumVoice(e, testSR)
		require.NotNil(t, v)
		_ = renderAll(t, v, int(k.NaturalDuration()*testSR)+10)
	}
}
