package render

import (
	"math"

	"github.com/sqrew/tunes-sub004/internal/dsp"
	"github.com/sqrew/tunes-sub004/internal/score"
	"github.com/sqrew/tunes-sub004/internal/voice"
)

// newVoiceForEvent picks the concrete Voice implementation for an
// Event by a type switch on Kind (and, for notes, on Synth.Kind) —
// the "match on a small tag" dispatch the design notes in spec §9
// prefer over virtual calls.
func newVoiceForEvent(e score.Event, sampleRate float64) voice.Voice {
	switch e.Kind {
	case score.NoteEvent:
		switch e.Synth.Kind {
		case score.FM:
			return voice.NewFMVoice(e, sampleRate)
		case score.Additive:
			return voice.NewAdditiveVoice(e, sampleRate)
		default: // Subtractive, Wavetable
			return voice.NewSubtractiveVoice(e, sampleRate)
		}
	case score.DrumEvent:
		return voice.NewDrumVoice(e, sampleRate)
	case score.SampleEvent:
		return voice.NewSampleVoice(e)
	case score.NoiseEvent:
		return voice.NewNoiseVoice(e, sampleRate)
	default:
		return nil // TempoChange/TimeSignatureChange carry no audio
	}
}

type activeVoice struct {
	v           voice.Voice
	startSample int64
}

// trackState is the running state of one score.Track across the
// whole render session: its schedule cursor, its currently sounding
// voices, and its own effect chain (created once at session start per
// spec §3 — "this state is created at render start and discarded at
// render end").
type trackState struct {
	track       *score.Track
	active      []activeVoice
	nextEvent   int
	effectChain *dsp.Chain

	scratch  []float32 // mono voice mix, reused every block
	preFXL   []float32 // panned, pre-effect-chain stereo sum (sidechain tap)
	preFXR   []float32
	bufL     []float32 // post-effect stereo output fed to bus summation
	bufR     []float32
}

func newTrackState(t *score.Track, sampleRate float64, blockSize int, sidechainFor func(score.Effect) dsp.SidechainReader) (*trackState, error) {
	chain, err := dsp.NewChain(t.Effects, sampleRate, sidechainFor)
	if err != nil {
		return nil, err
	}
	return &trackState{
		track:       t,
		effectChain: chain,
		scratch:     make([]float32, blockSize),
		preFXL:      make([]float32, blockSize),
		preFXR:      make([]float32, blockSize),
		bufL:        make([]float32, blockSize),
		bufR:        make([]float32, blockSize),
	}, nil
}

// spawnDue appends activeVoice entries for every event whose
// (swing-retimed) start sample falls before blockEndSample.
func (ts *trackState) spawnDue(blockEndSample int64, sampleRate float64) {
	track := ts.track
	for ts.nextEvent < len(track.Events) {
		e := track.Events[ts.nextEvent]
		retimedStart := e.Start
		if track.Swing != 0 {
			retimedStart = track.SwingGrid.Retime(e.Start, track.Swing)
		}
		startSample := int64(retimedStart * sampleRate)
		if startSample >= blockEndSample {
			break
		}
		if v := newVoiceForEvent(e, sampleRate); v != nil {
			ts.active = append(ts.active, activeVoice{v: v, startSample: startSample})
		}
		ts.nextEvent++
	}
}

// render mixes ts's active voices for the block [cursor, cursor+n),
// applies pan/volume and any Volume/Pan ModRoutes, and runs the
// track's own effect chain. The result lands in ts.bufL/ts.bufR, the
// post-effect signal bus summation reads via outL/outR.
func (ts *trackState) render(cursor int64, n int, sampleRate float64, sampleIdx *int) {
	for i := 0; i < n; i++ {
		ts.scratch[i] = 0
	}

	for vi := 0; vi < len(ts.active); {
		av := &ts.active[vi]
		voiceStartInBlock := av.startSample - cursor
		segStart := int64(0)
		if voiceStartInBlock > 0 {
			segStart = voiceStartInBlock
		}
		if segStart >= int64(n) {
			vi++
			continue
		}
		blockStartForVoice := cursor + segStart - av.startSample
		done := av.v.Render(ts.scratch[segStart:n], blockStartForVoice, sampleRate)
		if done {
			ts.active = append(ts.active[:vi], ts.active[vi+1:]...)
		} else {
			vi++
		}
	}

	track := ts.track
	for i := 0; i < n; i++ {
		*sampleIdx = i
		tSec := float64(cursor+int64(i)) / sampleRate

		volume := track.Volume
		pan := track.Pan
		for _, route := range track.Routes {
			v := sampleLFO(route.LFO, tSec)
			switch route.Target {
			case score.ModVolume:
				volume *= 1 + v
			case score.ModPan:
				pan += v
			}
		}
		if volume < 0 {
			volume = 0
		}
		pan = clampPan(pan)

		angle := (pan + 1) * math.Pi / 4
		gainL := float32(math.Cos(angle)) * float32(volume)
		gainR := float32(math.Sin(angle)) * float32(volume)

		l := ts.scratch[i] * gainL
		r := ts.scratch[i] * gainR
		ts.preFXL[i] = l
		ts.preFXR[i] = r

		if ts.effectChain != nil {
			l, r = ts.effectChain.Process(l, r, tSec)
		}
		ts.bufL[i] = l
		ts.bufR[i] = r
	}
}

func (ts *trackState) outL() []float32 { return ts.bufL }
func (ts *trackState) outR() []float32 { return ts.bufR }

func clampPan(p float64) float64 {
	if p < -1 {
		return -1
	}
	if p > 1 {
		return 1
	}
	return p
}
