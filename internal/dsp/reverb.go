package dsp

import "github.com/sqrew/tunes-sub004/internal/score"

// combFilter is one feedback comb used by the Freeverb-style reverb.
type combFilter struct {
	buf    []float32
	pos    int
	feedback, damp, store float32
}

func (c *combFilter) process(in float32) float32 {
	out := c.buf[c.pos]
	c.store = out*(1-c.damp) + c.store*c.damp
	c.buf[c.pos] = in + c.store*c.feedback
	c.pos = (c.pos + 1) % len(c.buf)
	return out
}

// allpassFilter is one diffusing allpass stage.
type allpassFilter struct {
	buf []float32
	pos int
}

func (a *allpassFilter) process(in float32) float32 {
	bufOut := a.buf[a.pos]
	out := -in + bufOut
	a.buf[a.pos] = in + bufOut*0.5
	a.pos = (a.pos + 1) % len(a.buf)
	return out
}

// Canonical Freeverb tuning lengths in samples at 44.1kHz, scaled to
// the session sample rate below. The teacher's own reverb
// (audio_chip.go applyReverb) uses this same comb+allpass topology at
// a smaller scale (4 combs, 2 allpass); spec §4.4 asks for the full
// 8-comb/4-allpass Freeverb configuration, so the topology is kept
// and the tuning tables extended to match.
var combTuningL = [8]int{1557, 1617, 1491, 1422, 1277, 1356, 1188, 1116}
var combTuningR = [8]int{1557 + 23, 1617 + 23, 1491 + 23, 1422 + 23, 1277 + 23, 1356 + 23, 1188 + 23, 1116 + 23}
var allpassTuning = [4]int{225, 556, 441, 341}

type freeverbEffect struct {
	combsL, combsR       [8]combFilter
	allpassL, allpassR   [4]allpassFilter
	roomSize, damping, wetDry score.Automatable
}

func scaleLen(samples44k int, sampleRate float64) int {
	n := int(float64(samples44k) * sampleRate / 44100.0)
	if n < 1 {
		n = 1
	}
	return n
}

func newFreeverb(spec score.Effect, sampleRate float64) *freeverbEffect {
	f := &freeverbEffect{roomSize: spec.RoomSize, damping: spec.Damping, wetDry: spec.WetDry}
	for i := 0; i < 8; i++ {
		f.combsL[i].buf = make([]float32, scaleLen(combTuningL[i], sampleRate))
		f.combsR[i].buf = make([]float32, scaleLen(combTuningR[i], sampleRate))
	}
	for i := 0; i < 4; i++ {
		f.allpassL[i].buf = make([]float32, scaleLen(allpassTuning[i], sampleRate))
		f.allpassR[i].buf = make([]float32, scaleLen(allpassTuning[i], sampleRate))
	}
	return f
}

func (f *freeverbEffect) Process(l, r float32, t float64) (float32, float32) {
	room := float32(clampF(f.roomSize.Sample(t), 0, 1))
	damp := float32(clampF(f.damping.Sample(t), 0, 1))
	wet := float32(clampF(f.wetDry.Sample(t), 0, 1))

	feedback := 0.28 + room*0.7

	var outL, outR float32
	for i := range f.combsL {
		f.combsL[i].feedback, f.combsL[i].damp = feedback, damp
		f.combsR[i].feedback, f.combsR[i].damp = feedback, damp
		outL += f.combsL[i].process(l)
		outR += f.combsR[i].process(r)
	}
	for i := range f.allpassL {
		outL = f.allpassL[i].process(outL)
		outR = f.allpassR[i].process(outR)
	}

	return l*(1-wet) + outL*wet*0.5, r*(1-wet) + outR*wet*0.5
}
