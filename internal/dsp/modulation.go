package dsp

import (
	"math"

	"github.com/sqrew/tunes-sub004/internal/score"
)

// modProfile fixes the center delay and depth scaling that distinguish
// a Chorus from a Flanger on top of the same modulated-delay-line
// engine (spec §4.4: "Chorus and Flanger share one modulated delay
// line implementation, differing only in center delay and depth").
type modProfile struct {
	centerMs float64
	mix      float32
}

func modChorus(spec score.Effect) modProfile { return modProfile{centerMs: 20, mix: 0.5} }
func modFlanger(spec score.Effect) modProfile { return modProfile{centerMs: 3, mix: 0.5} }

// modDelayEffect is a sinusoidally-modulated delay line, the shared
// engine behind Chorus and Flanger.
type modDelayEffect struct {
	l, r     delayLine
	sr       float64
	rateHz   score.Automatable
	depthMs  score.Automatable
	feedback score.Automatable
	profile  modProfile
	phase    float64
}

func newModDelay(spec score.Effect, sampleRate float64, profileFn func(score.Effect) modProfile) *modDelayEffect {
	profile := profileFn(spec)
	maxMs := profile.centerMs*2 + 20
	maxSamples := int(maxMs / 1000 * sampleRate) + 2
	return &modDelayEffect{
		l: newDelayLine(maxSamples), r: newDelayLine(maxSamples),
		sr: sampleRate, rateHz: spec.RateHz, depthMs: spec.DepthMs,
		feedback: spec.ModFeedback, profile: profile,
	}
}

func (m *modDelayEffect) Process(l, r float32, t float64) (float32, float32) {
	rate := m.rateHz.Sample(t)
	depth := m.depthMs.Sample(t)
	fb := float32(clampF(m.feedback.Sample(t), 0, 0.95))

	lfo := math.Sin(2 * math.Pi * m.phase)
	m.phase += rate / m.sr
	if m.phase >= 1 {
		m.phase -= math.Trunc(m.phase)
	}

	delayMs := m.profile.centerMs + depth*lfo
	if delayMs < 0 {
		delayMs = 0
	}
	delaySamples := delayMs / 1000 * m.sr

	tapL := m.l.readFrac(delaySamples)
	tapR := m.r.readFrac(delaySamples)
	m.l.write(l + tapL*fb)
	m.r.write(r + tapR*fb)

	mix := m.profile.mix
	return l*(1-mix) + tapL*mix, r*(1-mix) + tapR*mix
}

// phaserEffect implements spec §4.4's Phaser: a cascade of first-order
// allpass stages whose break frequency is swept by a shared LFO.
type phaserEffect struct {
	stagesL, stagesR []allpassStage
	rateHz           score.Automatable
	depthMs          score.Automatable
	feedback         score.Automatable
	sr               float64
	phase            float64
	fbL, fbR         float32
}

type allpassStage struct {
	x1, y1 float32
}

func (a *allpassStage) process(in, coeff float32) float32 {
	out := -coeff*in + a.x1 + coeff*a.y1
	a.x1, a.y1 = in, out
	return out
}

func newPhaser(spec score.Effect, sampleRate float64) *phaserEffect {
	stages := spec.Stages
	if stages < 4 {
		stages = 4
	}
	if stages > 8 {
		stages = 8
	}
	return &phaserEffect{
		stagesL: make([]allpassStage, stages), stagesR: make([]allpassStage, stages),
		rateHz: spec.RateHz, depthMs: spec.DepthMs, feedback: spec.ModFeedback, sr: sampleRate,
	}
}

func (p *phaserEffect) Process(l, r float32, t float64) (float32, float32) {
	rate := p.rateHz.Sample(t)
	depthHz := p.depthMs.Sample(t) * 100 // reuse DepthMs as a sweep-width-in-Hz knob
	fb := float32(clampF(p.feedback.Sample(t), 0, 0.95))

	lfo := (math.Sin(2*math.Pi*p.phase) + 1) / 2
	p.phase += rate / p.sr
	if p.phase >= 1 {
		p.phase -= math.Trunc(p.phase)
	}

	centerHz := 400 + depthHz*lfo
	w := math.Pi * clampF(centerHz/p.sr, 0.001, 0.45)
	coeff := float32((math.Tan(w) - 1) / (math.Tan(w) + 1))

	inL := l + p.fbL*fb
	inR := r + p.fbR*fb
	outL, outR := inL, inR
	for i := range p.stagesL {
		outL = p.stagesL[i].process(outL, coeff)
		outR = p.stagesR[i].process(outR, coeff)
	}
	p.fbL, p.fbR = outL, outR

	return (l + outL) * 0.5, (r + outR) * 0.5
}
