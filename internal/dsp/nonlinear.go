package dsp

import (
	"math"

	"github.com/sqrew/tunes-sub004/internal/score"
)

// driveEffect implements spec §4.4's Distortion and Saturation as one
// tanh waveshaper parameterized by Drive: low drive values stay in the
// shaper's linear region (soft saturation), high values clip hard
// (distortion). The two EffectKinds share this single implementation.
type driveEffect struct {
	drive score.Automatable
}

func newDrive(spec score.Effect) *driveEffect { return &driveEffect{drive: spec.Drive} }

func (d *driveEffect) Process(l, r float32, t float64) (float32, float32) {
	drive := float32(math.Max(d.drive.Sample(t), 0.0001))
	shape := func(x float32) float32 {
		return float32(math.Tanh(float64(x * drive)))
	}
	return shape(l), shape(r)
}

// bitcrusherEffect implements spec §4.4's Bitcrusher: rounds amplitude
// to multiples of 1/(2^BitDepth - 1). Sample-rate reduction is intentionally
// out of scope (spec names only bit depth for this effect).
type bitcrusherEffect struct {
	bitDepth score.Automatable
}

func newBitcrusher(spec score.Effect, sampleRate float64) *bitcrusherEffect {
	return &bitcrusherEffect{bitDepth: spec.BitDepth}
}

func (b *bitcrusherEffect) Process(l, r float32, t float64) (float32, float32) {
	bits := clampF(b.bitDepth.Sample(t), 1, 24)
	levels := float32(math.Pow(2, bits) - 1)
	quant := func(x float32) float32 {
		return float32(math.Round(float64(x*levels))) / levels
	}
	return quant(l), quant(r)
}

// ringModEffect implements spec §4.4's RingMod: multiplies the signal
// by a sine carrier at RingFreqHz.
type ringModEffect struct {
	freqHz score.Automatable
	phase  float64
	sr     float64
}

func newRingMod(spec score.Effect, sampleRate float64) *ringModEffect {
	return &ringModEffect{freqHz: spec.RingFreqHz, sr: sampleRate}
}

func (rm *ringModEffect) Process(l, r float32, t float64) (float32, float32) {
	carrier := float32(math.Sin(2 * math.Pi * rm.phase))
	rm.phase += rm.freqHz.Sample(t) / rm.sr
	if rm.phase >= 1 {
		rm.phase -= math.Trunc(rm.phase)
	}
	return l * carrier, r * carrier
}

// tremoloEffect implements spec §4.4's Tremolo: sine-LFO amplitude
// modulation, reusing RateHz/DepthMs as rate (Hz) and depth (0-100%).
type tremoloEffect struct {
	rateHz, depth score.Automatable
	phase, sr     float64
}

func newTremolo(spec score.Effect, sampleRate float64) *tremoloEffect {
	return &tremoloEffect{rateHz: spec.RateHz, depth: spec.DepthMs, sr: sampleRate}
}

func (tr *tremoloEffect) Process(l, r float32, t float64) (float32, float32) {
	depth := clampF(tr.depth.Sample(t)/100, 0, 1)
	lfo := (math.Sin(2*math.Pi*tr.phase) + 1) / 2
	tr.phase += tr.rateHz.Sample(t) / tr.sr
	if tr.phase >= 1 {
		tr.phase -= math.Trunc(tr.phase)
	}
	gain := float32(1 - depth*(1-lfo))
	return l * gain, r * gain
}

// autopanEffect implements spec §4.4's Autopan: a sine LFO sweeping
// constant-power pan position, reusing RateHz/DepthMs as rate and pan
// excursion (0-100% of full left/right travel).
type autopanEffect struct {
	rateHz, depth score.Automatable
	phase, sr     float64
}

func newAutopan(spec score.Effect, sampleRate float64) *autopanEffect {
	return &autopanEffect{rateHz: spec.RateHz, depth: spec.DepthMs, sr: sampleRate}
}

func (ap *autopanEffect) Process(l, r float32, t float64) (float32, float32) {
	depth := clampF(ap.depth.Sample(t)/100, 0, 1)
	lfo := math.Sin(2 * math.Pi * ap.phase)
	ap.phase += ap.rateHz.Sample(t) / ap.sr
	if ap.phase >= 1 {
		ap.phase -= math.Trunc(ap.phase)
	}
	pan := lfo * depth // [-depth, depth]
	angle := (pan + 1) * math.Pi / 4
	gainL := float32(math.Cos(angle))
	gainR := float32(math.Sin(angle))
	return l * gainL, r * gainR
}

// gateEffect implements spec §4.4's noise Gate: a peak envelope
// follower that mutes the signal below GateThresholdDB, with the
// Compressor's shared attack/release coefficients reused at fixed
// fast times since Gate declares no attack/release of its own.
type gateEffect struct {
	thresholdDB score.Automatable
	env         envFollower
	sr          float64
}

func newGate(spec score.Effect, sampleRate float64) *gateEffect {
	return &gateEffect{thresholdDB: spec.GateThresholdDB, sr: sampleRate}
}

func (g *gateEffect) Process(l, r float32, t float64) (float32, float32) {
	attackCoef := timeCoef(0.001, g.sr)
	releaseCoef := timeCoef(0.1, g.sr)

	peak := l
	if r > peak {
		peak = r
	}
	if -l > peak {
		peak = -l
	}
	if -r > peak {
		peak = -r
	}
	env := g.env.step(peak, attackCoef, releaseCoef)

	threshold := dbToLinear(g.thresholdDB.Sample(t))
	if env < threshold {
		return 0, 0
	}
	return l, r
}
