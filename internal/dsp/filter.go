package dsp

import (
	"math"

	"github.com/sqrew/tunes-sub004/internal/score"
)

// svfState is a single-channel Chamberlin state-variable filter,
// grounded directly on the teacher engine's global filter
// (audio_chip.go GenerateSample): lp += cutoff*bp; hp = (in-lp) -
// resonance*bp; bp += cutoff*hp. One instance per channel per filter
// effect, per spec §4.4's "owns independent left/right memories".
type svfState struct {
	lp, bp float32
}

func (s *svfState) step(in, cutoff, resonance float32) (lp, hp, bp float32) {
	lp = s.lp + cutoff*s.bp
	hp = (in - lp) - resonance*s.bp
	bp = s.bp + cutoff*hp
	lp = clampF32(lp, -2, 2)
	bp = clampF32(bp, -2, 2)
	hp = clampF32(hp, -2, 2)
	s.lp, s.bp = lp, bp
	return
}

// filterEffect implements spec §4.4's Filter: biquad-equivalent
// 12dB/oct per stage, 24dB/oct when Cascaded stacks two stages.
// Coefficients are recomputed from cutoff/resonance on every Process
// call, since both are Automatable and may change every sample when
// curve-driven.
type filterEffect struct {
	mode      score.FilterMode
	cutoff    score.Automatable
	resonance score.Automatable
	cascaded  bool
	sr        float64

	l1, r1 svfState
	l2, r2 svfState // second cascade stage, used only if cascaded
}

func newFilter(spec score.Effect, sampleRate float64) *filterEffect {
	return &filterEffect{
		mode:      spec.FilterMode,
		cutoff:    spec.CutoffHz,
		resonance: spec.Resonance,
		cascaded:  spec.Cascaded,
		sr:        sampleRate,
	}
}

func (f *filterEffect) selectOutput(lp, hp, bp float32) float32 {
	switch f.mode {
	case score.FilterLP:
		return lp
	case score.FilterHP:
		return hp
	case score.FilterBP:
		return bp
	case score.FilterNotch:
		return lp + hp
	case score.FilterAllPass:
		return lp + hp - bp
	default:
		return lp
	}
}

func (f *filterEffect) Process(l, r float32, t float64) (float32, float32) {
	cutoffHz := f.cutoff.Sample(t)
	resonanceQ := f.resonance.Sample(t)
	// Map Hz to the [0,2) SVF coefficient range (stable below Nyquist/2).
	cutoff := float32(2 * math.Sin(math.Pi*clampF(cutoffHz/f.sr, 0, 0.24)))
	resonance := float32(clampF(resonanceQ, 0, 0.99))

	lp, hp, bp := f.l1.step(l, cutoff, resonance)
	outL := f.selectOutput(lp, hp, bp)
	lp, hp, bp = f.r1.step(r, cutoff, resonance)
	outR := f.selectOutput(lp, hp, bp)

	if f.cascaded {
		lp, hp, bp = f.l2.step(outL, cutoff, resonance)
		outL = f.selectOutput(lp, hp, bp)
		lp, hp, bp = f.r2.step(outR, cutoff, resonance)
		outR = f.selectOutput(lp, hp, bp)
	}
	return outL, outR
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
