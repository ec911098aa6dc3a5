package dsp

import (
	"math"

	"github.com/sqrew/tunes-sub004/internal/score"
)

// peakingBiquad is one RBJ-cookbook peaking band, direct form I.
type peakingBiquad struct {
	b0, b1, b2, a1, a2 float32
	x1, x2, y1, y2     float32
}

func newPeakingBiquad(freqHz, sampleRate, gainDB, q float64) peakingBiquad {
	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freqHz / sampleRate
	alpha := math.Sin(w0) / (2 * q)
	cosw0 := math.Cos(w0)

	b0 := 1 + alpha*a
	b1 := -2 * cosw0
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cosw0
	a2 := 1 - alpha/a

	return peakingBiquad{
		b0: float32(b0 / a0), b1: float32(b1 / a0), b2: float32(b2 / a0),
		a1: float32(a1 / a0), a2: float32(a2 / a0),
	}
}

func (b *peakingBiquad) process(in float32) float32 {
	out := b.b0*in + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
	b.x2, b.x1 = b.x1, in
	b.y2, b.y1 = b.y1, out
	return out
}

// parametricEQEffect implements spec §4.4's ParametricEQ: an array of
// independently enable/bypass peaking bands.
type parametricEQEffect struct {
	bandsL, bandsR []peakingBiquad
	bypass         []bool
}

func newParametricEQ(spec score.Effect, sampleRate float64) *parametricEQEffect {
	e := &parametricEQEffect{}
	for _, band := range spec.Bands {
		e.bandsL = append(e.bandsL, newPeakingBiquad(band.FrequencyHz, sampleRate, band.GainDB, band.Q))
		e.bandsR = append(e.bandsR, newPeakingBiquad(band.FrequencyHz, sampleRate, band.GainDB, band.Q))
		e.bypass = append(e.bypass, band.Bypassed)
	}
	return e
}

func (e *parametricEQEffect) Process(l, r float32, t float64) (float32, float32) {
	for i := range e.bandsL {
		if e.bypass[i] {
			continue
		}
		l = e.bandsL[i].process(l)
		r = e.bandsR[i].process(r)
	}
	return l, r
}
