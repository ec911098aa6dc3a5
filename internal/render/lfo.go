package render

import (
	"math"

	"github.com/sqrew/tunes-sub004/internal/score"
)

// sampleLFO evaluates an LFOParams as a pure function of absolute
// render time t, per original_source's src/lfo.rs design and spec §9's
// "Tweening and LFOs" note: an LFO is stateless, so seeking or
// resuming a render never needs to replay its history.
func sampleLFO(p score.LFOParams, t float64) float64 {
	phase := t * p.RateHz
	phase -= math.Floor(phase)

	var raw float64
	switch p.Shape {
	case score.LFOSine:
		raw = math.Sin(2 * math.Pi * phase)
	case score.LFOTriangle:
		raw = 4*math.Abs(phase-0.5) - 1
	case score.LFOSquare:
		if phase < 0.5 {
			raw = 1
		} else {
			raw = -1
		}
	case score.LFOSawtooth:
		raw = 2*phase - 1
	default:
		raw = math.Sin(2 * math.Pi * phase)
	}
	return raw * p.Depth
}
