// Package dsp implements the stateful per-sample effect processors of
// spec §4.4 (component C4). Every effect owns independent left/right
// memories, created fresh at render start and discarded at render end
// (spec §3): nothing here survives across render sessions the way the
// wavetable singletons do.
package dsp

import (
	"fmt"

	"github.com/sqrew/tunes-sub004/internal/score"
)

// Effect is a stateful stereo DSP block: Process(l, r, t) implements
// spec §4.4's per-channel contract for both channels at once, since
// every concrete effect keeps independent state per channel anyway.
// t is the absolute render-session time in seconds, consulted by
// effects with an attached Automation curve (spec §4.4).
type Effect interface {
	Process(l, r float32, t float64) (float32, float32)
}

// SidechainReader returns the designated sidechain source's pre-effect
// stereo sum for the current block, per spec §4.6. Bus/track render
// code supplies one of these for effects that declared SidechainFrom;
// New hands it to the compressor only, and no other effect kind reads
// it.
type SidechainReader func() (l, r float32)

// New builds the runtime Effect for a declarative score.Effect spec.
// sidechain is nil unless spec.SidechainFrom is set; the caller
// (internal/render) is responsible for resolving the reference to a
// live SidechainReader via the topological render order.
func New(spec score.Effect, sampleRate float64, sidechain SidechainReader) (Effect, error) {
	if spec.Bypass {
		return passthrough{}, nil
	}
	switch spec.Kind {
	case score.EffectFilter:
		return newFilter(spec, sampleRate), nil
	case score.EffectParametricEQ:
		return newParametricEQ(spec, sampleRate), nil
	case score.EffectDelay:
		return newDelay(spec, sampleRate), nil
	case score.EffectReverb:
		return newFreeverb(spec, sampleRate), nil
	case score.EffectConvolutionReverb:
		return newConvolutionReverb(spec, sampleRate), nil
	case score.EffectChorus:
		return newModDelay(spec, sampleRate, modChorus), nil
	case score.EffectFlanger:
		return newModDelay(spec, sampleRate, modFlanger), nil
	case score.EffectPhaser:
		return newPhaser(spec, sampleRate), nil
	case score.EffectCompressor:
		return newCompressor(spec, sampleRate, sidechain), nil
	case score.EffectLimiter:
		return newLimiter(spec, sampleRate), nil
	case score.EffectDistortion, score.EffectSaturation:
		return newDrive(spec), nil
	case score.EffectBitcrusher:
		return newBitcrusher(spec, sampleRate), nil
	case score.EffectRingMod:
		return newRingMod(spec, sampleRate), nil
	case score.EffectTremolo:
		return newTremolo(spec, sampleRate), nil
	case score.EffectAutopan:
		return newAutopan(spec, sampleRate), nil
	case score.EffectGate:
		return newGate(spec, sampleRate), nil
	default:
		return nil, fmt.Errorf("dsp: unknown effect kind %d", spec.Kind)
	}
}

type passthrough struct{}

func (passthrough) Process(l, r float32, t float64) (float32, float32) { return l, r }

// Chain runs an ordered list of Effects head-to-tail, per spec §4.4:
// "Ordering in an effect chain is significant and is the user-declared
// order."
type Chain struct {
	effects []Effect
}

// NewChain builds one runtime Effect per spec using sidechainFor to
// resolve each Effect's SidechainFrom reference.
func NewChain(specs []score.Effect, sampleRate float64, sidechainFor func(score.Effect) SidechainReader) (*Chain, error) {
	c := &Chain{effects: make([]Effect, 0, len(specs))}
	for _, s := range specs {
		var sc SidechainReader
		if sidechainFor != nil {
			sc = sidechainFor(s)
		}
		e, err := New(s, sampleRate, sc)
		if err != nil {
			return nil, err
		}
		c.effects = append(c.effects, e)
	}
	return c, nil
}

// Process runs the block [l,r] through every effect in order.
func (c *Chain) Process(l, r float32, t float64) (float32, float32) {
	for _, e := range c.effects {
		l, r = e.Process(l, r, t)
	}
	return l, r
}

func clampF32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
