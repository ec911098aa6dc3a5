package voice

import (
	"math"
	"math/rand"

	"github.com/sqrew/tunes-sub004/internal/score"
)

// noiseSeed derives a deterministic PRNG seed from the event's own
// fields, per spec §4.8's determinism invariant: identical events
// must synthesize bit-identical noise on every render.
func noiseSeed(e score.Event) int64 {
	bits := math.Float64bits(e.Start)*31 + math.Float64bits(e.Duration)
	return int64(bits ^ uint64(e.Noise)<<1)
}

// noiseVoice generates one of the colored-noise families of spec §4.3
// over its fixed Duration.
// noiseVoice has no ADSR envelope: spec §4.3 bounds Noise events by
// Duration alone, at a flat Velocity-scaled gain.
type noiseVoice struct {
	kind     score.NoiseKind
	rng      *rand.Rand
	duration float64
	velocity float32

	// Brown/pink/blue/green filter state.
	state  float32
	pink   [7]float32
	perlin perlinState
}

func NewNoiseVoice(e score.Event, sampleRate float64) *noiseVoice {
	v := &noiseVoice{
		kind:     e.Noise,
		rng:      rand.New(rand.NewSource(noiseSeed(e))),
		duration: e.Duration,
		velocity: float32(e.Velocity),
	}
	v.perlin = newPerlinState(v.rng)
	return v
}

func (v *noiseVoice) Render(out []float32, blockStartSample int64, sampleRate float64) bool {
	var done bool
	for i := range out {
		tSec := (float64(blockStartSample) + float64(i)) / sampleRate
		if tSec >= v.duration {
			done = true
			break
		}
		out[i] += v.next(float32(sampleRate)) * v.velocity
	}
	return done
}

func (v *noiseVoice) next(sampleRate float32) float32 {
	white := float32(v.rng.Float64()*2 - 1)
	switch v.kind {
	case score.White:
		return white
	case score.Pink:
		return v.pinkStep(white)
	case score.Brown:
		v.state += white * 0.02
		if v.state > 1 {
			v.state = 1
		}
		if v.state < -1 {
			v.state = -1
		}
		return v.state
	case score.Blue:
		diff := white - v.state
		v.state = white
		return diff
	case score.Green:
		// The running brown sum minus its previous value, which is
		// the white sample scaled by 0.02; the output is not
		// band-limited.
		v.state += white * 0.02
		hp := v.state - v.pink[0]
		v.pink[0] = v.state
		return hp
	case score.Perlin:
		return v.perlin.sample(v.rng)
	default:
		return white
	}
}

// pinkStep implements the Paul Kellet pink-noise approximation, a
// common, cheap filter-bank pink noise recipe.
func (v *noiseVoice) pinkStep(white float32) float32 {
	b := &v.pink
	b[0] = 0.99886*b[0] + white*0.0555179
	b[1] = 0.99332*b[1] + white*0.0750759
	b[2] = 0.96900*b[2] + white*0.1538520
	b[3] = 0.86650*b[3] + white*0.3104856
	b[4] = 0.55000*b[4] + white*0.5329522
	b[5] = -0.7616*b[5] - white*0.0168980
	out := b[0] + b[1] + b[2] + b[3] + b[4] + b[5] + b[6] + white*0.5362
	b[6] = white * 0.115926
	return out * 0.11
}

// perlinState implements 1D gradient (Perlin) noise over a small
// table of random unit gradients, interpolated with a smootherstep.
type perlinState struct {
	gradients [256]float32
	t         float32
	step      float32
}

func newPerlinState(rng *rand.Rand) perlinState {
	var p perlinState
	for i := range p.gradients {
		p.gradients[i] = float32(rng.Float64()*2 - 1)
	}
	p.step = 0.01
	return p
}

func (p *perlinState) sample(rng *rand.Rand) float32 {
	p.t += p.step
	i0 := int(p.t) % 256
	i1 := (i0 + 1) % 256
	f := p.t - float32(int(p.t))
	smooth := f * f * (3 - 2*f)
	return p.gradients[i0]*(1-smooth) + p.gradients[i1]*smooth
}
