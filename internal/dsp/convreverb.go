package dsp

import (
	"math"
	"math/rand"

	"github.com/sqrew/tunes-sub004/internal/score"
)

// presetIRSeed ties each preset to a fixed PRNG seed so the
// synthesized impulse response — and therefore every render using it
// — is deterministic across runs (spec §8's determinism invariant).
var presetIRSeed = map[score.ReverbPreset]int64{
	score.ReverbSmallRoom: 1,
	score.ReverbHall:      2,
	score.ReverbCathedral: 3,
	score.ReverbPlate:     4,
	score.ReverbSpring:    5,
}

var presetDecaySeconds = map[score.ReverbPreset]float64{
	score.ReverbSmallRoom: 0.3,
	score.ReverbHall:      1.8,
	score.ReverbCathedral: 4.5,
	score.ReverbPlate:     1.2,
	score.ReverbSpring:    0.9,
}

var presetLowpassHz = map[score.ReverbPreset]float64{
	score.ReverbSmallRoom: 6000,
	score.ReverbHall:      4000,
	score.ReverbCathedral: 2500,
	score.ReverbPlate:     8000,
	score.ReverbSpring:    3000,
}

// synthesizeIR builds an impulse response by filtering exponentially
// decaying white noise through a one-pole lowpass, per spec §4.4:
// "presets ... synthesized at construction from exponential-decay
// noise filtered per preset."
func synthesizeIR(preset score.ReverbPreset, sampleRate float64) []float32 {
	decay := presetDecaySeconds[preset]
	lengthSamples := int(decay * sampleRate)
	if lengthSamples < 1 {
		lengthSamples = 1
	}
	ir := make([]float32, lengthSamples)

	rng := rand.New(rand.NewSource(presetIRSeed[preset]))
	cutoff := presetLowpassHz[preset]
	alpha := float32(1 - math.Exp(-2*math.Pi*cutoff/sampleRate))
	var lp float32

	for i := range ir {
		noise := float32(rng.Float64()*2 - 1)
		lp += alpha * (noise - lp)
		env := float32(math.Exp(-3 * float64(i) / float64(lengthSamples) / (decay / decay)))
		ir[i] = lp * env
	}
	// Normalize to unit energy so wet level is comparable across presets.
	var sumSq float64
	for _, v := range ir {
		sumSq += float64(v) * float64(v)
	}
	if sumSq > 0 {
		norm := float32(1 / math.Sqrt(sumSq))
		for i := range ir {
			ir[i] *= norm
		}
	}
	return ir
}

// convolutionReverbEffect implements spec §4.4's convolution reverb
// via direct time-domain convolution, computing each output sample
// against the whole impulse response. This trades CPU cost for
// simplicity (no FFT dependency is wired for the real-time path,
// consistent with the wavetable's own "simplicity over fidelity"
// tradeoff at §4.1).
type convolutionReverbEffect struct {
	ir       []float32
	histL, histR []float32
	writePos int
	wetDry   score.Automatable
}

func newConvolutionReverb(spec score.Effect, sampleRate float64) *convolutionReverbEffect {
	ir := synthesizeIR(spec.ConvPreset, sampleRate)
	return &convolutionReverbEffect{
		ir:     ir,
		histL:  make([]float32, len(ir)),
		histR:  make([]float32, len(ir)),
		wetDry: spec.WetDry,
	}
}

func (c *convolutionReverbEffect) Process(l, r float32, t float64) (float32, float32) {
	n := len(c.ir)
	c.histL[c.writePos] = l
	c.histR[c.writePos] = r

	var wetL, wetR float32
	for k := 0; k < n; k++ {
		idx := (c.writePos - k + n) % n
		wetL += c.ir[k] * c.histL[idx]
		wetR += c.ir[k] * c.histR[idx]
	}
	c.writePos = (c.writePos + 1) % n

	wet := float32(clampF(c.wetDry.Sample(t), 0, 1))
	return l*(1-wet) + wetL*wet, r*(1-wet) + wetR*wet
}
