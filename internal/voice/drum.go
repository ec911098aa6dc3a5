package voice

import (
	"math"
	"math/rand"

	"github.com/sqrew/tunes-sub004/internal/score"
)

// drumVoice synthesizes one of spec §4.3's built-in percussion models
// procedurally: no wavetable lookup, no ADSR — each family is its own
// short-lived oscillator/noise/decay recipe, grounded in the classic
// analog-drum-machine synthesis techniques (808/909-style pitched
// membrane sweeps, six-square-wave metallic hi-hats, filtered noise
// bursts) that original_source's drum instrument modules implement.
type drumVoice struct {
	kind     score.DrumKind
	duration float64
	velocity float32
	sr       float64
	rng      *rand.Rand

	phase      float64 // generic oscillator phase, cycles
	phase2     float64
	noiseState float32
	hpState    float32
}

func NewDrumVoice(e score.Event, sampleRate float64) *drumVoice {
	return &drumVoice{
		kind:     e.Drum,
		duration: e.Drum.NaturalDuration(),
		velocity: float32(e.Velocity),
		sr:       sampleRate,
		rng:      rand.New(rand.NewSource(noiseSeed(e))),
	}
}

func (v *drumVoice) Render(out []float32, blockStartSample int64, sampleRate float64) bool {
	var done bool
	for i := range out {
		tSec := (float64(blockStartSample) + float64(i)) / sampleRate
		if tSec >= v.duration {
			done = true
			break
		}
		out[i] += v.sampleAt(tSec) * v.velocity
	}
	return done
}

func expDecay(t, tau float64) float64 { return math.Exp(-t / tau) }

func (v *drumVoice) white() float32 { return float32(v.rng.Float64()*2 - 1) }

// highpass is a one-pole highpass that removes low-frequency rumble from noise bursts
// (clap, snare body, hats) so they read as percussive transients.
func (v *drumVoice) highpass(in float32, coeff float32) float32 {
	out := in - v.noiseState
	v.noiseState += coeff * out
	return out
}

func (v *drumVoice) sampleAt(t float64) float32 {
	switch v.kind {
	case score.Kick808, score.Kick909:
		return v.pitchedMembrane(t, 150, 45, 0.25, true)
	case score.SubKick:
		return v.pitchedMembrane(t, 90, 35, 0.3, false)
	case score.BassDrop:
		return v.pitchedMembrane(t, 220, 30, 0.6, false)
	case score.Boom:
		return v.pitchedMembrane(t, 110, 40, 0.8, true)
	case score.Snare808, score.Snare909:
		return v.toneNoiseBurst(t, 180, 0.08, 0.7)
	case score.Rimshot, score.Sidestick:
		return v.toneNoiseBurst(t, 420, 0.02, 0.3)
	case score.ClosedHat808, score.ClosedHat909:
		return v.metallicHat(t, 0.05)
	case score.OpenHat808, score.OpenHat909:
		return v.metallicHat(t, 0.3)
	case score.Clap:
		return v.clap(t)
	case score.Cowbell:
		return v.cowbell(t)
	case score.Clave:
		return v.sineBurst(t, 2500, 0.08)
	case score.TomLow:
		return v.pitchedMembrane(t, 140, 90, 0.25, false)
	case score.TomMid:
		return v.pitchedMembrane(t, 200, 110, 0.25, false)
	case score.TomHigh:
		return v.pitchedMembrane(t, 280, 140, 0.25, false)
	case score.Crash:
		return v.metallicHat(t, 1.5)
	case score.Ride:
		return v.metallicHat(t, 0.8)
	case score.Shaker:
		return v.highpass(v.white(), 0.3) * float32(expDecay(t, 0.05))
	case score.Tambourine:
		return v.metallicHat(t, 0.2)
	case score.Conga:
		return v.pitchedMembrane(t, 300, 220, 0.2, false)
	case score.LaserZap:
		return v.sineSweepDown(t, 2000, 80, 0.15)
	case score.WhiteNoiseHit:
		return v.white() * float32(expDecay(t, 0.03))
	default:
		return v.white() * float32(expDecay(t, 0.05))
	}
}

// pitchedMembrane is the classic 808/909 kick/tom recipe: a sine
// whose frequency sweeps from startHz down to endHz over the first
// few milliseconds, amplitude-enveloped by exponential decay, with an
// optional short noise click at onset for kick-family punch.
func (v *drumVoice) pitchedMembrane(t, startHz, endHz, decayTau float64, click bool) float32 {
	sweepTau := 0.04
	freq := endHz + (startHz-endHz)*expDecay(t, sweepTau)
	v.phase += freq / v.sr
	body := float32(math.Sin(2 * math.Pi * v.phase))
	out := body * float32(expDecay(t, decayTau))
	if click && t < 0.002 {
		out += v.white() * float32(1-t/0.002) * 0.5
	}
	return out
}

// toneNoiseBurst mixes a decaying tone with highpassed noise, the
// classic snare/rimshot shape.
func (v *drumVoice) toneNoiseBurst(t, toneHz, decayTau, noiseMix float64) float32 {
	v.phase += toneHz / v.sr
	tone := float32(math.Sin(2*math.Pi*v.phase)) * float32(expDecay(t, decayTau))
	noise := v.highpass(v.white(), 0.4) * float32(expDecay(t, decayTau*1.3))
	return tone*float32(1-noiseMix) + noise*float32(noiseMix)
}

// metallicHat advances one shared phase accumulator by each of six
// fixed inharmonic ratios (times 400 Hz) in turn and sums the
// square-wave sign after each step; the six ratios are not separate
// oscillators. The sum is highpass-filtered, with decayTau setting
// closed vs open hat length (also reused for crash/ride/tambourine at
// longer tau).
var hatRatios = [6]float64{1, 1.342, 1.2312, 1.6532, 1.9542, 2.2532}

func (v *drumVoice) metallicHat(t, decayTau float64) float32 {
	var mix float32
	for _, ratio := range hatRatios {
		v.phase2 += (ratio * 400) / v.sr
		frac := v.phase2 - math.Floor(v.phase2)
		if frac < 0.5 {
			mix += 1
		} else {
			mix -= 1
		}
	}
	mix /= 6
	mix = v.highpass(mix, 0.6)
	return mix * float32(expDecay(t, decayTau))
}

// clap layers several short, slightly offset noise bursts to
// approximate a hand-clap's characteristic flutter.
func (v *drumVoice) clap(t float64) float32 {
	var sum float32
	offsets := [3]float64{0, 0.01, 0.02}
	for _, off := range offsets {
		dt := t - off
		if dt < 0 {
			continue
		}
		sum += v.highpass(v.white(), 0.4) * float32(expDecay(dt, 0.05))
	}
	return sum / 3
}

// cowbell beats two square waves at a fixed ratio, the classic 909
// cowbell recipe.
func (v *drumVoice) cowbell(t float64) float32 {
	v.phase += 540 / v.sr
	v.phase2 += 800 / v.sr
	sq := func(p float64) float32 {
		if p-math.Floor(p) < 0.5 {
			return 1
		}
		return -1
	}
	mix := (sq(v.phase) + sq(v.phase2)) / 2
	return mix * float32(expDecay(t, 0.2))
}

func (v *drumVoice) sineBurst(t, hz, decayTau float64) float32 {
	v.phase += hz / v.sr
	return float32(math.Sin(2*math.Pi*v.phase)) * float32(expDecay(t, decayTau))
}

func (v *drumVoice) sineSweepDown(t, startHz, endHz, decayTau float64) float32 {
	sweepTau := 0.08
	freq := endHz + (startHz-endHz)*expDecay(t, sweepTau)
	v.phase += freq / v.sr
	return float32(math.Sin(2*math.Pi*v.phase)) * float32(expDecay(t, decayTau))
}
