package dsp

import (
	"math"

	"github.com/sqrew/tunes-sub004/internal/score"
)

// envFollower is a one-pole attack/release peak or RMS follower shared
// by the compressor and gate.
type envFollower struct {
	level  float32
	useRMS bool
}

func (e *envFollower) step(in, attackCoef, releaseCoef float32) float32 {
	rect := in
	if e.useRMS {
		rect = in * in
	} else if rect < 0 {
		rect = -rect
	}
	coef := releaseCoef
	if rect > e.level {
		coef = attackCoef
	}
	e.level += coef * (rect - e.level)
	if e.useRMS {
		return float32(math.Sqrt(float64(e.level)))
	}
	return e.level
}

func timeCoef(seconds, sampleRate float64) float32 {
	if seconds <= 0 {
		return 1
	}
	return float32(1 - math.Exp(-1/(seconds*sampleRate)))
}

func linearToDB(v float32) float64 {
	if v <= 0 {
		return -120
	}
	return 20 * math.Log10(float64(v))
}

func dbToLinear(db float64) float32 {
	return float32(math.Pow(10, db/20))
}

// compressorEffect implements spec §4.4's Compressor: threshold/ratio/
// knee/attack/release/makeup, with an optional external sidechain
// envelope source feeding the same gain computer (§4.6).
type compressorEffect struct {
	envL, envR           envFollower
	threshold, ratio     score.Automatable
	knee, attack         score.Automatable
	release, makeup      score.Automatable
	useRMS               bool
	sr                   float64
	sidechain            SidechainReader
}

func newCompressor(spec score.Effect, sampleRate float64, sidechain SidechainReader) *compressorEffect {
	return &compressorEffect{
		threshold: spec.ThresholdDB, ratio: spec.Ratio, knee: spec.Knee,
		attack: spec.AttackSeconds, release: spec.ReleaseSeconds, makeup: spec.MakeupDB,
		useRMS: spec.UseRMS, sr: sampleRate, sidechain: sidechain,
		envL: envFollower{useRMS: spec.UseRMS}, envR: envFollower{useRMS: spec.UseRMS},
	}
}

// gainReductionDB implements the standard soft-knee gain computer.
func gainReductionDB(levelDB, thresholdDB, ratio, kneeDB float64) float64 {
	over := levelDB - thresholdDB
	if kneeDB > 0 && math.Abs(over) <= kneeDB/2 {
		over = over + kneeDB/2
		return (1/ratio - 1) * (over * over) / (2 * kneeDB)
	}
	if over <= 0 {
		return 0
	}
	return over*(1/ratio-1)
}

func (c *compressorEffect) Process(l, r float32, t float64) (float32, float32) {
	threshold := c.threshold.Sample(t)
	ratio := c.ratio.Sample(t)
	if ratio < 1 {
		ratio = 1
	}
	knee := c.knee.Sample(t)
	attackCoef := timeCoef(c.attack.Sample(t), c.sr)
	releaseCoef := timeCoef(c.release.Sample(t), c.sr)
	makeup := dbToLinear(c.makeup.Sample(t))

	detL, detR := l, r
	if c.sidechain != nil {
		detL, detR = c.sidechain()
	}

	envL := c.envL.step(detL, attackCoef, releaseCoef)
	envR := c.envR.step(detR, attackCoef, releaseCoef)
	env := envL
	if envR > env {
		env = envR
	}

	reductionDB := gainReductionDB(linearToDB(env), threshold, ratio, knee)
	gain := dbToLinear(reductionDB) * makeup

	return l * gain, r * gain
}

// limiterEffect implements spec §4.4's brickwall Limiter: a
// lookahead-delayed signal path plus an undelayed envelope follower
// with a fast attack, preventing overshoot above 0dBFS.
type limiterEffect struct {
	delayL, delayR delayLine
	envL, envR     envFollower
	lookahead      int
	sr             float64
}

func newLimiter(spec score.Effect, sampleRate float64) *limiterEffect {
	look := int(spec.LookaheadSeconds * sampleRate)
	if look < 1 {
		look = 1
	}
	return &limiterEffect{
		delayL: newDelayLine(look + 1), delayR: newDelayLine(look + 1),
		lookahead: look, sr: sampleRate,
	}
}

func (lm *limiterEffect) Process(l, r float32, t float64) (float32, float32) {
	attackCoef := timeCoef(0.001, lm.sr)
	releaseCoef := timeCoef(0.05, lm.sr)

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
	envL := lm.envL.step(peak, attackCoef, releaseCoef)

	gain := float32(1)
	if envL > 1 {
		gain = 1 / envL
	}

	lm.delayL.write(l)
	lm.delayR.write(r)
	delayedL := lm.delayL.read(lm.lookahead)
	delayedR := lm.delayR.read(lm.lookahead)

	return clampF32(delayedL*gain, -1, 1), clampF32(delayedR*gain, -1, 1)
}
