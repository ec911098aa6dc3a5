package dsp

import "github.com/sqrew/tunes-sub004/internal/score"

// delayLine is a circular buffer tap, shared by the Delay, Chorus,
// Flanger, and Phaser effects below.
type delayLine struct {
	buf []float32
	pos int
}

func newDelayLine(maxSamples int) delayLine {
	if maxSamples < 1 {
		maxSamples = 1
	}
	return delayLine{buf: make([]float32, maxSamples)}
}

func (d *delayLine) write(v float32) {
	d.buf[d.pos] = v
	d.pos = (d.pos + 1) % len(d.buf)
}

// readFrac reads a fractional number of samples behind the write
// head, linearly interpolated, for modulated delay lines.
func (d *delayLine) readFrac(samplesBack float64) float32 {
	n := len(d.buf)
	back := samplesBack
	if back < 0 {
		back = 0
	}
	if back > float64(n-1) {
		back = float64(n - 1)
	}
	i0 := (d.pos - 1 - int(back) + 2*n) % n
	i1 := (i0 - 1 + n) % n
	frac := float32(back - float64(int(back)))
	return d.buf[i0]*(1-frac) + d.buf[i1]*frac
}

func (d *delayLine) read(samplesBack int) float32 {
	n := len(d.buf)
	i := (d.pos - 1 - samplesBack%n + 2*n) % n
	return d.buf[i]
}

// delayEffect implements spec §4.4's Delay: a circular line of
// max_delay_sec*sr samples, a tap at delay_sec, clamped feedback, and
// a wet/dry mix.
type delayEffect struct {
	l, r                delayLine
	sr                  float64
	delaySec            score.Automatable
	feedback            score.Automatable
	wetDry              score.Automatable
}

func newDelay(spec score.Effect, sampleRate float64) *delayEffect {
	maxSamples := int(spec.MaxDelaySeconds * sampleRate)
	return &delayEffect{
		l: newDelayLine(maxSamples), r: newDelayLine(maxSamples),
		sr: sampleRate, delaySec: spec.DelaySeconds, feedback: spec.Feedback, wetDry: spec.WetDry,
	}
}

func (d *delayEffect) Process(l, r float32, t float64) (float32, float32) {
	fb := float32(clampF(d.feedback.Sample(t), 0, 0.95))
	wet := float32(clampF(d.wetDry.Sample(t), 0, 1))
	delaySamples := int(d.delaySec.Sample(t) * d.sr)
	if delaySamples >= len(d.l.buf) {
		delaySamples = len(d.l.buf) - 1
	}
	if delaySamples < 1 {
		delaySamples = 1
	}

	// read(k) returns the sample written k+1 calls ago, so read(d-1)
	// taps the input from exactly d samples back.
	tapL := d.l.read(delaySamples - 1)
	tapR := d.r.read(delaySamples - 1)
	d.l.write(l + tapL*fb)
	d.r.write(r + tapR*fb)

	return l*(1-wet) + tapL*wet, r*(1-wet) + tapR*wet
}
