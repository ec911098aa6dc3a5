package wavetable

// Oscillator is a (table, phase) pair; the frequency is passed to
// each Advance or FillBlock call. It is stateless across voices: each
// voice owns its own Oscillator
// value and advances it independently.
type Oscillator struct {
	Table *Table
	Phase float32 // in [0, 1)
}

// NewOscillator returns an Oscillator reading from table, starting at
// phase 0.
func NewOscillator(table *Table) Oscillator {
	return Oscillator{Table: table}
}

// Advance moves the phase accumulator forward by one sample at
// freqHz/sampleRate and returns the looked-up sample at the
// pre-advance phase.
func (o *Oscillator) Advance(freqHz, sampleRate float32) float32 {
	out := o.Table.Lookup(o.Phase)
	o.Phase += freqHz / sampleRate
	if o.Phase >= 1 {
		o.Phase -= float32(int(o.Phase))
	} else if o.Phase < 0 {
		o.Phase -= float32(int(o.Phase)) - 1
	}
	return out
}

// FillBlock fills out with a full block at a fixed frequency,
// clamping freqHz to (0, sampleRate/2) as required by the C1
// contract in spec §4.1. It never panics on pathological input.
func (o *Oscillator) FillBlock(out []float32, freqHz, sampleRate float32) {
	nyquist := sampleRate / 2
	f := freqHz
	if f <= 0 {
		f = 0
	} else if f >= nyquist {
		f = nyquist - 1
	}
	for i := range out {
		out[i] = o.Advance(f, sampleRate)
	}
}
