// Package wavetable implements band-limited periodic waveform lookup
// and the per-voice phase accumulator of spec §4.1 (component C1).
//
// Wavetables are process-wide immutable singletons, built once at
// first use and never mutated afterward — the same "global state"
// discipline the teacher engine applies to its sine/tanh lookup
// tables (audio_lut.go): init() builds the table, nothing ever writes
// to it again.
package wavetable

import (
	"math"
	"sync"
)

// Size is the default wavetable length N, per spec §3.
const Size = 2048

// Table is an immutable single-period waveform: Size samples in
// [-1, 1]. Zero value is unusable; construct with New or a Kind
// accessor below.
type Table struct {
	samples [Size]float32
}

// New builds a Table from a generator function sampling one period
// at Size evenly spaced points, phase in [0, 1).
func New(gen func(phase float64) float64) *Table {
	t := &Table{}
	for i := 0; i < Size; i++ {
		phase := float64(i) / float64(Size)
		t.samples[i] = float32(gen(phase))
	}
	return t
}

// Lookup performs the linear-interpolated, phase-wrapped read
// specified in spec §4.1: x = phase*N, i = floor(x), f = x-i,
// result = table[i]*(1-f) + table[(i+1) mod N]*f.
func (t *Table) Lookup(phase float32) float32 {
	if phase < 0 {
		phase -= float32(math.Floor(float64(phase)))
	}
	x := phase * Size
	i := int(x)
	f := x - float32(i)
	i %= Size
	if i < 0 {
		i += Size
	}
	j := (i + 1) % Size
	return t.samples[i]*(1-f) + t.samples[j]*f
}

// Kind selects one of the canonical single-table waveforms. Spec
// §4.1 notes that a single precomputed table per waveform means
// aliasing above Nyquist is not separately mitigated — simplicity
// over fidelity at extreme pitches, by design of this spec.
type Kind uint8

const (
	Sine Kind = iota
	Square
	Triangle
	Sawtooth
)

var (
	canonicalOnce  sync.Once
	canonicalTable [4]*Table
)

func buildCanonical() {
	canonicalTable[Sine] = New(func(p float64) float64 {
		return math.Sin(2 * math.Pi * p)
	})
	canonicalTable[Square] = New(func(p float64) float64 {
		if p < 0.5 {
			return 1
		}
		return -1
	})
	canonicalTable[Triangle] = New(func(p float64) float64 {
		return 4*math.Abs(p-math.Floor(p+0.5)) - 1
	})
	canonicalTable[Sawtooth] = New(func(p float64) float64 {
		return 2*(p-math.Floor(p+0.5)) * -1
	})
}

// Canonical returns the process-wide singleton Table for kind,
// lazily building all four canonical tables on first use.
func Canonical(kind Kind) *Table {
	canonicalOnce.Do(buildCanonical)
	return canonicalTable[kind]
}
