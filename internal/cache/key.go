// Package cache implements the content-addressed sample cache of spec
// §4.8 (component C8): synthesizing the same voice parameters twice is
// idempotent, so the second render can be served from memory instead
// of resynthesized.
package cache

import (
	"hash/fnv"
	"math"
	"sort"

	"github.com/sqrew/tunes-sub004/internal/envelope"
	"github.com/sqrew/tunes-sub004/internal/score"
)

// Key is the cache fingerprint for one Note or Drum event, per spec
// §4.8: "hashes synth_params tag and payload (floats quantized to 6
// decimal digits), envelope (a,d,s,r), duration (quantized to 1 ms),
// sorted pitches, sample rate." Sample events are never cached (they
// already reference shared immutable PCM); sidechain-affected voices
// are never cached (their input varies block to block) — callers
// simply never call KeyFor for those.
type Key uint64

// quantize6 rounds v to 6 decimal digits, matching spec §4.8's
// float-quantization rule so near-equal parameters coming from
// different automation paths still collide onto the same key.
func quantize6(v float64) float64 {
	const scale = 1e6
	return math.Round(v*scale) / scale
}

func quantizeMillis(v float64) float64 {
	const scale = 1e3
	return math.Round(v*scale) / scale
}

// KeyFor computes the fingerprint for a Note or Drum event. Calling
// it for any other EventKind is a programmer error (the scheduler
// never should).
func KeyFor(e score.Event, sampleRate float64) Key {
	h := fnv.New64a()
	writeF64 := func(v float64) {
		bits := math.Float64bits(v)
		var b [8]byte
		for i := range b {
			b[i] = byte(bits >> (8 * i))
		}
		h.Write(b[:])
	}
	writeByte := func(v byte) { h.Write([]byte{v}) }

	writeByte(byte(e.Kind))
	switch e.Kind {
	case score.DrumEvent:
		writeByte(byte(e.Drum))
	case score.NoteEvent:
		writeByte(byte(e.Synth.Kind))
		writeF64(quantize6(e.Synth.CarrierRatio))
		writeF64(quantize6(e.Synth.ModulatorRatio))
		writeF64(quantize6(e.Synth.ModulationIndex))
		for _, p := range e.Synth.Partials {
			writeF64(quantize6(p.Ratio))
			writeF64(quantize6(p.Amplitude))
			writeF64(quantize6(p.Phase))
		}
		writeEnvelope(writeF64, e.Envelope)
		if e.Synth.FilterEnv != nil {
			writeByte(1)
			writeEnvelope(writeF64, *e.Synth.FilterEnv)
		} else {
			writeByte(0)
		}
		writeByte(byte(e.Waveform))

		pitches := append([]float64(nil), e.Pitches...)
		sort.Float64s(pitches)
		writeByte(byte(len(pitches)))
		for _, hz := range pitches {
			writeF64(quantize6(hz))
		}
	}

	writeF64(quantizeMillis(e.Duration))
	writeF64(sampleRate)

	return Key(h.Sum64())
}

func writeEnvelope(writeF64 func(float64), p envelope.Params) {
	writeF64(quantize6(p.Attack))
	writeF64(quantize6(p.Decay))
	writeF64(quantize6(p.Sustain))
	writeF64(quantize6(p.Release))
}
