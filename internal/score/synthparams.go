package score

import "github.com/sqrew/tunes-sub004/internal/envelope"

// SynthKind tags the SynthParams union (spec §3). Exhaustive switches
// over Kind drive voice spawning (§4.3) — a match on a small tag
// rather than virtual dispatch, per the design notes in §9.
type SynthKind uint8

const (
	Subtractive SynthKind = iota
	FM
	Additive
	Wavetable
)

// Partial is one additive-synthesis overtone: frequency ratio to the
// note's fundamental, amplitude, and phase offset in [0,1).
type Partial struct {
	Ratio     float64
	Amplitude float64
	Phase     float64
}

// SynthParams is the tagged union of per-Note synthesis recipes
// (spec §3). Only the fields relevant to Kind are meaningful.
type SynthParams struct {
	Kind SynthKind

	// Subtractive
	FilterEnv *envelope.Params // optional filter-cutoff envelope

	// FM
	CarrierRatio      float64
	ModulatorRatio    float64
	ModulationIndex   float64
	ModEnv            *envelope.Params

	// Additive
	Partials []Partial

	// Wavetable
	TableRef string
}

// DefaultSubtractive is the zero-config Subtractive recipe.
func DefaultSubtractive() SynthParams {
	return SynthParams{Kind: Subtractive}
}
