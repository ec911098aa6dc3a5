// Package voice implements the per-event mono sample streams of spec
// §4.3 (component C3): subtractive, FM, additive, drum, sample, and
// noise voices, each produced deterministically from its parameters
// and the synthesis fingerprint (spec §4.8).
package voice

// Voice is the running state of one active event (spec §3's
// VoiceState, specialized per synthesis kind). Render ADDS this
// voice's contribution into out — it never overwrites — and reports
// whether the voice has finished (envelope released, sample
// exhausted, or drum's natural end reached).
//
// Implementations are exhaustive tagged behavior, not a deep
// interface hierarchy: the render package picks the concrete type
// once at spawn time via a type switch on the originating
// score.Event's Kind, per the "match on a small tag" design note in
// spec §9.
type Voice interface {
	// Render adds one block's worth of samples starting
	// blockStartSample samples after the voice's own start into out.
	// Returns true once nothing more will ever be produced.
	Render(out []float32, blockStartSample int64, sampleRate float64) (done bool)
}
