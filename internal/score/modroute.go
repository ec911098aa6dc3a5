package score

// ModTarget names the per-sample parameter an LFO modulation route
// drives, per spec §4.5 step 4. Pitch is applied inside voices; the
// rest are applied by the track/bus mixer.
type ModTarget uint8

const (
	ModFilterCutoff ModTarget = iota
	ModVolume
	ModPitch
	ModPan
)

// LFOShape selects the modulation waveform, modeled (per original_source's
// src/lfo.rs and spec §9's "Tweening and LFOs" design note) as a pure
// function of time rather than a stateful callback.
type LFOShape uint8

const (
	LFOSine LFOShape = iota
	LFOTriangle
	LFOSquare
	LFOSawtooth
)

// LFOParams parameterizes an LFO pure function.
type LFOParams struct {
	Shape  LFOShape
	RateHz float64
	Depth  float64 // bipolar modulation depth, applied per ModTarget's own scale
}

// ModRoute pairs an LFO with the parameter it drives on a Track.
type ModRoute struct {
	LFO    LFOParams
	Target ModTarget
}
