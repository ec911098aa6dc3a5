package envelope

// Presets are constant construction shortcuts named by spec §4.2.
var (
	Pluck = Params{Attack: 0.001, Decay: 0.08, Sustain: 0.0, Release: 0.05}
	Piano = Params{Attack: 0.003, Decay: 0.3, Sustain: 0.2, Release: 0.4}
	Pad   = Params{Attack: 0.6, Decay: 0.4, Sustain: 0.8, Release: 1.2}
	Organ = Params{Attack: 0.01, Decay: 0.01, Sustain: 1.0, Release: 0.02}
)
