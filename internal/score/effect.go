package score

import "math"

// EffectKind tags the Effect union of spec §4.4. Each instance
// carries its own declarative parameters here; the corresponding
// mutable per-sample DSP state lives only in the render-time
// internal/dsp package ("this state is created at render start and
// discarded at render end", spec §3).
type EffectKind uint8

const (
	EffectFilter EffectKind = iota
	EffectParametricEQ
	EffectDelay
	EffectReverb
	EffectConvolutionReverb
	EffectChorus
	EffectFlanger
	EffectPhaser
	EffectCompressor
	EffectLimiter
	EffectDistortion
	EffectSaturation
	EffectBitcrusher
	EffectRingMod
	EffectTremolo
	EffectAutopan
	EffectGate
)

type FilterMode uint8

const (
	FilterLP FilterMode = iota
	FilterHP
	FilterBP
	FilterNotch
	FilterAllPass
)

type ReverbPreset uint8

const (
	ReverbSmallRoom ReverbPreset = iota
	ReverbHall
	ReverbCathedral
	ReverbPlate
	ReverbSpring
)

// EQBand is one peaking band of a ParametricEQ effect.
type EQBand struct {
	FrequencyHz float64
	GainDB      float64
	Q           float64
	Bypassed    bool
}

// Effect is the declarative, user-ordered configuration for one DSP
// block in a chain (spec §4.4). Order within a chain is significant
// and user-declared; effects flow head-to-tail.
type Effect struct {
	Kind EffectKind

	Bypass bool

	// Filter
	FilterMode     FilterMode
	CutoffHz       Automatable
	Resonance      Automatable
	Cascaded       bool // true = 24dB/oct (two cascaded biquads)

	// ParametricEQ
	Bands []EQBand

	// Delay
	MaxDelaySeconds float64
	DelaySeconds    Automatable
	Feedback        Automatable
	WetDry          Automatable

	// Reverb (Freeverb-style)
	RoomSize Automatable
	Damping  Automatable

	// ConvolutionReverb
	ConvPreset ReverbPreset

	// Chorus / Flanger / Phaser
	RateHz    Automatable
	DepthMs   Automatable
	ModFeedback Automatable
	Stages    int // phaser allpass stage count, 4-8

	// Compressor / multiband compressor
	ThresholdDB   Automatable
	Ratio         Automatable
	Knee          Automatable
	AttackSeconds Automatable
	ReleaseSeconds Automatable
	MakeupDB      Automatable
	UseRMS        bool
	SidechainFrom *SidechainSource
	Bands3        int // >1 = multiband crossover count

	// Limiter
	LookaheadSeconds float64

	// Distortion / Saturation / Bitcrusher / RingMod / Tremolo / Autopan / Gate
	Drive      Automatable
	BitDepth   Automatable
	RingFreqHz Automatable
	GateThresholdDB Automatable
}

// SidechainSource names a Bus or Track whose pre-fader sum drives a
// compressor's envelope follower (spec §3, §4.6).
type SidechainSource struct {
	Bus   *BusID
	Track *TrackID
}

// AutomationCurveKind selects the interpolation between breakpoints.
type AutomationCurveKind uint8

const (
	CurveLinear AutomationCurveKind = iota
	CurveSmooth                     // cosine
)

// Breakpoint is one (time, value) automation point.
type Breakpoint struct {
	TimeSeconds float64
	Value       float64
}

// AutomationCurve is an ordered list of breakpoints sampled at render
// time in place of a static parameter (spec §4.4).
type AutomationCurve struct {
	Curve       AutomationCurveKind
	Breakpoints []Breakpoint // sorted by TimeSeconds
}

// Automatable is either a fixed value or an AutomationCurve. A nil
// Curve means the value is constant.
type Automatable struct {
	Value float64
	Curve *AutomationCurve
}

// Const wraps a constant value as an Automatable.
func Const(v float64) Automatable { return Automatable{Value: v} }

// Sample evaluates the automatable at time t seconds, falling back to
// the constant Value when no curve is attached.
func (a Automatable) Sample(t float64) float64 {
	if a.Curve == nil || len(a.Curve.Breakpoints) == 0 {
		return a.Value
	}
	return a.Curve.sample(t)
}

func (c *AutomationCurve) sample(t float64) float64 {
	bps := c.Breakpoints
	if t <= bps[0].TimeSeconds {
		return bps[0].Value
	}
	last := bps[len(bps)-1]
	if t >= last.TimeSeconds {
		return last.Value
	}
	for i := 1; i < len(bps); i++ {
		if t <= bps[i].TimeSeconds {
			prev := bps[i-1]
			span := bps[i].TimeSeconds - prev.TimeSeconds
			if span <= 0 {
				return bps[i].Value
			}
			frac := (t - prev.TimeSeconds) / span
			if c.Curve == CurveSmooth {
				frac = (1 - math.Cos(frac*math.Pi)) / 2
			}
			return prev.Value + frac*(bps[i].Value-prev.Value)
		}
	}
	return last.Value
}
