// Package control implements the realtime control surface of spec
// §4.9 (component C9): thread-safe handles over live voices, callable
// from any thread, read and advanced once per block by the single
// audio callback thread.
package control

import (
	"math"
	"sync/atomic"
)

// SoundId names one live playback handle, returned by PlayMixer,
// PlayLooping, or PlaySample.
type SoundId uint64

// tween is a linear ramp of one parameter from its value at
// installation time to Target over Seconds, advanced by the callback
// thread each block. A tween whose active flag is false (the zero
// value) is a no-op.
type tween struct {
	active   atomic.Bool
	from     atomic.Uint64 // math.Float64bits
	target   atomic.Uint64
	elapsed  atomic.Uint64 // math.Float64bits, seconds
	duration atomic.Uint64 // math.Float64bits, seconds
}

func (tw *tween) start(from, target, duration float64) {
	if duration <= 0 {
		return
	}
	tw.from.Store(math.Float64bits(from))
	tw.target.Store(math.Float64bits(target))
	tw.elapsed.Store(math.Float64bits(0))
	tw.duration.Store(math.Float64bits(duration))
	tw.active.Store(true)
}

// advance moves the tween forward by dt seconds and returns the
// parameter's effective value for this block. When the tween
// completes, it clears itself and returns target.
func (tw *tween) advance(dt float64) (value float64, stillActive bool) {
	if !tw.active.Load() {
		return 0, false
	}
	from := math.Float64frombits(tw.from.Load())
	target := math.Float64frombits(tw.target.Load())
	dur := math.Float64frombits(tw.duration.Load())
	elapsed := math.Float64frombits(tw.elapsed.Load()) + dt

	if elapsed >= dur {
		tw.active.Store(false)
		return target, false
	}
	tw.elapsed.Store(math.Float64bits(elapsed))
	frac := elapsed / dur
	return from + (target-from)*frac, true
}

// VoiceController is one registry entry: the atomic parameter set
// spec §4.9 requires ("store atomic volume, pan, playback_rate,
// finished flags; plus a tween slot per parameter"). Reads and writes
// from any thread are lock-free.
type VoiceController struct {
	volume       atomic.Uint64 // math.Float64bits
	pan          atomic.Uint64
	playbackRate atomic.Uint64
	paused       atomic.Bool
	finished     atomic.Bool
	looping      atomic.Bool

	volumeTween tween
	panTween    tween
	rateTween   tween
}

func newVoiceController() *VoiceController {
	vc := &VoiceController{}
	vc.volume.Store(math.Float64bits(1))
	vc.pan.Store(math.Float64bits(0))
	vc.playbackRate.Store(math.Float64bits(1))
	return vc
}

// Volume returns the current effective volume (post-tween).
func (vc *VoiceController) Volume() float64 { return math.Float64frombits(vc.volume.Load()) }

// Pan returns the current effective pan in [-1, 1].
func (vc *VoiceController) Pan() float64 { return math.Float64frombits(vc.pan.Load()) }

// PlaybackRate returns the current effective playback rate multiplier.
func (vc *VoiceController) PlaybackRate() float64 {
	return math.Float64frombits(vc.playbackRate.Load())
}

// IsPlaying reports whether the voice is neither paused nor finished.
func (vc *VoiceController) IsPlaying() bool {
	return !vc.finished.Load() && !vc.paused.Load()
}

func (vc *VoiceController) setVolume(v float64) { vc.volume.Store(math.Float64bits(v)) }
func (vc *VoiceController) setPan(v float64)    { vc.pan.Store(math.Float64bits(clampPan(v))) }
func (vc *VoiceController) setRate(v float64)   { vc.playbackRate.Store(math.Float64bits(v)) }

// advance runs once per block on the audio callback thread: it steps
// every active tween by dt seconds and writes the resulting value
// back into the plain atomic parameter, per spec §4.9's "Tween
// evaluation".
func (vc *VoiceController) advance(dt float64) {
	if vc.volumeTween.active.Load() {
		v, _ := vc.volumeTween.advance(dt)
		vc.setVolume(v)
	}
	if vc.panTween.active.Load() {
		v, _ := vc.panTween.advance(dt)
		vc.setPan(v)
	}
	if vc.rateTween.active.Load() {
		v, _ := vc.rateTween.advance(dt)
		vc.setRate(v)
	}
}

func clampPan(p float64) float64 {
	if p < -1 {
		return -1
	}
	if p > 1 {
		return 1
	}
	return p
}
