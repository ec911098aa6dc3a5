package control

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/sqrew/tunes-sub004/internal/render"
	"github.com/sqrew/tunes-sub004/internal/score"
	"github.com/sqrew/tunes-sub004/internal/voice"
)

// playbackSource is the thing a soundSlot pulls audio from: either a
// whole frozen composition rendered block by block, or a single
// fire-and-forget sample voice. Both report completion the same way
// render.Session does.
type playbackSource interface {
	renderBlock(out []float32) (finished bool)
}

type mixerSource struct {
	frozen    *score.Frozen
	blockSize int
	sess      *render.Session
}

func newMixerSource(frozen *score.Frozen, blockSize int) (*mixerSource, error) {
	sess, err := render.NewSession(frozen, blockSize)
	if err != nil {
		return nil, err
	}
	return &mixerSource{frozen: frozen, blockSize: blockSize, sess: sess}, nil
}

func (m *mixerSource) renderBlock(out []float32) bool {
	done, err := m.sess.RenderBlock(out)
	if err != nil {
		return true
	}
	return done
}

func (m *mixerSource) restart() error {
	sess, err := render.NewSession(m.frozen, m.blockSize)
	if err != nil {
		return err
	}
	m.sess = sess
	return nil
}

// sampleSource plays one score.Sample once through, for the
// "play_sample" fire-and-forget convenience call (spec §4.9).
type sampleSource struct {
	v          voice.Voice
	sampleRate float64
	cursor     int64
	mono       []float32 // reused every renderBlock call
}

func newSampleSource(s *score.Sample, sampleRate float64) *sampleSource {
	e := score.Event{
		Kind:         score.SampleEvent,
		Sample:       s,
		Gain:         1,
		PlaybackRate: 1,
		Duration:     s.DurationSeconds(),
	}
	return &sampleSource{v: voice.NewSampleVoice(e), sampleRate: sampleRate}
}

func (ss *sampleSource) renderBlock(out []float32) bool {
	n := len(out) / 2
	if len(ss.mono) != n {
		ss.mono = make([]float32, n)
	}
	done := ss.v.Render(ss.mono, ss.cursor, ss.sampleRate)
	ss.cursor += int64(n)
	for i := 0; i < n; i++ {
		out[2*i] = ss.mono[i]
		out[2*i+1] = ss.mono[i]
	}
	return done
}

// soundSlot is one registry entry: a playback source plus the
// controller exposing it to other threads, and the looping flag
// play_looping installs.
type soundSlot struct {
	ctrl    *VoiceController
	src     playbackSource
	looping bool
	mixer   *mixerSource // non-nil only when src came from play_looping on a mixer
}

// Registry is the realtime control surface of spec §4.9: the
// SoundId -> VoiceController map, guarded by a reader-writer lock so
// lookups from arbitrary control-calling threads never contend with
// each other, while the single audio callback thread drains it once
// per block via Pull.
type Registry struct {
	mu         sync.RWMutex
	sounds     map[SoundId]*soundSlot
	nextID     atomic.Uint64
	sampleRate float64
	blockSize  int
	scratch    []float32 // reused every Pull call, never reallocated
}

// NewRegistry builds an empty registry for a fixed render sample rate
// and block size (every Pull call must receive a buffer of exactly
// 2*blockSize float32s, matching render.Session's contract).
func NewRegistry(sampleRate float64, blockSize int) *Registry {
	return &Registry{
		sounds:     make(map[SoundId]*soundSlot),
		sampleRate: sampleRate,
		blockSize:  blockSize,
		scratch:    make([]float32, 2*blockSize),
	}
}

func (r *Registry) allocate(src playbackSource, looping bool, mixer *mixerSource) SoundId {
	id := SoundId(r.nextID.Add(1))
	slot := &soundSlot{ctrl: newVoiceController(), src: src, looping: looping, mixer: mixer}
	r.mu.Lock()
	r.sounds[id] = slot
	r.mu.Unlock()
	return id
}

// PlayMixer begins realtime playback of a frozen composition and
// returns its SoundId.
func (r *Registry) PlayMixer(frozen *score.Frozen) (SoundId, error) {
	src, err := newMixerSource(frozen, r.blockSize)
	if err != nil {
		return 0, err
	}
	return r.allocate(src, false, nil), nil
}

// PlayLooping begins realtime playback of a frozen composition that
// restarts from the beginning each time it finishes.
func (r *Registry) PlayLooping(frozen *score.Frozen) (SoundId, error) {
	src, err := newMixerSource(frozen, r.blockSize)
	if err != nil {
		return 0, err
	}
	return r.allocate(src, true, src), nil
}

// PlaySample is the fire-and-forget convenience call: plays a
// pre-decoded sample once and retires.
func (r *Registry) PlaySample(s *score.Sample) SoundId {
	src := newSampleSource(s, r.sampleRate)
	return r.allocate(src, false, nil)
}

func (r *Registry) get(id SoundId) (*soundSlot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	slot, ok := r.sounds[id]
	return slot, ok
}

// SetVolume sets id's target volume directly (no tween), per spec
// §4.9. Returns false (spec's NotFound outcome) if id is unknown or
// already finished.
func (r *Registry) SetVolume(id SoundId, v float64) bool {
	slot, ok := r.liveSlot(id)
	if !ok {
		return false
	}
	slot.ctrl.setVolume(v)
	return true
}

// SetPan sets id's target pan directly.
func (r *Registry) SetPan(id SoundId, p float64) bool {
	slot, ok := r.liveSlot(id)
	if !ok {
		return false
	}
	slot.ctrl.setPan(p)
	return true
}

// SetPlaybackRate sets id's target playback rate directly.
func (r *Registry) SetPlaybackRate(id SoundId, rate float64) bool {
	slot, ok := r.liveSlot(id)
	if !ok {
		return false
	}
	slot.ctrl.setRate(rate)
	return true
}

// FadeIn installs a tween over secs that ramps from the controller's
// present volume to target (spec §4.9's fade_in/out).
func (r *Registry) FadeIn(id SoundId, secs, target float64) bool {
	return r.tweenVolume(id, target, secs)
}

// FadeOut installs a tween down to target (typically 0) over secs.
func (r *Registry) FadeOut(id SoundId, secs, target float64) bool {
	return r.tweenVolume(id, target, secs)
}

func (r *Registry) tweenVolume(id SoundId, target, secs float64) bool {
	slot, ok := r.liveSlot(id)
	if !ok {
		return false
	}
	slot.ctrl.volumeTween.start(slot.ctrl.Volume(), target, secs)
	return true
}

// TweenPan installs a linear pan tween to target over secs.
func (r *Registry) TweenPan(id SoundId, target, secs float64) bool {
	slot, ok := r.liveSlot(id)
	if !ok {
		return false
	}
	slot.ctrl.panTween.start(slot.ctrl.Pan(), target, secs)
	return true
}

// TweenPlaybackRate installs a linear playback-rate tween to target
// over secs.
func (r *Registry) TweenPlaybackRate(id SoundId, target, secs float64) bool {
	slot, ok := r.liveSlot(id)
	if !ok {
		return false
	}
	slot.ctrl.rateTween.start(slot.ctrl.PlaybackRate(), target, secs)
	return true
}

// Pause stops a sound from advancing without retiring it.
func (r *Registry) Pause(id SoundId) bool {
	slot, ok := r.liveSlot(id)
	if !ok {
		return false
	}
	slot.ctrl.paused.Store(true)
	return true
}

// Resume un-pauses a sound.
func (r *Registry) Resume(id SoundId) bool {
	slot, ok := r.liveSlot(id)
	if !ok {
		return false
	}
	slot.ctrl.paused.Store(false)
	return true
}

// Stop triggers an immediate fade-out over one block (spec §5's
// "cancellation and timeouts": "≈5-50ms" to avoid clicks) then
// retires the voice. The fade is implemented as a volume tween to
// zero lasting one block's worth of time; the next Pull call ramps the
// sound's gain to zero across that block and then removes the slot.
func (r *Registry) Stop(id SoundId) bool {
	slot, ok := r.liveSlot(id)
	if !ok {
		return false
	}
	blockSeconds := float64(r.blockSize) / r.sampleRate
	slot.ctrl.volumeTween.start(slot.ctrl.Volume(), 0, blockSeconds)
	slot.ctrl.finished.Store(true)
	return true
}

// IsPlaying reports whether id names a live, unpaused, unfinished
// sound.
func (r *Registry) IsPlaying(id SoundId) bool {
	slot, ok := r.get(id)
	if !ok {
		return false
	}
	return slot.ctrl.IsPlaying()
}

func (r *Registry) liveSlot(id SoundId) (*soundSlot, bool) {
	slot, ok := r.get(id)
	if !ok || slot.ctrl.finished.Load() {
		return nil, false
	}
	return slot, true
}

// Pull runs on the single audio callback thread: it advances every
// active sound's tweens, renders and mixes every unpaused sound's
// next block into out (interleaved stereo, 2*blockSize samples),
// retires finished non-looping sounds and stopped ones, and restarts
// finished looping ones. Each sound's gain ramps linearly across the
// block from its previous volume to the volume its tween gives for
// this block. Pull holds r.mu for the whole block, so it waits while
// a control call holds the registry lock.
func (r *Registry) Pull(out []float32) {
	for i := range out {
		out[i] = 0
	}
	dt := float64(r.blockSize) / r.sampleRate

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, slot := range r.sounds {
		prevVol := float32(slot.ctrl.Volume())
		slot.ctrl.advance(dt)
		// A sound ended by Stop leaves once its fade-out tween is done.
		stopped := slot.ctrl.finished.Load() && !slot.ctrl.volumeTween.active.Load()
		if slot.ctrl.paused.Load() {
			if stopped {
				delete(r.sounds, id)
			}
			continue
		}

		finished := slot.src.renderBlock(r.scratch) || stopped
		vol := float32(slot.ctrl.Volume())
		pan := slot.ctrl.Pan()
		gainL, gainR := constantPowerPan(pan)
		for i := 0; i < r.blockSize; i++ {
			g := prevVol + (vol-prevVol)*float32(i+1)/float32(r.blockSize)
			out[2*i] += r.scratch[2*i] * g * float32(gainL)
			out[2*i+1] += r.scratch[2*i+1] * g * float32(gainR)
		}

		if finished {
			if slot.looping && slot.mixer != nil && !slot.ctrl.finished.Load() {
				slot.mixer.restart()
				continue
			}
			delete(r.sounds, id)
		}
	}
}

func constantPowerPan(pan float64) (l, r float64) {
	theta := (pan + 1) * (math.Pi / 4)
	return math.Cos(theta), math.Sin(theta)
}
