package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqrew/tunes-sub004/internal/envelope"
	"github.com/sqrew/tunes-sub004/internal/score"
)

func simpleComposition() *score.Frozen {
	comp := score.Composition{
		SampleRate: 48000,
		Tracks: []score.Track{
			{ID: 1, Volume: 1, Events: []score.Event{{
				Kind:     score.NoteEvent,
				Start:    0,
				Duration: 0.05,
				Pitches:  []float64{440},
				Waveform: score.WaveSine,
				Envelope: envelope.Params{Attack: 0.005, Decay: 0.005, Sustain: 0.8, Release: 0.02},
				Synth:    score.DefaultSubtractive(),
				Velocity: 1,
			}}},
		},
	}
	frozen, err := score.Freeze(comp)
	if err != nil {
		panic(err)
	}
	return frozen
}

func TestPlayMixerProducesAudioThroughPull(t *testing.T) {
	reg := NewRegistry(48000, 256)
	id, err := reg.PlayMixer(simpleComposition())
	require.NoError(t, err)
	assert.True(t, reg.IsPlaying(id))

	out := make([]float32, 512)
	var anyNonZero bool
	for i := 0; i < 10; i++ {
		reg.Pull(out)
		for _, v := range out {
			if v != 0 {
				anyNonZero = true
			}
		}
	}
	assert.True(t, anyNonZero)
}

func TestSetVolumeOnUnknownSoundReturnsFalse(t *testing.T) {
	reg := NewRegistry(48000, 256)
	assert.False(t, reg.SetVolume(SoundId(999), 0.5))
	assert.False(t, reg.IsPlaying(SoundId(999)))
}

func TestStopRetiresSoundEventually(t *testing.T) {
	reg := NewRegistry(48000, 256)
	id, err := reg.PlayMixer(simpleComposition())
	require.NoError(t, err)

	assert.True(t, reg.Stop(id))
	assert.False(t, reg.IsPlaying(id))

	out := make([]float32, 512)
	for i := 0; i < 5; i++ {
		reg.Pull(out)
	}
	assert.False(t, reg.SetVolume(id, 1), "stopped sound should no longer accept control operations")
}

func TestPauseStopsAdvancementUntilResume(t *testing.T) {
	reg := NewRegistry(48000, 256)
	id, err := reg.PlayMixer(simpleComposition())
	require.NoError(t, err)

	require.True(t, reg.Pause(id))
	out := make([]float32, 512)
	reg.Pull(out)
	for _, v := range out {
		assert.Equal(t, float32(0), v)
	}

	require.True(t, reg.Resume(id))
	var anyNonZero bool
	for i := 0; i < 5; i++ {
		reg.Pull(out)
		for _, v := range out {
			if v != 0 {
				anyNonZero = true
			}
		}
	}
	assert.True(t, anyNonZero)
}

func TestFadeOutRampsVolumeToZero(t *testing.T) {
	reg := NewRegistry(48000, 256)
	id, err := reg.PlayMixer(simpleComposition())
	require.NoError(t, err)

	require.True(t, reg.FadeOut(id, 0.02, 0))
	slot, ok := reg.get(id)
	require.True(t, ok)

	out := make([]float32, 512)
	for i := 0; i < 4; i++ {
		reg.Pull(out)
	}
	assert.InDelta(t, 0, slot.ctrl.Volume(), 0.05)
}

func TestTweenPanMovesTowardTarget(t *testing.T) {
	reg := NewRegistry(48000, 256)
	id, err := reg.PlayMixer(simpleComposition())
	require.NoError(t, err)

	require.True(t, reg.TweenPan(id, 1, 0.01))
	slot, _ := reg.get(id)
	out := make([]float32, 512)
	for i := 0; i < 3; i++ {
		reg.Pull(out)
	}
	assert.InDelta(t, 1, slot.ctrl.Pan(), 0.05)
}

func TestPlaySampleFiresOnceAndRetires(t *testing.T) {
	reg := NewRegistry(48000, 256)
	s := &score.Sample{Channels: 1, SampleRate: 48000, Frames: make([]float32, 64)}
	for i := range s.Frames {
		s.Frames[i] = 0.5
	}
	id := reg.PlaySample(s)
	assert.True(t, reg.IsPlaying(id))

	out := make([]float32, 512)
	for i := 0; i < 5; i++ {
		reg.Pull(out)
	}
	_, stillPresent := reg.get(id)
	assert.False(t, stillPresent)
}
