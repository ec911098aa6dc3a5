package envelope

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevel_AttackRampsZeroToOne(t *testing.T) {
	p := Params{Attack: 0.1, Decay: 0.1, Sustain: 0.5, Release: 0.1}
	require.InDelta(t, 0.0, p.Level(0, 1.0), 1e-6)
	require.InDelta(t, 0.5, p.Level(0.05, 1.0), 1e-6)
	require.InDelta(t, 1.0, p.Level(0.1, 1.0), 1e-6)
}

func TestLevel_DecayRampsToSustain(t *testing.T) {
	p := Params{Attack: 0.1, Decay: 0.1, Sustain: 0.4, Release: 0.1}
	require.InDelta(t, 0.7, p.Level(0.15, 1.0), 1e-6)
	require.InDelta(t, 0.4, p.Level(0.2, 1.0), 1e-6)
}

func TestLevel_SustainHoldsUntilNoteEnds(t *testing.T) {
	p := Params{Attack: 0.01, Decay: 0.01, Sustain: 0.6, Release: 0.1}
	if got := p.Level(0.5, 1.0); got != 0.6 {
		t.Fatalf("sustain level = %v, want 0.6", got)
	}
}

func TestLevel_ReleaseRampsToZero(t *testing.T) {
	p := Params{Attack: 0.01, Decay: 0.01, Sustain: 0.6, Release: 0.2}
	require.InDelta(t, 0.6, p.Level(1.0, 1.0), 1e-6)
	require.InDelta(t, 0.3, p.Level(1.1, 1.0), 1e-6)
	require.InDelta(t, 0.0, p.Level(1.2, 1.0), 1e-6)
}

func TestFinished(t *testing.T) {
	p := Params{Attack: 0.01, Decay: 0.01, Sustain: 0.6, Release: 0.2}
	require.False(t, p.Finished(1.1, 1.0))
	require.True(t, p.Finished(1.2, 1.0))
}

func TestClamp_EnforcesMinimumSegmentsAndSustainRange(t *testing.T) {
	p := Params{Attack: 0, Decay: -1, Sustain: 1.5, Release: 0}
	c := p.Clamp()
	require.GreaterOrEqual(t, c.Attack, 0.001)
	require.GreaterOrEqual(t, c.Decay, 0.001)
	require.GreaterOrEqual(t, c.Release, 0.001)
	require.Equal(t, 1.0, c.Sustain)
}

func TestDuration_IsNoteDurationPlusRelease(t *testing.T) {
	p := Params{Attack: 0.01, Decay: 0.01, Sustain: 0.5, Release: 0.3}
	require.InDelta(t, 1.3, p.Duration(1.0), 1e-9)
}

func TestLevel_ZeroDurationNoteStillReleases(t *testing.T) {
	p := Params{Attack: 0.01, Decay: 0.01, Sustain: 0.5, Release: 0.1}
	// A zero-duration note (spec §8 boundary behavior) skips straight
	// to release; it must not panic and must reach silence.
	require.True(t, p.Level(0, 0) >= 0)
	require.True(t, p.Finished(0.1, 0))
}
