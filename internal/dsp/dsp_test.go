package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqrew/tunes-sub004/internal/score"
)

const testSR = 48000.0

func TestNewFilterLowpassAttenuatesHighFreq(t *testing.T) {
	spec := score.Effect{
		Kind:       score.EffectFilter,
		FilterMode: score.FilterLP,
		CutoffHz:   score.Const(500),
		Resonance:  score.Const(0.1),
	}
	e, err := New(spec, testSR, nil)
	require.NoError(t, err)

	var sumLow, sumHigh float64
	for i := 0; i < 4000; i++ {
		tSec := float64(i) / testSR
		lowIn := float32(math.Sin(2 * math.Pi * 100 * tSec))
		lowOut, _ := e.Process(lowIn, lowIn, tSec)
		sumLow += math.Abs(float64(lowOut))
	}
	e2, _ := New(spec, testSR, nil)
	for i := 0; i < 4000; i++ {
		tSec := float64(i) / testSR
		highIn := float32(math.Sin(2 * math.Pi * 8000 * tSec))
		highOut, _ := e2.Process(highIn, highIn, tSec)
		sumHigh += math.Abs(float64(highOut))
	}
	assert.Greater(t, sumLow, sumHigh)
}

func TestBypassIsPassthrough(t *testing.T) {
	spec := score.Effect{Kind: score.EffectFilter, Bypass: true}
	e, err := New(spec, testSR, nil)
	require.NoError(t, err)
	l, r := e.Process(0.5, -0.25, 0)
	assert.Equal(t, float32(0.5), l)
	assert.Equal(t, float32(-0.25), r)
}

func TestDelayEffectEchoesAfterDelay(t *testing.T) {
	spec := score.Effect{
		Kind:            score.EffectDelay,
		MaxDelaySeconds: 1,
		DelaySeconds:    score.Const(0.01),
		Feedback:        score.Const(0),
		WetDry:          score.Const(1),
	}
	e, err := New(spec, testSR, nil)
	require.NoError(t, err)

	delaySamples := int(0.01 * testSR)
	impulseOut := make([]float32, delaySamples+2)
	impulseOut[0], _ = e.Process(1, 1, 0)
	for i := 1; i < len(impulseOut); i++ {
		impulseOut[i], _ = e.Process(0, 0, float64(i)/testSR)
	}
	assert.InDelta(t, 1.0, impulseOut[delaySamples], 0.01)
}

func TestFreeverbDecaysTowardSilence(t *testing.T) {
	spec := score.Effect{
		Kind:     score.EffectReverb,
		RoomSize: score.Const(0.5),
		Damping:  score.Const(0.5),
		WetDry:   score.Const(1),
	}
	e, err := New(spec, testSR, nil)
	require.NoError(t, err)

	l, _ := e.Process(1, 1, 0)
	// The first wet output arrives after the shortest comb delay (about
	// 1200 samples at 48 kHz), not on the impulse sample itself.
	heard := false
	for i := 1; i < int(testSR*0.1); i++ {
		l, _ = e.Process(0, 0, float64(i)/testSR)
		heard = heard || l != 0
	}
	assert.True(t, heard)
	for i := 0; i < int(testSR*2); i++ {
		l, _ = e.Process(0, 0, float64(i)/testSR)
	}
	assert.Less(t, math.Abs(float64(l)), 0.05)
}

func TestConvolutionReverbDeterministic(t *testing.T) {
	spec := score.Effect{Kind: score.EffectConvolutionReverb, ConvPreset: score.ReverbHall, WetDry: score.Const(1)}
	a, err := New(spec, testSR, nil)
	require.NoError(t, err)
	b, err := New(spec, testSR, nil)
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		tSec := float64(i) / testSR
		in := float32(0)
		if i == 0 {
			in = 1
		}
		la, ra := a.Process(in, in, tSec)
		lb, rb := b.Process(in, in, tSec)
		assert.Equal(t, la, lb)
		assert.Equal(t, ra, rb)
	}
}

func TestCompressorReducesGainAboveThreshold(t *testing.T) {
	spec := score.Effect{
		Kind:           score.EffectCompressor,
		ThresholdDB:    score.Const(-12),
		Ratio:          score.Const(4),
		Knee:           score.Const(0),
		AttackSeconds:  score.Const(0.001),
		ReleaseSeconds: score.Const(0.05),
		MakeupDB:       score.Const(0),
	}
	e, err := New(spec, testSR, nil)
	require.NoError(t, err)

	var outLevel float32
	var peak float64
	n := int(testSR * 0.2)
	for i := 0; i < n; i++ {
		tSec := float64(i) / testSR
		in := float32(math.Sin(2 * math.Pi * 200 * tSec))
		outLevel, _ = e.Process(in, in, tSec)
		_ = outLevel
		if i >= n-240 { // last full 200 Hz period
			peak = math.Max(peak, math.Abs(float64(outLevel)))
		}
	}
	assert.Less(t, math.Abs(float64(outLevel)), 1.0)
	// A 0 dBFS sine is 12 dB over threshold; at ratio 4 its peak comes
	// out several dB below unity.
	assert.Less(t, peak, 0.7)
}

func TestLimiterNeverExceedsUnity(t *testing.T) {
	spec := score.Effect{Kind: score.EffectLimiter, LookaheadSeconds: 0.005}
	e, err := New(spec, testSR, nil)
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		l, r := e.Process(3.0, -3.0, float64(i)/testSR)
		assert.LessOrEqual(t, l, float32(1.0))
		assert.GreaterOrEqual(t, r, float32(-1.0))
	}
}

func TestBitcrusherQuantizes(t *testing.T) {
	spec := score.Effect{Kind: score.EffectBitcrusher, BitDepth: score.Const(2)}
	e, err := New(spec, testSR, nil)
	require.NoError(t, err)
	l, _ := e.Process(0.5, 0.5, 0)
	levels := math.Pow(2, 2) - 1
	scaled := float64(l) * levels
	assert.InDelta(t, math.Round(scaled), scaled, 1e-5)
}

func TestGateMutesBelowThreshold(t *testing.T) {
	spec := score.Effect{Kind: score.EffectGate, GateThresholdDB: score.Const(-6)}
	e, err := New(spec, testSR, nil)
	require.NoError(t, err)
	var l float32
	for i := 0; i < 1000; i++ {
		l, _ = e.Process(0.001, 0.001, float64(i)/testSR)
	}
	assert.Equal(t, float32(0), l)
}

func TestChainAppliesInDeclaredOrder(t *testing.T) {
	specs := []score.Effect{
		{Kind: score.EffectBitcrusher, BitDepth: score.Const(1)},
		{Kind: score.EffectGate, GateThresholdDB: score.Const(-120)},
	}
	chain, err := NewChain(specs, testSR, nil)
	require.NoError(t, err)
	l, _ := chain.Process(0.5, 0.5, 0)
	assert.NotEqual(t, float32(0), l)

	// 0.6 crushed to 1 bit rounds to 1, then tanh(1); the reverse order
	// would give round(tanh(0.6)) = 1.
	ordered, err := NewChain([]score.Effect{
		{Kind: score.EffectBitcrusher, BitDepth: score.Const(1)},
		{Kind: score.EffectDistortion, Drive: score.Const(1)},
	}, testSR, nil)
	require.NoError(t, err)
	l, _ = ordered.Process(0.6, 0.6, 0)
	assert.InDelta(t, math.Tanh(1), float64(l), 1e-6)
}
