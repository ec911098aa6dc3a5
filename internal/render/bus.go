package render

import (
	"github.com/sqrew/tunes-sub004/internal/dsp"
	"github.com/sqrew/tunes-sub004/internal/score"
)

// busState is the running state of one score.Bus: its own effect
// chain plus the pre-effect stereo sum buffer exposed to any
// sidechain consumer (spec §4.6).
type busState struct {
	bus         *score.Bus
	effectChain *dsp.Chain

	preFXL, preFXR []float32
	outL, outR     []float32
}

func newBusState(b *score.Bus, sampleRate float64, blockSize int, sidechainFor func(score.Effect) dsp.SidechainReader) (*busState, error) {
	chain, err := dsp.NewChain(b.Effects, sampleRate, sidechainFor)
	if err != nil {
		return nil, err
	}
	return &busState{
		bus:         b,
		effectChain: chain,
		preFXL:      make([]float32, blockSize),
		preFXR:      make([]float32, blockSize),
		outL:        make([]float32, blockSize),
		outR:        make([]float32, blockSize),
	}, nil
}

// render sums bs's Children — track buffers and already-rendered
// child-bus buffers, per the topological order guarantee in
// score.Frozen.RenderOrder — then applies bs's own effect chain.
func (bs *busState) render(n int, sampleRate float64, cursor int64, sampleIdx *int, trackOut func(score.TrackID) (l, r []float32), busOut func(score.BusID) (l, r []float32)) {
	for i := 0; i < n; i++ {
		bs.preFXL[i] = 0
		bs.preFXR[i] = 0
	}
	for _, ch := range bs.bus.Children {
		switch {
		case ch.Track != nil:
			l, r := trackOut(*ch.Track)
			for i := 0; i < n; i++ {
				bs.preFXL[i] += l[i]
				bs.preFXR[i] += r[i]
			}
		case ch.Bus != nil:
			l, r := busOut(*ch.Bus)
			for i := 0; i < n; i++ {
				bs.preFXL[i] += l[i]
				bs.preFXR[i] += r[i]
			}
		}
	}

	for i := 0; i < n; i++ {
		*sampleIdx = i
		tSec := float64(cursor+int64(i)) / sampleRate
		l, r := bs.preFXL[i], bs.preFXR[i]
		if bs.effectChain != nil {
			l, r = bs.effectChain.Process(l, r, tSec)
		}
		bs.outL[i] = l
		bs.outR[i] = r
	}
}
