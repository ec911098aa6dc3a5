// Package render implements the block-based mixer and scheduler of
// spec §4.5-§4.7 (components C5 Track, C6 Bus, C7 Scheduler/Mixer):
// spawning voices as their events come due, summing tracks into buses
// along the topological order score.Freeze computes, and soft-clipping
// the master bus into interleaved stereo output.
package render

import (
	"fmt"
	"math"

	"github.com/sqrew/tunes-sub004/internal/dsp"
	"github.com/sqrew/tunes-sub004/internal/score"
)

// Session is the renderer's live state for one score.Frozen
// composition: everything here is created at render start and
// discarded at render end (spec §3), mirroring the dsp package's own
// per-render-session Effect state.
type Session struct {
	frozen     *score.Frozen
	sampleRate float64
	blockSize  int
	cursor     int64
	sampleIdx  int

	tracks    map[score.TrackID]*trackState
	buses     map[score.BusID]*busState
	masterBus *busState
}

// NewSession builds a fresh render session for frozen, with a fixed
// block size (every call to RenderBlock must pass a buffer of exactly
// 2*blockSize float32s, interleaved stereo).
func NewSession(frozen *score.Frozen, blockSize int) (*Session, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("render: blockSize must be positive")
	}
	s := &Session{
		frozen:     frozen,
		sampleRate: float64(frozen.Composition.SampleRate),
		blockSize:  blockSize,
		tracks:     make(map[score.TrackID]*trackState, len(frozen.Composition.Tracks)),
		buses:      make(map[score.BusID]*busState, len(frozen.Composition.Buses)),
	}

	for i := range frozen.Composition.Tracks {
		t := &frozen.Composition.Tracks[i]
		ts, err := newTrackState(t, s.sampleRate, blockSize, s.sidechainReaderFor)
		if err != nil {
			return nil, fmt.Errorf("render: track %d: %w", t.ID, err)
		}
		s.tracks[t.ID] = ts
	}

	busIsChild := make(map[score.BusID]bool, len(frozen.Composition.Buses))
	for i := range frozen.Composition.Buses {
		b := &frozen.Composition.Buses[i]
		bs, err := newBusState(b, s.sampleRate, blockSize, s.sidechainReaderFor)
		if err != nil {
			return nil, fmt.Errorf("render: bus %d: %w", b.ID, err)
		}
		s.buses[b.ID] = bs
		for _, ch := range b.Children {
			if ch.Bus != nil {
				busIsChild[*ch.Bus] = true
			}
		}
	}

	// The master bus has no explicit score.Bus entry (spec §3
	// reserves MasterBus's ID); its children are every track with no
	// declared Parent plus every root (un-parented) bus.
	var masterChildren []score.BusOrTrackRef
	for i := range frozen.Composition.Tracks {
		t := &frozen.Composition.Tracks[i]
		if t.Parent == nil || *t.Parent == score.MasterBus {
			id := t.ID
			masterChildren = append(masterChildren, score.BusOrTrackRef{Track: &id})
		}
	}
	for i := range frozen.Composition.Buses {
		b := &frozen.Composition.Buses[i]
		if !busIsChild[b.ID] {
			id := b.ID
			masterChildren = append(masterChildren, score.BusOrTrackRef{Bus: &id})
		}
	}
	s.masterBus = &busState{
		bus:    &score.Bus{ID: score.MasterBus, Children: masterChildren},
		preFXL: make([]float32, blockSize),
		preFXR: make([]float32, blockSize),
		outL:   make([]float32, blockSize),
		outR:   make([]float32, blockSize),
	}

	return s, nil
}

// sidechainReaderFor resolves a score.Effect's SidechainFrom to a
// dsp.SidechainReader that reads the named track/bus's pre-effect
// stereo buffer at the current block position. Bus effect chains run
// in score.Frozen.RenderOrder, which renders a sidechain source bus
// before its consumer bus, so a bus consumer reads this block's
// values. Every track effect chain runs before any bus renders, so a
// track consumer reads a bus source's values from the previous block.
func (s *Session) sidechainReaderFor(e score.Effect) dsp.SidechainReader {
	if e.SidechainFrom == nil {
		return nil
	}
	src := *e.SidechainFrom
	idx := &s.sampleIdx
	switch {
	case src.Track != nil:
		id := *src.Track
		return func() (float32, float32) {
			ts := s.tracks[id]
			return ts.preFXL[*idx], ts.preFXR[*idx]
		}
	case src.Bus != nil:
		id := *src.Bus
		return func() (float32, float32) {
			if id == score.MasterBus {
				return s.masterBus.preFXL[*idx], s.masterBus.preFXR[*idx]
			}
			bs := s.buses[id]
			return bs.preFXL[*idx], bs.preFXR[*idx]
		}
	}
	return nil
}

// RenderBlock fills out (len must equal 2*blockSize, interleaved
// stereo) with the next block and reports whether the whole
// composition has finished: no event left to schedule and no voice
// still sounding, per spec §4.7's end-of-score detection.
func (s *Session) RenderBlock(out []float32) (bool, error) {
	n := s.blockSize
	if len(out) != 2*n {
		return false, fmt.Errorf("render: out must be %d samples (2*blockSize), got %d", 2*n, len(out))
	}
	blockEndSample := s.cursor + int64(n)

	for _, ts := range s.tracks {
		ts.spawnDue(blockEndSample, s.sampleRate)
		ts.render(s.cursor, n, s.sampleRate, &s.sampleIdx)
	}

	// score.Frozen.RenderOrder lists every BusID including MasterBus
	// itself, already topologically sorted (children, then sidechain
	// sources, before the bus that depends on them).
	for _, busID := range s.frozen.RenderOrder {
		bs := s.busStateFor(busID)
		bs.render(n, s.sampleRate, s.cursor, &s.sampleIdx, s.trackOut, s.busOut)
	}

	for i := 0; i < n; i++ {
		s.sampleIdx = i
		out[2*i] = softClip(s.masterBus.outL[i])
		out[2*i+1] = softClip(s.masterBus.outR[i])
	}

	s.cursor += int64(n)
	return s.isFinished(), nil
}

func (s *Session) trackOut(id score.TrackID) ([]float32, []float32) {
	ts := s.tracks[id]
	return ts.outL(), ts.outR()
}

func (s *Session) busStateFor(id score.BusID) *busState {
	if id == score.MasterBus {
		return s.masterBus
	}
	return s.buses[id]
}

func (s *Session) busOut(id score.BusID) ([]float32, []float32) {
	if id == score.MasterBus {
		return s.masterBus.outL, s.masterBus.outR
	}
	bs := s.buses[id]
	return bs.outL, bs.outR
}

// isFinished reports spec §4.7's end-of-score condition: every
// track's event list is exhausted and no voice is still sounding.
func (s *Session) isFinished() bool {
	for _, ts := range s.tracks {
		if len(ts.active) > 0 {
			return false
		}
		if ts.nextEvent < len(ts.track.Events) {
			return false
		}
	}
	return true
}

// softClip implements spec §4.7's master limiter-of-last-resort: a
// tanh soft clip so sample values never hard-wrap past [-1,1].
func softClip(v float32) float32 {
	return float32(math.Tanh(float64(v)))
}
