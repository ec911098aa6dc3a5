// Package stream implements the streaming player of spec §4.11
// (component C11): playback for audio files too large to decode up
// front, via a background decoder thread feeding a bounded SPSC ring
// buffer that the audio callback drains.
package stream

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sqrew/tunes-sub004/internal/score"
)

// DefaultBufferSeconds is the ring buffer's default capacity, per
// spec §4.11's "default 4 seconds".
const DefaultBufferSeconds = 4.0

// Stats reports cumulative streaming activity, observable the way
// the sample cache's Stats are (spec §7: "reflecting problems via
// stats that the host can inspect").
type Stats struct {
	UnderrunBlocks uint64
}

// Player streams one decoded score.Sample through a ring buffer at a
// session output rate, resampling with linear interpolation when the
// source rate differs (spec §4.11). The Sample is assumed already
// decoded in memory; the "streaming" here is the buffering and
// backpressure discipline between a feeder thread and the realtime
// consumer, not incremental container parsing — see DESIGN.md for why
// the reference pack's decoders are eager rather than progressive.
type Player struct {
	sample     *score.Sample
	sessionSR  float64
	buf        *ring
	underruns  atomic.Uint64
	readPos    float64 // fractional source-frame cursor
	looping    atomic.Bool
	paused     atomic.Bool
	stopped    atomic.Bool
	terminated atomic.Bool // true after persistent decoder failure (spec §7)

	wg sync.WaitGroup
}

// NewPlayer starts a background feeder goroutine streaming sample at
// sessionSampleRate, with looping controlling whether it restarts
// from the beginning on reaching the end.
func NewPlayer(sample *score.Sample, sessionSampleRate float64, looping bool) *Player {
	capFrames := int(DefaultBufferSeconds * sessionSampleRate)
	p := &Player{
		sample:    sample,
		sessionSR: sessionSampleRate,
		buf:       newRing(capFrames),
	}
	p.looping.Store(looping)

	p.wg.Add(1)
	go p.feed()
	return p
}

// feed is the decoder thread of spec §4.11: it keeps the ring buffer
// topped up, sleeping briefly whenever it is full, and resets readPos
// to loop when the sample ends.
func (p *Player) feed() {
	defer p.wg.Done()

	const chunkFrames = 1024
	scratch := make([]float32, chunkFrames*2)

	for !p.stopped.Load() {
		if p.paused.Load() {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if p.sample == nil || p.sample.SampleRate == 0 {
			p.terminated.Store(true)
			return
		}

		n := p.renderChunk(scratch, chunkFrames)
		if n == 0 {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		written := p.buf.push(scratch[:n*2])
		for written < n {
			if p.stopped.Load() {
				return
			}
			time.Sleep(2 * time.Millisecond)
			written += p.buf.push(scratch[written*2 : n*2])
		}
	}
}

// renderChunk fills scratch with up to want frames resampled from the
// source to the session rate via linear interpolation, advancing
// readPos and wrapping or stopping at the source's end per looping.
func (p *Player) renderChunk(scratch []float32, want int) int {
	srcStep := float64(p.sample.SampleRate) / p.sessionSR
	srcFrames := p.sample.FrameCount()
	channels := p.sample.Channels

	produced := 0
	for produced < want {
		if p.readPos >= float64(srcFrames) {
			if p.looping.Load() {
				p.readPos = 0
			} else {
				break
			}
		}
		l := sampleChannel(p.sample, p.readPos, 0, channels)
		r := l
		if channels > 1 {
			r = sampleChannel(p.sample, p.readPos, 1, channels)
		}
		scratch[produced*2] = l
		scratch[produced*2+1] = r
		p.readPos += srcStep
		produced++
	}
	return produced
}

func sampleChannel(s *score.Sample, idx float64, ch, channels int) float32 {
	if ch >= channels {
		return 0
	}
	n := s.FrameCount()
	i0 := int(idx)
	if i0 >= n {
		return 0
	}
	if i0 >= n-1 {
		return s.Frames[i0*channels+ch]
	}
	frac := float32(idx - float64(i0))
	a := s.Frames[i0*channels+ch]
	b := s.Frames[(i0+1)*channels+ch]
	return a + frac*(b-a)
}

// Pull fills out (interleaved stereo) from the ring buffer, counting
// an underrun whenever the buffer could not supply a full block
// (spec §4.11: "emits silence for that block and is counted in
// stats; it does not corrupt playback state").
func (p *Player) Pull(out []float32) {
	got := p.buf.pop(out)
	wanted := len(out) / 2
	if got < wanted {
		p.underruns.Add(1)
	}
}

// Pause signals the decoder thread to stop producing; the ring
// buffer drains naturally as Pull continues consuming.
func (p *Player) Pause() { p.paused.Store(true) }

// Resume un-pauses the decoder thread.
func (p *Player) Resume() { p.paused.Store(false) }

// Stop terminates the decoder thread. The Player must not be reused
// after Stop.
func (p *Player) Stop() {
	p.stopped.Store(true)
	p.wg.Wait()
}

// IsPlaying reports false once the stream has entered a terminal
// error state (spec §7's DecodeError outcome) or been stopped.
func (p *Player) IsPlaying() bool {
	return !p.stopped.Load() && !p.terminated.Load()
}

// Stats returns a snapshot of cumulative underrun activity.
func (p *Player) Stats() Stats {
	return Stats{UnderrunBlocks: p.underruns.Load()}
}
