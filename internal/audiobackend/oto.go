// Package audiobackend wires the engine's realtime output — spec
// §6's `pull_stereo(out: &mut [f32])` contract — to an actual sound
// device via github.com/ebitengine/oto/v3, the same backend and
// atomic-pointer-swap idiom the teacher engine uses for its own
// realtime audio sink.
package audiobackend

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/oto/v3"
)

// PullFunc fills out (interleaved stereo float32, already
// post-soft-clip per spec §6) with the next block of audio. It is
// called from oto's own callback goroutine and must not block or
// allocate; control.Registry.Pull and stream.Player.Pull both satisfy
// this shape.
type PullFunc func(out []float32)

// Player is the realtime audio sink. Like the teacher's OtoPlayer, a
// mutex guards setup/start/stop control operations while the hot
// Read path only ever touches an atomic.Pointer, so the oto callback
// goroutine never contends with a control call in flight.
type Player struct {
	ctx    *oto.Context
	player *oto.Player

	pull      atomic.Pointer[PullFunc]
	blockSize int
	sampleBuf []float32 // pre-allocated stereo scratch, grown only if oto asks for more

	mutex   sync.Mutex
	started bool
}

// NewPlayer opens an oto context at sampleRate (stereo, 32-bit float)
// and returns a Player with no pull source yet attached — call
// SetPull before Start.
func NewPlayer(sampleRate, blockSize int) (*Player, error) {
	opts := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   0, // oto default; small enough for interactive latency
	}
	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("audiobackend: open oto context: %w", err)
	}
	<-ready

	p := &Player{
		ctx:       ctx,
		blockSize: blockSize,
		sampleBuf: make([]float32, 2*blockSize),
	}
	p.player = ctx.NewPlayer(p)
	return p, nil
}

// SetPull atomically swaps the audio source. Safe to call while
// playing: the next Read call picks up the new source.
func (p *Player) SetPull(fn PullFunc) {
	p.pull.Store(&fn)
}

// Read implements io.Reader for oto.Player: it is invoked on oto's
// internal callback goroutine, the one thread in this whole engine
// that must never allocate or block.
func (p *Player) Read(out []byte) (int, error) {
	fn := p.pull.Load()
	if fn == nil {
		for i := range out {
			out[i] = 0
		}
		return len(out), nil
	}

	numSamples := len(out) / 4
	if len(p.sampleBuf) < numSamples {
		p.sampleBuf = make([]float32, numSamples)
	}
	samples := p.sampleBuf[:numSamples]

	(*fn)(samples)

	copy(out, (*[1 << 30]byte)(unsafe.Pointer(&samples[0]))[:len(out)])
	return len(out), nil
}

// Start begins playback. No-op if already started. Until SetPull has
// been called, Read fills every buffer with silence.
func (p *Player) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if !p.started {
		p.player.Play()
		p.started = true
	}
}

// Stop halts playback; the player can be restarted with Start.
func (p *Player) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.started {
		p.player.Pause()
		p.started = false
	}
}

// Close releases the underlying oto player and context.
func (p *Player) Close() error {
	p.Stop()
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.player.Close()
}

// IsStarted reports whether playback is currently active.
func (p *Player) IsStarted() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.started
}
