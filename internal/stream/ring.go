package stream

import "sync/atomic"

// ring is a bounded single-producer single-consumer ring buffer of
// interleaved stereo float32 frames, sized in frames (2 float32s per
// frame). It is the buffer spec §4.11 describes: "a bounded SPSC ring
// buffer of interleaved float samples (default 4 seconds)."
//
// Only one goroutine ever calls push (the decoder thread) and only
// one ever calls pop (the audio callback thread); readIdx/writeIdx
// are atomics so neither side needs a mutex on the hot path.
type ring struct {
	buf      []float32 // len == capacityFrames*2
	capFrame int

	readIdx  atomic.Uint64 // frames consumed, monotonic
	writeIdx atomic.Uint64 // frames produced, monotonic
}

func newRing(capacityFrames int) *ring {
	return &ring{buf: make([]float32, capacityFrames*2), capFrame: capacityFrames}
}

func (r *ring) availableToRead() int {
	return int(r.writeIdx.Load() - r.readIdx.Load())
}

func (r *ring) availableToWrite() int {
	return r.capFrame - r.availableToRead()
}

// push writes as many frames from src (interleaved stereo) as fit
// without overrunning the consumer, returning how many frames were
// written.
func (r *ring) push(src []float32) int {
	framesIn := len(src) / 2
	room := r.availableToWrite()
	n := min(framesIn, room)
	w := r.writeIdx.Load()
	for i := 0; i < n; i++ {
		pos := int((w + uint64(i)) % uint64(r.capFrame))
		r.buf[pos*2] = src[i*2]
		r.buf[pos*2+1] = src[i*2+1]
	}
	r.writeIdx.Store(w + uint64(n))
	return n
}

// pop reads up to len(dst)/2 frames into dst, zero-filling the rest
// (silence) on underrun, and reports how many real frames were
// available.
func (r *ring) pop(dst []float32) int {
	framesWanted := len(dst) / 2
	avail := r.availableToRead()
	n := min(framesWanted, avail)
	rIdx := r.readIdx.Load()
	for i := 0; i < n; i++ {
		pos := int((rIdx + uint64(i)) % uint64(r.capFrame))
		dst[i*2] = r.buf[pos*2]
		dst[i*2+1] = r.buf[pos*2+1]
	}
	for i := n; i < framesWanted; i++ {
		dst[i*2] = 0
		dst[i*2+1] = 0
	}
	r.readIdx.Store(rIdx + uint64(n))
	return n
}

