// Package mp3 implements spec §4.10's MP3 read support via
// github.com/hajimehoshi/go-mp3, which decodes to 16-bit signed
// little-endian stereo PCM; this package converts that to the
// engine's interleaved f32 contract.
package mp3

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"

	"github.com/sqrew/tunes-sub004/internal/score"
)

// Load decodes an MP3 file at path to an interleaved f32
// score.Sample.
func Load(path string) (*score.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mp3: open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode decodes an MP3 stream from r.
func Decode(r io.Reader) (*score.Sample, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3: new decoder: %w", err)
	}

	const channels = 2
	var frames []float32
	buf := make([]byte, 4096)
	for {
		n, err := dec.Read(buf)
		if n > 0 {
			frames = append(frames, pcm16ToF32(buf[:n])...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("mp3: decode: %w", err)
		}
	}

	return &score.Sample{Channels: channels, SampleRate: dec.SampleRate(), Frames: frames}, nil
}

func pcm16ToF32(buf []byte) []float32 {
	out := make([]float32, len(buf)/2)
	for i := range out {
		v := int16(binary.LittleEndian.Uint16(buf[i*2:]))
		out[i] = float32(v) / 32768.0
	}
	return out
}
