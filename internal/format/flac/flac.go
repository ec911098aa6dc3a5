// Package flac implements spec §4.10's FLAC read support via
// github.com/mewkiz/flac (already a wired dependency from the
// reference pack's MP3/OGG/FLAC decoder trio). Write is not
// implemented: mewkiz/flac is decode-only, and no other FLAC encoder
// appears anywhere in the example corpus — spec §4.10's "Write is
// FLAC-only" requirement is therefore unmet by this package pending a
// suitable encoder dependency (see DESIGN.md).
package flac

import (
	"fmt"

	"github.com/mewkiz/flac"

	"github.com/sqrew/tunes-sub004/internal/score"
)

// Load decodes a FLAC file at path to an interleaved f32
// score.Sample at its native sample rate and bit depth.
func Load(path string) (*score.Sample, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("flac: parse %s: %w", path, err)
	}
	defer stream.Close()

	channels := int(stream.Info.NChannels)
	sampleRate := int(stream.Info.SampleRate)
	maxVal := float32(int64(1) << (stream.Info.BitsPerSample - 1))

	var frames []float32
	for {
		fr, err := stream.ParseNext()
		if err != nil {
			break
		}
		n := len(fr.Subframes[0].Samples)
		for i := 0; i < n; i++ {
			for ch := 0; ch < channels; ch++ {
				frames = append(frames, float32(fr.Subframes[ch].Samples[i])/maxVal)
			}
		}
	}

	return &score.Sample{Channels: channels, SampleRate: sampleRate, Frames: frames}, nil
}
