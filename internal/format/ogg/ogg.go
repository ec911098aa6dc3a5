// Package ogg implements spec §4.10's OGG Vorbis read support via
// github.com/jfreymuth/oggvorbis, which already decodes directly to
// interleaved float32 — the engine's native sample representation.
package ogg

import (
	"fmt"
	"io"
	"os"

	"github.com/jfreymuth/oggvorbis"

	"github.com/sqrew/tunes-sub004/internal/score"
)

// Load decodes an OGG Vorbis file at path to an interleaved f32
// score.Sample.
func Load(path string) (*score.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ogg: open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode decodes an OGG Vorbis stream from r.
func Decode(r io.Reader) (*score.Sample, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ogg: decode: %w", err)
	}
	return &score.Sample{
		Channels:   format.Channels,
		SampleRate: format.SampleRate,
		Frames:     data,
	}, nil
}
