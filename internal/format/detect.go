// Package format auto-detects an encoded audio file's container by
// magic bytes and dispatches to the matching decoder, per spec §6's
// "File input (decode)" contract. AAC/M4A is recognized but not
// decoded: no decoder for it appears anywhere in the reference pack,
// so detection reports ErrUnsupportedFormat rather than silently
// mis-decoding (see DESIGN.md).
package format

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sqrew/tunes-sub004/internal/format/flac"
	"github.com/sqrew/tunes-sub004/internal/format/mp3"
	"github.com/sqrew/tunes-sub004/internal/format/ogg"
	"github.com/sqrew/tunes-sub004/internal/format/wav"
	"github.com/sqrew/tunes-sub004/internal/score"
)

// ErrUnsupportedFormat is returned for a recognized-but-undecodable
// container (currently only AAC/M4A).
var ErrUnsupportedFormat = errors.New("format: unsupported container")

// Load auto-detects path's container by magic bytes and decodes it to
// an interleaved f32 score.Sample at its native sample rate.
func Load(path string) (*score.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("format: open %s: %w", path, err)
	}
	defer f.Close()

	var magic [12]byte
	n, err := io.ReadFull(f, magic[:])
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("format: read magic bytes: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("format: seek: %w", err)
	}

	switch {
	case n >= 12 && bytes.Equal(magic[0:4], []byte("RIFF")) && bytes.Equal(magic[8:12], []byte("WAVE")):
		return wav.Decode(f)
	case n >= 4 && bytes.Equal(magic[0:4], []byte("fLaC")):
		return flac.Load(path)
	case n >= 3 && (bytes.Equal(magic[0:3], []byte("ID3")) || (magic[0] == 0xFF && magic[1]&0xE0 == 0xE0)):
		return mp3.Decode(f)
	case n >= 4 && bytes.Equal(magic[0:4], []byte("OggS")):
		return ogg.Decode(f)
	case n >= 12 && bytes.Equal(magic[4:8], []byte("ftyp")) && bytes.Equal(magic[8:12], []byte("M4A ")):
		return nil, fmt.Errorf("%w: AAC/M4A (%s)", ErrUnsupportedFormat, path)
	default:
		return nil, fmt.Errorf("format: unrecognized container: %s", path)
	}
}
