// Package wav implements spec §4.10/§6's WAV format I/O: read of PCM
// float or int WAV files to interleaved f32 at the source rate, and
// write of 32-bit float WAV at the session rate. No third-party
// library in the reference pack covers WAV container parsing, so
// this reads and writes the RIFF/fmt/data chunk structure directly —
// the one format package in this tree built on the standard library
// alone (see DESIGN.md).
package wav

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/sqrew/tunes-sub004/internal/score"
)

const (
	fmtPCM       = 1
	fmtIEEEFloat = 3
)

// Load reads a RIFF/WAVE file at path and decodes it to an in-memory
// score.Sample at its native sample rate (spec §4.10: "no resampling
// at decode time").
func Load(path string) (*score.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wav: open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a RIFF/WAVE stream from r.
func Decode(r io.Reader) (*score.Sample, error) {
	var riffHeader [12]byte
	if _, err := io.ReadFull(r, riffHeader[:]); err != nil {
		return nil, fmt.Errorf("wav: read header: %w", err)
	}
	if string(riffHeader[0:4]) != "RIFF" || string(riffHeader[8:12]) != "WAVE" {
		return nil, fmt.Errorf("wav: not a RIFF/WAVE stream")
	}

	var (
		channels      int
		sampleRate    int
		bitsPerSample int
		audioFormat   int
		haveFmt       bool
		frames        []float32
	)

	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(r, chunkHeader[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, fmt.Errorf("wav: read chunk header: %w", err)
		}
		chunkID := string(chunkHeader[0:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHeader[4:8])
		padded := chunkSize
		if padded%2 == 1 {
			padded++
		}

		switch chunkID {
		case "fmt ":
			body := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("wav: read fmt chunk: %w", err)
			}
			audioFormat = int(binary.LittleEndian.Uint16(body[0:2]))
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(body[14:16]))
			haveFmt = true
			if padded > chunkSize {
				io.CopyN(io.Discard, r, int64(padded-chunkSize))
			}
		case "data":
			if !haveFmt {
				return nil, fmt.Errorf("wav: data chunk before fmt chunk")
			}
			body := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("wav: read data chunk: %w", err)
			}
			frames = decodeSamples(body, audioFormat, bitsPerSample)
			if padded > chunkSize {
				io.CopyN(io.Discard, r, int64(padded-chunkSize))
			}
		default:
			if _, err := io.CopyN(io.Discard, r, int64(padded)); err != nil && err != io.EOF {
				return nil, fmt.Errorf("wav: skip chunk %s: %w", chunkID, err)
			}
		}
	}

	if !haveFmt {
		return nil, fmt.Errorf("wav: missing fmt chunk")
	}
	return &score.Sample{Channels: channels, SampleRate: sampleRate, Frames: frames}, nil
}

func decodeSamples(body []byte, audioFormat, bitsPerSample int) []float32 {
	switch {
	case audioFormat == fmtIEEEFloat && bitsPerSample == 32:
		out := make([]float32, len(body)/4)
		for i := range out {
			bits := binary.LittleEndian.Uint32(body[i*4:])
			out[i] = math.Float32frombits(bits)
		}
		return out
	case audioFormat == fmtPCM && bitsPerSample == 16:
		out := make([]float32, len(body)/2)
		for i := range out {
			v := int16(binary.LittleEndian.Uint16(body[i*2:]))
			out[i] = float32(v) / 32768.0
		}
		return out
	case audioFormat == fmtPCM && bitsPerSample == 24:
		n := len(body) / 3
		out := make([]float32, n)
		for i := 0; i < n; i++ {
			b0, b1, b2 := body[i*3], body[i*3+1], body[i*3+2]
			v := int32(b0) | int32(b1)<<8 | int32(b2)<<16
			if v&0x800000 != 0 {
				v |= -(1 << 24) // sign extend
			}
			out[i] = float32(v) / 8388608.0
		}
		return out
	case audioFormat == fmtPCM && bitsPerSample == 8:
		out := make([]float32, len(body))
		for i, b := range body {
			out[i] = (float32(b) - 128) / 128.0
		}
		return out
	default:
		return nil
	}
}

// Save writes s as a 32-bit float RIFF/WAVE file at path, per spec
// §6: "format = 3 (IEEE float), 2 channels, session sample rate, 32
// bits/sample ... no metadata chunks."
func Save(path string, s *score.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wav: create %s: %w", path, err)
	}
	defer f.Close()
	return Encode(f, s)
}

// Encode writes s to w in the same layout Save uses.
func Encode(w io.Writer, s *score.Sample) error {
	dataSize := uint32(len(s.Frames) * 4)
	fmtSize := uint32(16)
	riffSize := 4 + (8 + fmtSize) + (8 + dataSize)

	var hdr [12]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], riffSize)
	copy(hdr[8:12], "WAVE")
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}

	var fmtChunk [8 + 16]byte
	copy(fmtChunk[0:4], "fmt ")
	binary.LittleEndian.PutUint32(fmtChunk[4:8], fmtSize)
	binary.LittleEndian.PutUint16(fmtChunk[8:10], fmtIEEEFloat)
	binary.LittleEndian.PutUint16(fmtChunk[10:12], uint16(s.Channels))
	binary.LittleEndian.PutUint32(fmtChunk[12:16], uint32(s.SampleRate))
	byteRate := uint32(s.SampleRate*s.Channels) * 4
	binary.LittleEndian.PutUint32(fmtChunk[16:20], byteRate)
	blockAlign := uint16(s.Channels * 4)
	binary.LittleEndian.PutUint16(fmtChunk[20:22], blockAlign)
	binary.LittleEndian.PutUint16(fmtChunk[22:24], 32)
	if _, err := w.Write(fmtChunk[:]); err != nil {
		return err
	}

	var dataHdr [8]byte
	copy(dataHdr[0:4], "data")
	binary.LittleEndian.PutUint32(dataHdr[4:8], dataSize)
	if _, err := w.Write(dataHdr[:]); err != nil {
		return err
	}

	buf := make([]byte, len(s.Frames)*4)
	for i, v := range s.Frames {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	_, err := w.Write(buf)
	return err
}
