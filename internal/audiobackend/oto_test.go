package audiobackend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadFillsSilenceWithNoPullAttached(t *testing.T) {
	p := &Player{blockSize: 4, sampleBuf: make([]float32, 8)}
	out := make([]byte, 32)
	for i := range out {
		out[i] = 0xFF
	}
	n, err := p.Read(out)
	assert.NoError(t, err)
	assert.Equal(t, len(out), n)
	for _, b := range out {
		assert.Equal(t, byte(0), b)
	}
}

func TestReadDrawsFromAttachedPullFunc(t *testing.T) {
	p := &Player{blockSize: 2, sampleBuf: make([]float32, 4)}
	p.SetPull(func(dst []float32) {
		for i := range dst {
			dst[i] = 1
		}
	})

	out := make([]byte, 16) // 4 float32s
	n, err := p.Read(out)
	assert.NoError(t, err)
	assert.Equal(t, len(out), n)

	// 1.0f32 little-endian == 0x00 0x00 0x80 0x3F
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3F}, out[0:4])
}
