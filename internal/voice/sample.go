package voice

import "github.com/sqrew/tunes-sub004/internal/score"

// sampleVoice plays back a decoded score.Sample at PlaybackRate,
// scaled by Gain. Multichannel samples are downmixed to mono at the
// voice boundary (an Open Question the original distillation left
// unresolved): every other stage of the signal path — track pan, bus
// sends, sidechain taps — operates on mono-per-voice signals, so a
// stereo sample's channels are averaged once here rather than each
// carried through the whole chain.
type sampleVoice struct {
	sample       *score.Sample
	playbackRate float64
	gain         float32
	readPos      float64
}

func NewSampleVoice(e score.Event) *sampleVoice {
	rate := e.PlaybackRate
	if rate <= 0 {
		rate = 1
	}
	return &sampleVoice{
		sample:       e.Sample,
		playbackRate: rate,
		gain:         float32(e.Gain),
	}
}

func (v *sampleVoice) Render(out []float32, blockStartSample int64, sampleRate float64) bool {
	if v.sample == nil {
		return true
	}
	// readPos advances in the sample's own native sample-rate domain,
	// scaled both by PlaybackRate and by the ratio of the sample's
	// native rate to the render sample rate so rate==1 plays back at
	// original pitch regardless of session sample rate.
	srcStep := v.playbackRate * float64(v.sample.SampleRate) / sampleRate

	var done bool
	for i := range out {
		if v.readPos >= float64(v.sample.FrameCount()) {
			done = true
			break
		}
		out[i] += v.readFrameMono() * v.gain
		v.readPos += srcStep
	}
	return done
}

func (v *sampleVoice) readFrameMono() float32 {
	if v.sample.Channels <= 1 {
		return v.sample.At(v.readPos, 0)
	}
	var sum float32
	for ch := 0; ch < v.sample.Channels; ch++ {
		sum += v.sample.At(v.readPos, ch)
	}
	return sum / float32(v.sample.Channels)
}
