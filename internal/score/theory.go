package score

// Grounded on original_source/src/theory/mod.rs. Spec §3 notes the
// key-signature map is "used by theory helpers and MIDI export only;
// does not affect audio" — these helpers are builder-side theory
// sugar; neither the render path nor the MIDI writer consults them.

// Mode names a diatonic mode for a KeySignature.
type Mode uint8

const (
	Major Mode = iota
	Minor
	Dorian
	Phrygian
	Lydian
	Mixolydian
	Locrian
)

// KeySignature is one entry of the Composition's key-signature map.
type KeySignature struct {
	StartSeconds float64
	Root         int // pitch class 0=C .. 11=B
	Mode         Mode
}

var majorScaleSteps = [7]int{0, 2, 4, 5, 7, 9, 11}

var modeRotation = map[Mode]int{
	Major: 0, Dorian: 1, Phrygian: 2, Lydian: 3,
	Mixolydian: 4, Minor: 5, Locrian: 6,
}

// PitchClasses returns the seven pitch classes (0-11) of the scale
// rooted at k.Root in k.Mode.
func (k KeySignature) PitchClasses() [7]int {
	rot := modeRotation[k.Mode]
	var out [7]int
	for i := 0; i < 7; i++ {
		step := majorScaleSteps[(i+rot)%7] - majorScaleSteps[rot]
		if step < 0 {
			step += 12
		}
		out[i] = (k.Root + step) % 12
	}
	return out
}

// NoteName renders a MIDI-style pitch class as a name.
func NoteName(pitchClass int) string {
	names := [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	return names[((pitchClass%12)+12)%12]
}
