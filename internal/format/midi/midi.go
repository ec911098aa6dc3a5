// Package midi implements spec §4.10/§6's Standard MIDI File Type 1
// read and write, via gitlab.com/gomidi/midi/v2 and its smf
// sub-package — the same MIDI library family the reference pack's
// mixer example (aaliyan1230-midi-mixer) uses for live ports, here
// used for file I/O instead.
package midi

import (
	"fmt"
	"math"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/sqrew/tunes-sub004/internal/envelope"
	"github.com/sqrew/tunes-sub004/internal/score"
)

const ppq = 480

const drumChannel = 9 // channel 10, zero-indexed

func hzFromNote(note uint8) float64 {
	return 440 * math.Pow(2, (float64(note)-69)/12)
}

type pendingNote struct {
	start    float64
	velocity uint8
}

type timedMessage struct {
	tick uint32
	msg  midi.Message
}

// Load parses a Standard MIDI File at path into a score.Composition:
// one Track per source MIDI track, paired Note On/Off converted to
// Note events (or Drum events on channel 10, mapped by GM note
// number), and tempo/time-signature meta events folded into the
// Composition's TempoMap, per spec §4.10.
func Load(path string) (*score.Composition, error) {
	s, err := smf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("midi: read %s: %w", path, err)
	}

	comp := &score.Composition{SampleRate: 48000}
	ticksPerQuarter := float64(ppq)
	if tf, ok := s.TimeFormat.(smf.MetricTicks); ok {
		ticksPerQuarter = float64(tf)
	}

	microsPerQuarter := 500000.0 // 120 BPM default, per SMF convention

	for trackIdx, track := range s.Tracks {
		var (
			seconds float64
			open    = make(map[uint16]pendingNote)
			events  []score.Event
		)

		scoreTrack := score.Track{ID: score.TrackID(trackIdx + 1), Volume: 1}

		endNote := func(channel, key uint8, end float64) {
			id := noteID(channel, key)
			pn, ok := open[id]
			if !ok {
				return
			}
			delete(open, id)
			dur := end - pn.start
			if dur <= 0 {
				dur = 0.001
			}
			if channel == drumChannel {
				events = append(events, score.Event{
					Kind:     score.DrumEvent,
					Start:    pn.start,
					Duration: dur,
					Drum:     score.DrumKindFromGMNote(key),
					Velocity: float64(pn.velocity) / 127,
				})
				return
			}
			events = append(events, score.Event{
				Kind:     score.NoteEvent,
				Start:    pn.start,
				Duration: dur,
				Pitches:  []float64{hzFromNote(key)},
				Waveform: score.WaveSine,
				Envelope: envelope.Params{Attack: 0.005, Decay: 0.05, Sustain: 0.8, Release: 0.1},
				Synth:    score.DefaultSubtractive(),
				Velocity: float64(pn.velocity) / 127,
			})
		}

		for _, ev := range track {
			seconds += float64(ev.Delta) / ticksPerQuarter * (microsPerQuarter / 1e6)

			msg := ev.Message
			var channel, key, velocity uint8

			switch {
			case msg.GetNoteOn(&channel, &key, &velocity):
				if velocity == 0 {
					endNote(channel, key, seconds)
					continue
				}
				open[noteID(channel, key)] = pendingNote{start: seconds, velocity: velocity}
			case msg.GetNoteOff(&channel, &key, &velocity):
				endNote(channel, key, seconds)
			default:
				if bpm, ok := msg.GetMetaTempo(); ok {
					microsPerQuarter = 60000000.0 / bpm
					comp.TempoMap = append(comp.TempoMap, score.TempoPoint{StartSeconds: seconds, BPM: bpm})
				}
				if num, den, _, _, ok := msg.GetMetaTimeSig(); ok {
					comp.TempoMap = append(comp.TempoMap, score.TempoPoint{
						StartSeconds: seconds, TimeSigNum: int(num), TimeSigDen: int(den),
					})
				}
			}
		}

		scoreTrack.Events = events
		scoreTrack.SortEvents()
		comp.Tracks = append(comp.Tracks, scoreTrack)
	}

	return comp, nil
}

func noteID(channel, key uint8) uint16 {
	return uint16(channel)<<8 | uint16(key)
}

// Write emits comp as a Standard MIDI File Type 1 at path: one tempo
// track followed by one track per source Track, 480 PPQ, Note
// On/Off pairs, drum events routed to channel 10 with their GM
// percussion note, per spec §6.
func Write(path string, comp *score.Composition) error {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ppq)

	tempoTrack := smf.Track{}
	bpm := 120.0
	if len(comp.TempoMap) > 0 && comp.TempoMap[0].BPM > 0 {
		bpm = comp.TempoMap[0].BPM
	}
	tempoTrack.Add(0, smf.MetaTempo(bpm))
	for _, tp := range comp.TempoMap {
		if tp.TimeSigNum > 0 && tp.TimeSigDen > 0 {
			tempoTrack.Add(0, smf.MetaMeter(uint8(tp.TimeSigNum), uint8(tp.TimeSigDen)))
		}
	}
	tempoTrack.Close(0)
	if err := s.Add(tempoTrack); err != nil {
		return fmt.Errorf("midi: add tempo track: %w", err)
	}

	secondsPerTick := 60.0 / bpm / float64(ppq)

	for _, t := range comp.Tracks {
		tr := smf.Track{}
		if t.Name != "" {
			tr.Add(0, smf.MetaTrackSequenceName(t.Name))
		}

		type onEvent struct {
			tick    uint32
			channel uint8
			key     uint8
			vel     uint8
		}
		type offEvent struct {
			tick    uint32
			channel uint8
			key     uint8
		}
		var ons []onEvent
		var offs []offEvent

		for _, e := range t.Events {
			switch e.Kind {
			case score.NoteEvent:
				if len(e.Pitches) == 0 {
					continue
				}
				key := noteFromHz(e.Pitches[0])
				vel := velocityByte(e.Velocity)
				startTick := uint32(e.Start / secondsPerTick)
				endTick := uint32((e.Start + e.Duration) / secondsPerTick)
				ons = append(ons, onEvent{startTick, 0, key, vel})
				offs = append(offs, offEvent{endTick, 0, key})
			case score.DrumEvent:
				key := e.Drum.GMNote()
				vel := velocityByte(e.Velocity)
				startTick := uint32(e.Start / secondsPerTick)
				endTick := uint32((e.Start + e.Drum.NaturalDuration()) / secondsPerTick)
				ons = append(ons, onEvent{startTick, drumChannel, key, vel})
				offs = append(offs, offEvent{endTick, drumChannel, key})
			}
		}

		var timeline []timedMessage
		for _, on := range ons {
			timeline = append(timeline, timedMessage{on.tick, midi.NoteOn(on.channel, on.key, on.vel)})
		}
		for _, off := range offs {
			timeline = append(timeline, timedMessage{off.tick, midi.NoteOff(off.channel, off.key)})
		}
		sortTimedMsgs(timeline)

		var prevTick uint32
		for _, tm := range timeline {
			tr.Add(tm.tick-prevTick, tm.msg)
			prevTick = tm.tick
		}
		tr.Close(0)
		if err := s.Add(tr); err != nil {
			return fmt.Errorf("midi: add track %d: %w", t.ID, err)
		}
	}

	if err := s.WriteFile(path); err != nil {
		return fmt.Errorf("midi: write %s: %w", path, err)
	}
	return nil
}

func velocityByte(v float64) uint8 {
	if v <= 0 {
		return 1
	}
	if v >= 1 {
		return 127
	}
	return uint8(v * 127)
}

func noteFromHz(hz float64) uint8 {
	n := 69 + 12*math.Log2(hz/440)
	if n < 0 {
		n = 0
	}
	if n > 127 {
		n = 127
	}
	return uint8(math.Round(n))
}

func sortTimedMsgs(timeline []timedMessage) {
	for i := 1; i < len(timeline); i++ {
		for j := i; j > 0 && timeline[j].tick < timeline[j-1].tick; j-- {
			timeline[j], timeline[j-1] = timeline[j-1], timeline[j]
		}
	}
}
