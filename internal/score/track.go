package score

import (
	"sort"

	"github.com/sqrew/tunes-sub004/internal/envelope"
)

// Track is an ordered sequence of Events plus the per-track mix and
// effect configuration of spec §3.
//
// Invariant: Events must be sorted by Start ascending (enforced by
// Freeze, not by this type — builders may append out of order before
// freezing). Overlapping events are allowed and produce polyphony.
type Track struct {
	ID     TrackID
	Name   string
	Parent *BusID // nil => MasterBus

	Pan    float64 // [-1, 1]
	Volume float64 // linear gain, >= 0

	DefaultWaveform WaveformKind
	DefaultEnvelope envelope.Params
	DefaultSynth    SynthParams

	Effects []Effect
	Routes  []ModRoute

	// Swing in [0,1]; 0.5 = straight. Retimes every second subdivided
	// beat within the track per spec §4.5's Swing step and §9's open
	// question, resolved here via SwingGrid.
	Swing     float64
	SwingGrid SwingGrid

	Events []Event
}

// SortEvents sorts Events by Start ascending, stable so ties keep
// insertion order (spec §5 ordering guarantee).
func (t *Track) SortEvents() {
	sort.SliceStable(t.Events, func(i, j int) bool {
		return t.Events[i].Start < t.Events[j].Start
	})
}
