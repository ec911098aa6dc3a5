package score

import (
	"fmt"
)

// Frozen is the renderer's immutable view of a Composition, produced
// once by Freeze (spec §3, §5 "Transaction discipline"). All
// ConfigurationError checks (spec §7) run here; a render session is
// never constructed if Freeze fails.
type Frozen struct {
	Composition Composition

	// RenderOrder lists every BusID (including MasterBus) in the
	// order buses must be rendered within one block: children before
	// parents, and any sidechain source before its consumer, per
	// spec §4.6.
	RenderOrder []BusID

	busByID   map[BusID]*Bus
	trackByID map[TrackID]*Track
}

// Freeze validates c and returns its immutable Frozen form. Calling
// Freeze on an already-Frozen composition's Composition field is a
// no-op in the sense required by spec §8: Freeze is a pure function
// of its input with no side effects on c, so freezing the same value
// twice yields equal results.
func Freeze(c Composition) (*Frozen, error) {
	// Copy the slices Freeze mutates (event order, tempo clamping) so
	// the caller's backing arrays are left untouched.
	c.Tracks = append([]Track(nil), c.Tracks...)
	for i := range c.Tracks {
		c.Tracks[i].Events = append([]Event(nil), c.Tracks[i].Events...)
	}
	c.TempoMap = append([]TempoPoint(nil), c.TempoMap...)
	f := &Frozen{
		Composition: c,
		busByID:     make(map[BusID]*Bus, len(c.Buses)+1),
		trackByID:   make(map[TrackID]*Track, len(c.Tracks)),
	}

	for i := range c.Buses {
		b := &c.Buses[i]
		if _, dup := f.busByID[b.ID]; dup || b.ID == MasterBus {
			if b.ID == MasterBus {
				return nil, fmt.Errorf("%w: bus id %d is reserved for master", ErrDuplicateBusID, b.ID)
			}
			return nil, fmt.Errorf("%w: %d", ErrDuplicateBusID, b.ID)
		}
		f.busByID[b.ID] = b
	}
	for i := range c.Tracks {
		t := &c.Tracks[i]
		if _, dup := f.trackByID[t.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateTrackID, t.ID)
		}
		f.trackByID[t.ID] = t
		t.SortEvents()
		if err := validateEvents(t.Events, float64(c.SampleRate)); err != nil {
			return nil, fmt.Errorf("track %d: %w", t.ID, err)
		}
	}

	if err := f.validateBusReferences(); err != nil {
		return nil, err
	}
	if err := f.checkBusCycles(); err != nil {
		return nil, err
	}
	order, err := f.topologicalRenderOrder()
	if err != nil {
		return nil, err
	}
	f.RenderOrder = order

	for i := range f.Composition.TempoMap {
		f.Composition.TempoMap[i].BPM = clampBPM(f.Composition.TempoMap[i].BPM)
	}

	return f, nil
}

func clampBPM(bpm float64) float64 {
	// Spec §8 boundary behavior: a tempo of 0 or negative is clamped
	// to [20, 500] BPM.
	if bpm < 20 {
		return 20
	}
	if bpm > 500 {
		return 500
	}
	return bpm
}

func validateEvents(events []Event, sampleRate float64) error {
	nyquist := sampleRate / 2
	for i, e := range events {
		if e.Start < 0 {
			return fmt.Errorf("event %d: %w", i, ErrNegativeStart)
		}
		switch e.Kind {
		case NoteEvent, NoiseEvent:
			if e.Duration <= 0 {
				return fmt.Errorf("event %d: %w", i, ErrNegativeDuration)
			}
		}
		if e.Kind == NoteEvent {
			for _, hz := range e.Pitches {
				if hz <= 0 || hz >= nyquist {
					return fmt.Errorf("event %d: %w", i, ErrInvalidFrequency)
				}
			}
			if e.Velocity < 0 || e.Velocity > 1 {
				return fmt.Errorf("event %d: %w", i, ErrInvalidVelocity)
			}
		}
	}
	return nil
}

// Bus and Track look up a bus or track of the frozen composition by
// ID without re-walking its slices.
func (f *Frozen) Bus(id BusID) (*Bus, bool) {
	b, ok := f.busByID[id]
	return b, ok
}

func (f *Frozen) Track(id TrackID) (*Track, bool) {
	t, ok := f.trackByID[id]
	return t, ok
}

func (f *Frozen) validateBusReferences() error {
	for _, b := range f.Composition.Buses {
		for _, ch := range b.Children {
			if ch.Bus != nil {
				if *ch.Bus != MasterBus {
					if _, ok := f.busByID[*ch.Bus]; !ok {
						return fmt.Errorf("bus %d: %w: %d", b.ID, ErrUndefinedBus, *ch.Bus)
					}
				}
			}
			if ch.Track != nil {
				if _, ok := f.trackByID[*ch.Track]; !ok {
					return fmt.Errorf("bus %d: %w (track %d)", b.ID, ErrUndefinedBus, *ch.Track)
				}
			}
		}
		if b.Sidechain != nil {
			if err := f.validateSidechainTarget(*b.Sidechain); err != nil {
				return fmt.Errorf("bus %d: %w", b.ID, err)
			}
		}
	}
	for _, t := range f.Composition.Tracks {
		if t.Parent != nil && *t.Parent != MasterBus {
			if _, ok := f.busByID[*t.Parent]; !ok {
				return fmt.Errorf("track %d: %w: %d", t.ID, ErrUndefinedBus, *t.Parent)
			}
		}
		for _, fx := range t.Effects {
			if fx.SidechainFrom != nil {
				if err := f.validateSidechainTarget(*fx.SidechainFrom); err != nil {
					return fmt.Errorf("track %d: %w", t.ID, err)
				}
			}
		}
	}
	return nil
}

func (f *Frozen) validateSidechainTarget(s SidechainSource) error {
	if s.Bus != nil {
		if *s.Bus != MasterBus {
			if _, ok := f.busByID[*s.Bus]; !ok {
				return fmt.Errorf("%w: bus %d", ErrUnknownSidechain, *s.Bus)
			}
		}
	}
	if s.Track != nil {
		if _, ok := f.trackByID[*s.Track]; !ok {
			return fmt.Errorf("%w: track %d", ErrUnknownSidechain, *s.Track)
		}
	}
	return nil
}

// checkBusCycles depth-first walks the bus-child DAG once per freeze,
// per spec §9's "Cyclic graph risk" design note.
func (f *Frozen) checkBusCycles() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[BusID]int, len(f.Composition.Buses))

	var visit func(id BusID) error
	visit = func(id BusID) error {
		color[id] = gray
		if b, ok := f.busByID[id]; ok {
			for _, ch := range b.Children {
				if ch.Bus == nil {
					continue
				}
				c := color[*ch.Bus]
				if c == gray {
					return fmt.Errorf("%w: bus %d", ErrBusCycle, *ch.Bus)
				}
				if c == white {
					if err := visit(*ch.Bus); err != nil {
						return err
					}
				}
			}
		}
		color[id] = black
		return nil
	}

	for _, b := range f.Composition.Buses {
		if color[b.ID] == white {
			if err := visit(b.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// topologicalRenderOrder produces a render order satisfying both the
// bus-tree constraint (a bus renders after all of its bus children)
// and the sidechain constraint (a sidechain source renders before its
// consumer), per spec §4.6.
func (f *Frozen) topologicalRenderOrder() ([]BusID, error) {
	allIDs := make([]BusID, 0, len(f.Composition.Buses)+1)
	allIDs = append(allIDs, MasterBus)
	for _, b := range f.Composition.Buses {
		allIDs = append(allIDs, b.ID)
	}

	deps := make(map[BusID]map[BusID]bool, len(allIDs))
	for _, id := range allIDs {
		deps[id] = map[BusID]bool{}
	}
	for _, id := range allIDs {
		if b, ok := f.busByID[id]; ok {
			for _, ch := range b.Children {
				if ch.Bus != nil {
					deps[id][*ch.Bus] = true
				}
			}
			if b.Sidechain != nil && b.Sidechain.Bus != nil {
				deps[id][*b.Sidechain.Bus] = true
			}
		}
	}
	// Track-level sidechains also create an ordering requirement: the
	// bus that owns the sidechain-consuming track must render after
	// the sidechain source bus.
	for _, t := range f.Composition.Tracks {
		owner := MasterBus
		if t.Parent != nil {
			owner = *t.Parent
		}
		for _, fx := range t.Effects {
			if fx.SidechainFrom != nil && fx.SidechainFrom.Bus != nil {
				deps[owner][*fx.SidechainFrom.Bus] = true
			}
		}
	}
	// MasterBus sums every bus that no other bus lists as a child, so
	// those root buses render before it.
	isChild := make(map[BusID]bool, len(allIDs))
	for _, b := range f.Composition.Buses {
		for _, ch := range b.Children {
			if ch.Bus != nil {
				isChild[*ch.Bus] = true
			}
		}
	}
	for _, b := range f.Composition.Buses {
		if !isChild[b.ID] && !deps[b.ID][MasterBus] {
			deps[MasterBus][b.ID] = true
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[BusID]int, len(allIDs))
	order := make([]BusID, 0, len(allIDs))

	var visit func(id BusID) error
	visit = func(id BusID) error {
		color[id] = gray
		for dep := range deps[id] {
			switch color[dep] {
			case gray:
				return fmt.Errorf("%w: bus %d", ErrSidechainCycle, dep)
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		color[id] = black
		order = append(order, id)
		return nil
	}

	for _, id := range allIDs {
		if color[id] == white {
			if err := visit(id); err != nil {
				return nil, err
			}
		}
	}
	return order, nil
}
