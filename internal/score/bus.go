package score

// Bus sums child tracks/buses and applies its own effect chain (spec
// §3, §4.6). Buses form a DAG rooted at MasterBus; Freeze rejects
// cycles.
type Bus struct {
	ID       BusID
	Name     string
	Children []BusOrTrackRef

	Effects []Effect

	// Sidechain names another bus/track whose pre-effect stereo sum
	// this bus's compressor(s) may read via their own
	// Effect.SidechainFrom. Declaring it here lets Freeze compute the
	// topological render order required by spec §4.6.
	Sidechain *SidechainSource
}

// BusOrTrackRef is a reference to a bus-DAG child: exactly one of Bus
// or Track is set.
type BusOrTrackRef struct {
	Bus   *BusID
	Track *TrackID
}
