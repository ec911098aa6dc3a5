package score

// TrackID and BusID are stable, user-assigned integer identifiers.
// BusID zero is reserved for the implicit master bus and never
// appears in Composition.Buses.
type TrackID int32
type BusID int32

// MasterBus is the implicit root of the bus DAG. Tracks and buses
// with no declared parent render into it.
const MasterBus BusID = 0
