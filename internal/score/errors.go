package score

import "errors"

// Sentinel errors for the ConfigurationError class of spec §7. Freeze
// reports these; a render session is never constructed on failure.
var (
	ErrUndefinedBus      = errors.New("score: track or bus references an undefined bus")
	ErrBusCycle          = errors.New("score: bus graph contains a cycle")
	ErrSidechainCycle    = errors.New("score: sidechain graph contains a cycle")
	ErrNegativeDuration  = errors.New("score: event duration must be > 0")
	ErrNegativeStart     = errors.New("score: event start must be >= 0")
	ErrInvalidFrequency  = errors.New("score: pitch frequency out of (0, nyquist) range")
	ErrInvalidVelocity   = errors.New("score: velocity must be within [0, 1]")
	ErrDuplicateTrackID  = errors.New("score: duplicate track id")
	ErrDuplicateBusID    = errors.New("score: duplicate bus id")
	ErrUnknownSidechain  = errors.New("score: sidechain source references an undefined bus or track")
)
