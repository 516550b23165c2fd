package powertrain

import "errors"

var (
	// ErrGearOutOfRange is returned by shifts to an index outside the ratio list.
	ErrGearOutOfRange = errors.New("powertrain: gear index out of range")

	ErrUnknownCycle       = errors.New("powertrain: unknown stroke cycle")
	ErrUnknownArrangement = errors.New("powertrain: unknown cylinder arrangement")
)
