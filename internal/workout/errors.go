package workout

import "github.com/myrjola/liftplan/internal/errors"

var (
	// ErrNotFound is returned when a required session, plan or override does not exist.
	ErrNotFound = errors.NewSentinel("not found")
	// ErrInvalidInput is returned when user input such as a set's weight fails validation.
	ErrInvalidInput = errors.NewSentinel("invalid input")
	// ErrAlreadyRestDay is returned when rescheduling a day that is already a rest day.
	ErrAlreadyRestDay = errors.NewSentinel("already a rest day")
	// ErrInvalidTemplate is returned when a session cannot be built from a workout template.
	ErrInvalidTemplate = errors.NewSentinel("invalid workout template")
	// ErrSetLocked is returned when removing or modifying a saved set.
	ErrSetLocked = errors.NewSentinel("set is saved")
	// ErrStore marks failures of the underlying storage. Callers may retry the whole operation.
	ErrStore = errors.NewSentinel("store failure")
)
