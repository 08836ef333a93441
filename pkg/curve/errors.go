package curve

import "errors"

// Engine errors. The set is closed: every operation returns one of these
// unchanged, with no wrapping and no retries. Callers branch with errors.Is.
var (
	// ErrInvalidConfig is returned when a configuration parameter is zero or
	// an arithmetic step does not fit the 128-bit amount width.
	ErrInvalidConfig = errors.New("invalid curve config")

	// ErrOutOfRange is returned when a requested step exceeds the sellable
	// amount.
	ErrOutOfRange = errors.New("step out of range")

	// ErrZeroInput is returned when a fill operation is invoked with a zero
	// input amount.
	ErrZeroInput = errors.New("zero input amount")

	// ErrExceedsPool is returned when an inverse solve asks for more tokens
	// than remain above the virtual floor, or the quote capacity is spent.
	ErrExceedsPool = errors.New("request exceeds pool")
)
