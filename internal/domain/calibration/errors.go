package calibration

import "errors"

// Sentinel errors for this package.
var (
	ErrInsufficientPopulation = errors.New("insufficient population for train/held-out split")
	ErrTargetMismatch         = errors.New("target count does not match wallet count")
)
