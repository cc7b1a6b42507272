package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrNotFound     = errors.New("wallet not found")
	ErrInvalidLimit = errors.New("invalid ranking limit")
	ErrDuplicate    = errors.New("wallet already ranked")
)
