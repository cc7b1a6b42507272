package eventio

import "errors"

// Sentinel errors for this package.
var (
	ErrMalformedJSON = errors.New("malformed event JSON")
	ErrUnknownFormat = errors.New("unknown output format")
)
