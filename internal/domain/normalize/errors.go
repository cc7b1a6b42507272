package normalize

import "errors"

// ErrMalformedInput reports an event collection that does not match the
// expected record schema.
var ErrMalformedInput = errors.New("malformed input")
