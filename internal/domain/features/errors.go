package features

import "errors"

// ErrEmptyResult reports that no wallet has any valid event data.
var ErrEmptyResult = errors.New("no valid transaction data found to process after engineering features")
