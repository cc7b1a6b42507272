package gbt

import "errors"

// Sentinel errors returned by Fit and Predict.
var (
	ErrInvalidParams = errors.New("gbt: invalid parameters")
	ErrEmptyData     = errors.New("gbt: empty training data")
	ErrShape         = errors.New("gbt: inconsistent matrix shape")
)
