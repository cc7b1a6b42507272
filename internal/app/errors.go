package service

import (
	"context"
	"errors"

	"github.com/jayant1554/credit-score-defi/internal/domain/calibration"
	"github.com/jayant1554/credit-score-defi/internal/domain/features"
	"github.com/jayant1554/credit-score-defi/internal/domain/normalize"
)

// Failure kinds reported by FailureKind.
const (
	FailureMalformedInput         = "malformed_input"
	FailureEmptyResult            = "empty_result"
	FailureInsufficientPopulation = "insufficient_population"
	FailureCanceled               = "canceled"
	FailureInternal               = "internal"
)

// FailureKind classifies a Run error.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, normalize.ErrMalformedInput):
		return FailureMalformedInput
	case errors.Is(err, features.ErrEmptyResult):
		return FailureEmptyResult
	case errors.Is(err, calibration.ErrInsufficientPopulation):
		return FailureInsufficientPopulation
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FailureCanceled
	default:
		return FailureInternal
	}
}
