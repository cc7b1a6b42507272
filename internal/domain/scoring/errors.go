package scoring

import "errors"

// ErrInvalidWeights reports an unusable sub-score weight table.
var ErrInvalidWeights = errors.New("invalid sub-score weights")
