package analysis

import (
	"errors"
	"fmt"
)

// Sentinel errors for the analysis layer. ErrSeedNotInGraph classifies
// as an invalid request: the caller named a propagation seed outside the
// analyzed graph.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrSeedNotInGraph = fmt.Errorf("%w: seed entity not in graph", ErrInvalidRequest)
)

// requestError wraps ErrInvalidRequest with the offending field and value.
func requestError(field string, value, bounds any) error {
	return fmt.Errorf("%w: %s %v outside %v", ErrInvalidRequest, field, value, bounds)
}
