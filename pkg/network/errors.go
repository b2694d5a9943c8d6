package network

import (
	"errors"
	"fmt"
)

// Sentinel errors for network construction.
var (
	ErrInvalidOptions = errors.New("invalid options")
	ErrBuildFailed    = errors.New("network build failed")
	ErrPathFailed     = errors.New("path search failed")
)

// optionError wraps ErrInvalidOptions with the offending field and value.
func optionError(field string, value, bounds any) error {
	return fmt.Errorf("%w: %s %v outside %v", ErrInvalidOptions, field, value, bounds)
}
