package sim

import "errors"

// ErrInvalidConfiguration is returned by the Builder when a simulation cannot
// be built from the given parameters.
var ErrInvalidConfiguration = errors.New("invalid configuration")
