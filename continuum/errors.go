package continuum

import "errors"

// ErrInvalidGroup is returned by New when the input group is empty or its
// total weight does not clear machine epsilon. The caller's existing
// continuum, if any, is left untouched.
var ErrInvalidGroup = errors.New("the total weight of the routing group must be positive")

// ErrHashUnavailable is returned by New when the configured HasherFactory
// fails to produce a Hasher, e.g. because the underlying hash implementation
// could not be initialized. It is not recoverable for that call.
var ErrHashUnavailable = errors.New("hash implementation is unavailable")
