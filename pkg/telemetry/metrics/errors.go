package metrics

import "errors"

// ErrNegativeIncrement is returned when a counter is incremented by a
// negative amount. The counter value is left unchanged.
var ErrNegativeIncrement = errors.New("counter increment must be non-negative")
