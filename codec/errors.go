package codec

import "errors"

// ErrShortBuffer is returned when a Reader runs out of bytes mid-value.
var ErrShortBuffer = errors.New("codec: short buffer")

// ErrMalformed is returned when a value's encoding violates the format
// (an out-of-range tag, an invalid bool byte, an unknown Kind).
var ErrMalformed = errors.New("codec: malformed value")
