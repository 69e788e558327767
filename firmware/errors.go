package firmware

import "errors"

// ErrMalformedImage is returned when an image cannot be parsed or describes
// data outside of its own bytes.
var ErrMalformedImage = errors.New("malformed image")
