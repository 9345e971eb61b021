package slub

import "errors"

// ErrNoClass indicates a request larger than the largest configured size
// class; such requests belong on the frame-allocator path.
var ErrNoClass = errors.New("slub: no size class large enough")

// ErrBadConfig indicates an invalid size-class configuration.
var ErrBadConfig = errors.New("slub: invalid class config")
