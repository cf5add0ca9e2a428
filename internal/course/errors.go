package course

import "errors"

// ErrInvalidPath reports a chapter path with out-of-range indices.
var ErrInvalidPath = errors.New("invalid chapter path")

// ErrMalformedTree reports a tree with an empty level.
var ErrMalformedTree = errors.New("malformed course tree")
