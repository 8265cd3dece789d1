package catalog

import "errors"

var (
	ErrBookNotFound        = errors.New("book not found")
	ErrUpstreamUnavailable = errors.New("catalog upstream unavailable")
)
