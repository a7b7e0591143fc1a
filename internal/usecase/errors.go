package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrConfiguration         = errors.New("configuration missing")
	ErrUpstreamFetch         = errors.New("upstream fetch failed")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
