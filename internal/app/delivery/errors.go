package delivery

import "errors"

var (
	ErrCityNotResolved = errors.New("city not found in address")
	ErrCityNotFound    = errors.New("city not found at carrier")
	ErrAuthFailure     = errors.New("carrier auth failed")
	ErrUnavailable     = errors.New("delivery estimate unavailable")
	ErrUpstream        = errors.New("carrier request failed")
)
