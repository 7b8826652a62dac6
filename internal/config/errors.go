package config

import "errors"

// Configuration errors.
var (
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("invalid configuration")

	// ErrWatcherClosed is returned when operating on a stopped watcher.
	ErrWatcherClosed = errors.New("watcher is closed")
)
