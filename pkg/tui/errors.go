package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C or /quit).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoSession is returned when a Runner is built without a session.
	ErrNoSession = errors.New("tui: session is required")
)
