package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoOptions is returned for select fields without an option list.
	ErrNoOptions = errors.New("tui: select field has no options")
)
