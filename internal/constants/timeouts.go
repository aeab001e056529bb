// Package constants defines timeout values used throughout the application.
package constants

import "time"

// Timeout constants for various operations
const (
	// Outbound API request timeout
	APITimeout = 5 * time.Second

	// Home feed refresh period
	RefreshInterval = 24 * time.Hour

	// Delay between the last keystroke and the search request
	SearchDebounce = 300 * time.Millisecond

	// Idle searchers are dropped after this long
	SearchSessionTTL = 30 * time.Minute

	// Graceful shutdown budget
	ShutdownTimeout = 10 * time.Second
)
