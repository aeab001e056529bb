// Package constants defines numerical limits.
package constants

// Limits and counts for various operations
const (
	// Maximum entries published per home feed list
	MaxListItems = 8

	// Maximum typeahead suggestions returned alongside full search results
	MaxSuggestions = 5

	// Number of per-session searchers kept alive
	SearchSessionCapacity = 1000
)
