package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrInvalidConfig indicates invalid or unreadable configuration
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotFound indicates a required resource was not found
	ErrNotFound = errors.New("not found")

	// ErrStructure indicates a malformed taxonomy or tree shape.
	// These are programmer errors in the curated data and halt the run.
	ErrStructure = errors.New("structural error")

	// ErrDuplicate indicates a name that must be unique appears twice
	// (common names across taxonomy leaves, sites across regions)
	ErrDuplicate = errors.New("duplicate name")
)
