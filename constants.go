package aio

import "github.com/behrlich/go-aio/internal/constants"

// Re-export constants for public API.
const (
	DefaultBatchCapacity = constants.DefaultBatchCapacity
)
