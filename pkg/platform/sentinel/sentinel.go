package sentinel

import "errors"

// Infrastructure facts returned by stores, optionally wrapped. The registry
// service translates them into domain errors; transports never see them.
//
//   - ErrNotFound: no record exists for the key
//   - ErrUnavailable: backing store or broker could not be reached
//
// Input validation failures use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
)
