package geo

import "errors"

// Errors returned by the composition pipeline. Per-record data problems
// (a malformed WKT value, an unmatched join key) are recovered where they
// occur; these sentinels signal conditions that abort the current operation.
var (
	ErrSourceNotFound    = errors.New("geo: source not found")
	ErrMalformedGeometry = errors.New("geo: malformed geometry")
	ErrCRSAlreadySet     = errors.New("geo: crs already set")
	ErrUnknownSourceCRS  = errors.New("geo: source crs unknown")
	ErrUnknownCRS        = errors.New("geo: unregistered crs code")
	ErrDuplicateLayer    = errors.New("geo: duplicate layer name")
	ErrEmptyStack        = errors.New("geo: empty layer stack")
	ErrBadStyleRef       = errors.New("geo: style references missing attribute")
)
