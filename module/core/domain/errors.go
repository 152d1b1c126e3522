package domain

import "errors"

// Rejected input: the sample is dropped and logged, state is untouched.
var (
	ErrInvalidCoordinate = errors.New("coordinate out of range")
	ErrLowAccuracy       = errors.New("accuracy above configured maximum")
	ErrStaleSample       = errors.New("sample not newer than last accepted")
)

// Failed operations: surfaced to the caller, no partial state mutation.
var (
	ErrInvalidZone = errors.New("invalid zone")
	ErrUnknownZone = errors.New("unknown zone")
	ErrNotTracked  = errors.New("pet is not tracked")
)
