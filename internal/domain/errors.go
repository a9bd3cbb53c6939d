package domain

import "errors"

var (
	// ErrCatalogFormat is returned when a catalog source is not parseable
	// structured data; fatal to engine construction
	ErrCatalogFormat = errors.New("catalog source is not valid structured data")

	// ErrTripNotFound is returned when a trip id does not exist
	ErrTripNotFound = errors.New("trip not found")

	// ErrNotEnoughParticipants is returned when a match calculation is
	// requested before at least two participants have submitted preferences
	ErrNotEnoughParticipants = errors.New("need at least 2 participants")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")
)
