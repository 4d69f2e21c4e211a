package database

import "errors"

var (
	// ErrConflict means the conditional status write lost a race: the record
	// was already committed by someone else. Expected outcome, not a fault.
	ErrConflict = errors.New("opportunity already committed")

	// ErrNotFound is returned when an id-keyed read matches no row.
	ErrNotFound = errors.New("record not found")

	// ErrNotAvailable means the artist already holds a commitment on the date.
	ErrNotAvailable = errors.New("date not available")

	ErrPastDate   = errors.New("date is in the past")
	ErrDateTooFar = errors.New("date is too far in the future")

	// ErrUnknownArtist is returned when an artist id is missing from the roster.
	ErrUnknownArtist = errors.New("artist not found in roster")
)
