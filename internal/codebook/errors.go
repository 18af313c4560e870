package codebook

import "errors"

var (
	// ErrUnknownProject marks a codebook built for a project that discovery
	// did not find. Such a codebook has no entities and never writes.
	ErrUnknownProject = errors.New("unknown project")

	// ErrMissingGenericFile means the generic list was declared available but
	// its rows could not be read. The whole project load fails.
	ErrMissingGenericFile = errors.New("generic code list unreadable")

	// ErrMalformedRow marks a row that does not have the (label, description)
	// shape. It is logged and recovered from, never returned by a load.
	ErrMalformedRow = errors.New("malformed row")

	// ErrPersistence wraps failures of the persistence collaborator.
	ErrPersistence = errors.New("failed to persist codebook")
)
