package cache

import (
	platformerrors "github.com/jmgilman/go/errors"
)

var (
	// ErrPersist is returned when a snapshot could not be written to durable storage
	ErrPersist = platformerrors.New(platformerrors.CodeDatabase, "failed to save data to cache")

	// ErrCorruptedData marks a durable record that failed to decode. Read paths
	// never return it; the record is deleted and treated as absent.
	ErrCorruptedData = platformerrors.New(platformerrors.CodeSchemaFailed, "cached data is corrupted")
)
