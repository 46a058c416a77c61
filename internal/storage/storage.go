// Package storage provides durable key-value backends for the odds snapshot:
// Redis, a billy-backed filesystem, and an in-memory map.
package storage

import (
	platformerrors "github.com/jmgilman/go/errors"
)

// ErrNotFound is returned by Read when no record exists under the key
var ErrNotFound = platformerrors.New(platformerrors.CodeNotFound, "snapshot record not found")
