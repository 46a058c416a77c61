package repository

import (
	platformerrors "github.com/jmgilman/go/errors"
)

// ErrUnavailable is returned by Fetch when the cache is cold or expired, the
// upstream failed and no stale snapshot exists. It wraps the upstream error.
var ErrUnavailable = platformerrors.New(platformerrors.CodeUnavailable, "no odds available from upstream or cache")
