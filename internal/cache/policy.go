package cache

import "time"

// DefaultTimeout is the snapshot TTL used when none is configured
const DefaultTimeout = 300 * time.Second

// Policy decides whether a snapshot stored at a given instant is still valid.
//
// A negative timeout never expires, a zero timeout is always expired and a
// positive timeout is a normal TTL. Policy is an immutable value and safe for
// concurrent use.
type Policy struct {
	timeout time.Duration
}

// NewPolicy creates a policy with the given timeout
func NewPolicy(timeout time.Duration) Policy {
	return Policy{timeout: timeout}
}

// PolicyFromSeconds creates a policy from a signed number of seconds
func PolicyFromSeconds(seconds float64) Policy {
	return Policy{timeout: time.Duration(seconds * float64(time.Second))}
}

// Timeout returns the configured timeout
func (p Policy) Timeout() time.Duration {
	return p.timeout
}

// NeverExpires reports whether snapshots stay valid forever
func (p Policy) NeverExpires() bool {
	return p.timeout < 0
}

// IsValid reports whether a snapshot stored at storedAt is valid at now
func (p Policy) IsValid(storedAt, now time.Time) bool {
	switch {
	case p.timeout < 0:
		return true
	case p.timeout == 0:
		return false
	default:
		return now.Sub(storedAt) <= p.timeout
	}
}

// Remaining returns the time left before a snapshot stored at storedAt
// expires, never less than zero. A negative timeout is not special-cased and
// yields zero; check NeverExpires first.
func (p Policy) Remaining(storedAt, now time.Time) time.Duration {
	remaining := p.timeout - now.Sub(storedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ExpiresAt returns the instant a snapshot stored at storedAt expires.
// The zero time means never.
func (p Policy) ExpiresAt(storedAt time.Time) time.Time {
	if p.timeout < 0 {
		return time.Time{}
	}
	return storedAt.Add(p.timeout)
}
