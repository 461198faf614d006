// Package session provides the server-side, per-session key/value storage the
// sign-in flow uses to correlate a provider redirect with the browser that
// started it. Values never travel in cookies; only the opaque session id does.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a (session, slot) pair holds no value.
var ErrNotFound = errors.New("session: slot not found")

// Store is the session store contract. Implementations must give
// read-your-writes consistency within one session, and Take must be atomic:
// when two callers race on the same slot exactly one gets the value.
type Store interface {
	Get(ctx context.Context, sessionID, slot string) ([]byte, error)
	Set(ctx context.Context, sessionID, slot string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, sessionID, slot string) error
	Take(ctx context.Context, sessionID, slot string) ([]byte, error)
}

func slotKey(sessionID, slot string) string {
	return "sess:" + sessionID + ":" + slot
}
