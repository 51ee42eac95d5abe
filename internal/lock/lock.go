// internal/lock/lock.go
//
// Package lock guards the scheduler's suggestion protocol: at most one live
// scheduling decision may exist per requisition. The interface is the
// minimal TTL-lease contract so any TTL-capable store can back it; the
// production implementation rides a NATS JetStream KeyValue bucket, the
// in-memory one serves single-instance deployments and tests.
package lock

import (
	"context"
	"time"
)

// Store is a TTL-leased lock keyed by requisition. The value of a held lock
// is the decision id of the SuggestionLog row it protects.
type Store interface {
	// Get returns the decision id held for the requisition, or ok=false when
	// no live lock exists.
	Get(ctx context.Context, requisitionID string) (decisionID string, ok bool, err error)

	// TryAcquire sets the lock to decisionID only if no live lock exists.
	// Returns false when another decision already holds it.
	TryAcquire(ctx context.Context, requisitionID, decisionID string) (bool, error)

	// Release drops the lock. Releasing an absent lock is not an error.
	Release(ctx context.Context, requisitionID string) error
}

// DefaultTTL is the lease duration applied when the config leaves it unset.
const DefaultTTL = 600 * time.Second
