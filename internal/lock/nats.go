// internal/lock/nats.go
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSLock implements Store on a JetStream KeyValue bucket. The lease TTL is
// enforced at bucket level: entries vanish when the TTL elapses, so a crashed
// scheduler never wedges a requisition for longer than the TTL.
type NATSLock struct {
	kv jetstream.KeyValue
}

var _ Store = (*NATSLock)(nil)

// NewNATSLock creates or opens the lock bucket. Creation races between
// concurrently starting instances are resolved by falling back to opening
// the existing bucket.
func NewNATSLock(ctx context.Context, nc *nats.Conn, bucket string, ttl time.Duration) (*NATSLock, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	kv, err := js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "suggestion decision leases",
		TTL:         ttl,
	})
	if err != nil {
		if !errors.Is(err, jetstream.ErrBucketExists) {
			return nil, err
		}
		kv, err = js.KeyValue(ctx, bucket)
		if err != nil {
			return nil, err
		}
	}
	return &NATSLock{kv: kv}, nil
}

func (l *NATSLock) Get(ctx context.Context, requisitionID string) (string, bool, error) {
	entry, err := l.kv.Get(ctx, requisitionID)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(entry.Value()), true, nil
}

func (l *NATSLock) TryAcquire(ctx context.Context, requisitionID, decisionID string) (bool, error) {
	_, err := l.kv.Create(ctx, requisitionID, []byte(decisionID))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (l *NATSLock) Release(ctx context.Context, requisitionID string) error {
	err := l.kv.Purge(ctx, requisitionID)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return err
	}
	return nil
}
