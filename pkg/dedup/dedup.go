// Package dedup admits each isomorphism class at most once per bucket.
//
// A [Deduplicator] computes a graph's certificate through a
// [canon.Certifier] and asks the bucket's [Store] whether it is new. Stores
// are explicit per-bucket objects handed out by a [StoreFactory]; there is
// no package-level state, and every store admits atomically so concurrent
// writers never both win.
//
// # Backends
//
//   - memory: a mutex-guarded map (default)
//   - badger: one embedded key/value database, keys prefixed by bucket
//   - redis: one set per bucket, admission is SADD
//   - mongo: one collection with a unique (bucket, cert) index
package dedup

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/trigen/pkg/bucket"
	"github.com/matzehuels/trigen/pkg/canon"
	"github.com/matzehuels/trigen/pkg/errors"
	"github.com/matzehuels/trigen/pkg/observability"
)

// Store records the certificates admitted to one bucket.
type Store interface {
	// Admit records cert and returns true, or returns false when cert was
	// already present. Check and insert happen atomically.
	Admit(ctx context.Context, cert canon.Certificate) (bool, error)

	// Len returns the number of admitted certificates.
	Len(ctx context.Context) (int, error)

	// Close releases the store. The factory stays usable.
	Close() error
}

// StoreFactory opens the store of a bucket.
type StoreFactory interface {
	// Backend names the implementation, e.g. "badger".
	Backend() string

	// Open returns the store for b. Opening the same bucket twice yields
	// stores sharing the same admitted set.
	Open(ctx context.Context, b bucket.Bucket) (Store, error)

	// Close releases resources shared by all stores.
	Close() error
}

// Deduplicator admits graphs by certificate.
type Deduplicator struct {
	certifier canon.Certifier
	factory   StoreFactory

	mu     sync.Mutex
	stores map[bucket.Bucket]Store
}

// New returns a Deduplicator. A nil certifier means canon.Canonical{}.
func New(certifier canon.Certifier, factory StoreFactory) *Deduplicator {
	if certifier == nil {
		certifier = canon.Canonical{}
	}
	return &Deduplicator{
		certifier: certifier,
		factory:   factory,
		stores:    make(map[bucket.Bucket]Store),
	}
}

// Admit reports whether g is the first of its isomorphism class in b.
func (d *Deduplicator) Admit(ctx context.Context, b bucket.Bucket, g canon.Graph) (bool, error) {
	cert, err := d.certifier.Certificate(g)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeOracleFailure, err, "certificate for bucket %s", b)
	}
	s, err := d.store(ctx, b)
	if err != nil {
		return false, err
	}

	start := time.Now()
	ok, err := s.Admit(ctx, cert)
	if err != nil {
		observability.Store().OnError(ctx, d.factory.Backend(), b.String(), err)
		return false, errors.Wrap(errors.ErrCodeStore, err, "admit to bucket %s", b)
	}
	observability.Store().OnAdmit(ctx, d.factory.Backend(), b.String(), ok, time.Since(start))
	return ok, nil
}

// Backend names the store backend.
func (d *Deduplicator) Backend() string { return d.factory.Backend() }

// Store returns the store of b, opening it on first use.
func (d *Deduplicator) Store(ctx context.Context, b bucket.Bucket) (Store, error) {
	return d.store(ctx, b)
}

func (d *Deduplicator) store(ctx context.Context, b bucket.Bucket) (Store, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.stores[b]; ok {
		return s, nil
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	s, err := d.factory.Open(ctx, b)
	if err != nil {
		observability.Store().OnError(ctx, d.factory.Backend(), b.String(), err)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "open %s store for bucket %s", d.factory.Backend(), b)
	}
	d.stores[b] = s
	return s, nil
}

// Close closes every opened store and then the factory.
func (d *Deduplicator) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var first error
	for b, s := range d.stores {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
		delete(d.stores, b)
	}
	if err := d.factory.Close(); err != nil && first == nil {
		first = err
	}
	return first
}
