package dedup

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	pkgerrors "github.com/pkg/errors"

	"github.com/matzehuels/trigen/pkg/bucket"
	"github.com/matzehuels/trigen/pkg/canon"
)

// maxConflictRetries bounds the retries of a transaction that lost a
// write-write race.
const maxConflictRetries = 8

// BadgerFactory stores all buckets in one badger database.
type BadgerFactory struct {
	db *badger.DB
}

// OpenBadger opens (or creates) the database at path. An empty path opens
// an in-memory database.
func OpenBadger(path string) (*BadgerFactory, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.MetricsEnabled = false
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "open badger at %q", path)
	}
	return &BadgerFactory{db: db}, nil
}

// Backend implements StoreFactory.
func (*BadgerFactory) Backend() string { return "badger" }

// Open implements StoreFactory.
func (f *BadgerFactory) Open(_ context.Context, b bucket.Bucket) (Store, error) {
	return &badgerStore{db: f.db, prefix: []byte("cert/" + b.String() + "/")}, nil
}

// Close implements StoreFactory.
func (f *BadgerFactory) Close() error {
	if f.db == nil {
		return nil
	}
	err := f.db.Close()
	f.db = nil
	return err
}

type badgerStore struct {
	db     *badger.DB
	prefix []byte
}

func (s *badgerStore) key(cert canon.Certificate) []byte {
	k := make([]byte, 0, len(s.prefix)+len(cert))
	k = append(k, s.prefix...)
	return append(k, cert...)
}

// Admit checks and sets the certificate key in one transaction.
func (s *badgerStore) Admit(ctx context.Context, cert canon.Certificate) (bool, error) {
	key := s.key(cert)
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		added := false
		err := s.db.Update(func(txn *badger.Txn) error {
			_, err := txn.Get(key)
			switch err {
			case nil:
				return nil
			case badger.ErrKeyNotFound:
				added = true
				return txn.Set(key, nil)
			default:
				return err
			}
		})
		if err == badger.ErrConflict && attempt < maxConflictRetries {
			continue
		}
		if err != nil {
			return false, pkgerrors.Wrap(err, "badger admit")
		}
		return added, nil
	}
}

// Len counts the keys under the bucket prefix.
func (s *badgerStore) Len(context.Context) (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: s.prefix})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, pkgerrors.Wrap(err, "badger len")
	}
	return n, nil
}

func (s *badgerStore) Close() error { return nil }
