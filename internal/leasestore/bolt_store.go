package leasestore

import (
	"context"
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"
)

var leaseBucket = []byte(leaseNamespace)

// BoltStore is the default, single-node lease store: one bbolt database,
// one bucket, one key, fsynced on every write via bbolt's Update transaction.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (creating if necessary) a bbolt database at path and
// ensures the lease bucket exists.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0644, bbolt.DefaultOptions)
	if err != nil {
		return nil, fmt.Errorf("leasestore: failed to open bolt db at %s: %w", path, err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(leaseBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("leasestore: failed to create lease bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// ReadLease implements Store.
func (s *BoltStore) ReadLease(ctx context.Context) (int64, error) {
	var pos int64
	found := false

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(leaseBucket)
		value := bucket.Get([]byte(leaseKey))
		if value == nil {
			return nil
		}
		if len(value) != 8 {
			return fmt.Errorf("leasestore: corrupt lease value, want 8 bytes got %d", len(value))
		}
		pos = int64(binary.BigEndian.Uint64(value))
		found = true
		return nil
	})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, ErrNotFound
	}
	return pos, nil
}

// WriteLease implements Store. The bbolt Update transaction commits (and
// fsyncs unless NoSync is set) before returning, so the write is durable
// by the time the caller gets control back.
func (s *BoltStore) WriteLease(ctx context.Context, pos int64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(pos))

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(leaseBucket)
		return bucket.Put([]byte(leaseKey), buf)
	})
}

// Ping implements Store.
func (s *BoltStore) Ping(ctx context.Context) error {
	return s.db.View(func(tx *bbolt.Tx) error { return nil })
}

// Close implements Store.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
