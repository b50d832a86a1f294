// Package leasestore implements the Persistent Lease Store Adapter: a thin
// wrapper over an external durable store exposing a get/put of one integer
// under one key. It does not interpret the value; the lease manager owns
// that semantics.
package leasestore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by ReadLease when no lease has ever been written —
// i.e. this is the first boot against this store.
var ErrNotFound = errors.New("leasestore: no lease recorded")

// Store is the Persistent Lease Store Adapter interface: a get/put of one
// integer under one key, backed by whichever durable store a deployment
// chooses. Every call is a direct round-trip; implementations must not cache.
type Store interface {
	// ReadLease returns the last durably written lease start, or
	// ErrNotFound if none exists yet.
	ReadLease(ctx context.Context) (int64, error)

	// WriteLease durably persists pos as the new lease start. It must not
	// return until the write is durable.
	WriteLease(ctx context.Context, pos int64) error

	// Ping checks that the store is reachable, for health/readiness probes.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

const (
	leaseNamespace = "SEQUENCER"
	leaseKey       = "CURRENT"
)
