// Package lease implements the Lease Manager: it keeps the in-memory lease
// boundary L in step with the persisted value and enforces that the global
// tail never outruns it. It is always called from within the allocator's
// serialized critical section, never concurrently with itself.
package lease

import (
	"context"

	"go.uber.org/zap"

	"github.com/ordinate-io/sequencer/internal/errors"
	"github.com/ordinate-io/sequencer/internal/leasestore"
)

// NoInitialTokenOverride is the sentinel meaning "no administrative override
// was supplied" for Manager.Initialize.
const NoInitialTokenOverride int64 = -1

// Manager maintains the in-memory copy of the current lease start L and the
// configured lease length / renewal notice.
type Manager struct {
	store  leasestore.Store
	logger *zap.Logger

	leaseLength        int64
	leaseRenewalNotice int64

	// L is the current lease start. Only Initialize and MaybeRenew mutate it,
	// and both are only ever called from the allocator's single-writer path.
	l int64
}

// NewManager constructs a Manager bound to store. Call Initialize before any
// other method.
func NewManager(store leasestore.Store, leaseLength, leaseRenewalNotice int64, logger *zap.Logger) *Manager {
	return &Manager{
		store:              store,
		logger:             logger,
		leaseLength:        leaseLength,
		leaseRenewalNotice: leaseRenewalNotice,
	}
}

// Initialize reads the persisted lease and establishes L and the initial
// value of T. If initialTokenOverride is not NoInitialTokenOverride, it takes
// precedence: the store is forced to L := initialTokenOverride regardless of
// what was previously persisted, bypassing the skip-forward rule below. This
// is an administrative reset, not a normal boot path.
//
// Absent an override: if a persisted value p exists, L is set to
// p + leaseLength and T starts at L — the entire previously held range is
// skipped, because a prior process may have issued any position inside it
// and reusing those positions would violate total-order uniqueness. If
// nothing has ever been persisted, L and T both start at 0.
func (m *Manager) Initialize(ctx context.Context, initialTokenOverride int64) (initialTail int64, err error) {
	if initialTokenOverride != NoInitialTokenOverride {
		if err := m.store.WriteLease(ctx, initialTokenOverride); err != nil {
			return 0, errors.StorageUnavailable("failed to persist initial token override", err)
		}
		m.l = initialTokenOverride
		m.logger.Info("lease initialized from administrative override",
			zap.Int64("lease_start", m.l))
		return m.l, nil
	}

	persisted, err := m.store.ReadLease(ctx)
	if err != nil {
		if err == leasestore.ErrNotFound {
			if err := m.store.WriteLease(ctx, 0); err != nil {
				return 0, errors.StorageUnavailable("failed to persist initial lease", err)
			}
			m.l = 0
			m.logger.Info("lease initialized, no prior lease found", zap.Int64("lease_start", m.l))
			return 0, nil
		}
		return 0, errors.StorageUnavailable("failed to read persisted lease", err)
	}

	m.l = persisted + m.leaseLength
	if err := m.store.WriteLease(ctx, m.l); err != nil {
		return 0, errors.StorageUnavailable("failed to persist skip-forward lease", err)
	}

	m.logger.Info("lease initialized, skipping forward past prior lease",
		zap.Int64("prior_lease_start", persisted),
		zap.Int64("lease_start", m.l))

	return m.l, nil
}

// LeaseLimit returns L + leaseLength, the current upper bound the tail may
// not exceed until the lease is renewed. Renewal itself is triggered earlier,
// once the tail reaches LeaseLimit() - leaseRenewalNotice.
func (m *Manager) LeaseLimit() int64 {
	return m.l + m.leaseLength
}

// LeaseStart returns the current in-memory L.
func (m *Manager) LeaseStart() int64 {
	return m.l
}

// MaybeRenew renews the lease if currentTail has reached the renewal notice
// threshold before the current limit. It may block on the durable store;
// callers inside the allocator's critical section must budget for that.
// Returns an error only on a storage failure during renewal.
func (m *Manager) MaybeRenew(ctx context.Context, currentTail int64) error {
	limit := m.LeaseLimit()
	if currentTail < limit-m.leaseRenewalNotice {
		return nil
	}

	newL := m.l + m.leaseLength
	if err := m.store.WriteLease(ctx, newL); err != nil {
		return errors.StorageUnavailable("failed to persist renewed lease", err)
	}

	m.logger.Debug("lease renewed",
		zap.Int64("previous_lease_start", m.l),
		zap.Int64("new_lease_start", newL),
		zap.Int64("tail", currentTail))

	m.l = newL
	return nil
}
