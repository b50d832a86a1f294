package lease_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ordinate-io/sequencer/internal/lease"
	"github.com/ordinate-io/sequencer/internal/leasestore"
)

func TestManager_InitializeFreshStore(t *testing.T) {
	store := leasestore.NewMemoryStore()
	m := lease.NewManager(store, 100_000, 10_000, zap.NewNop())

	tail, err := m.Initialize(context.Background(), lease.NoInitialTokenOverride)
	require.NoError(t, err)
	assert.Equal(t, int64(0), tail)
	assert.Equal(t, int64(0), m.LeaseStart())
	assert.Equal(t, int64(100_000), m.LeaseLimit())
}

func TestManager_InitializeSkipsForwardPastPriorLease(t *testing.T) {
	store := leasestore.NewMemoryStore()
	require.NoError(t, store.WriteLease(context.Background(), 0))

	m := lease.NewManager(store, 100_000, 10_000, zap.NewNop())
	tail, err := m.Initialize(context.Background(), lease.NoInitialTokenOverride)
	require.NoError(t, err)

	assert.Equal(t, int64(100_000), tail)
	assert.Equal(t, int64(100_000), m.LeaseStart())

	persisted, err := store.ReadLease(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(100_000), persisted)
}

func TestManager_InitializeWithOverrideBypassesSkipForward(t *testing.T) {
	store := leasestore.NewMemoryStore()
	require.NoError(t, store.WriteLease(context.Background(), 500_000))

	m := lease.NewManager(store, 100_000, 10_000, zap.NewNop())
	tail, err := m.Initialize(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, int64(42), tail)
	assert.Equal(t, int64(42), m.LeaseStart())

	persisted, err := store.ReadLease(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), persisted)
}

func TestManager_MaybeRenewBelowThresholdDoesNothing(t *testing.T) {
	store := leasestore.NewMemoryStore()
	m := lease.NewManager(store, 100, 10, zap.NewNop())
	_, err := m.Initialize(context.Background(), lease.NoInitialTokenOverride)
	require.NoError(t, err)

	require.NoError(t, m.MaybeRenew(context.Background(), 50))
	assert.Equal(t, int64(0), m.LeaseStart())
}

func TestManager_MaybeRenewAtThresholdAdvances(t *testing.T) {
	store := leasestore.NewMemoryStore()
	m := lease.NewManager(store, 100, 10, zap.NewNop())
	_, err := m.Initialize(context.Background(), lease.NoInitialTokenOverride)
	require.NoError(t, err)

	// limit=100, renewalNotice=10: threshold is tail >= 90
	require.NoError(t, m.MaybeRenew(context.Background(), 90))
	assert.Equal(t, int64(100), m.LeaseStart())
	assert.Equal(t, int64(200), m.LeaseLimit())

	persisted, err := store.ReadLease(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(100), persisted)
}

func TestManager_RenewalAtThresholdAcrossManyGrants(t *testing.T) {
	store := leasestore.NewMemoryStore()
	m := lease.NewManager(store, 100, 10, zap.NewNop())
	_, err := m.Initialize(context.Background(), lease.NoInitialTokenOverride)
	require.NoError(t, err)

	for tail := int64(0); tail < 91; tail++ {
		require.NoError(t, m.MaybeRenew(context.Background(), tail))
	}
	assert.Equal(t, int64(100), m.LeaseStart())

	for tail := int64(91); tail < 201; tail++ {
		require.NoError(t, m.MaybeRenew(context.Background(), tail))
	}
	assert.True(t, m.LeaseStart() >= int64(200))
}
