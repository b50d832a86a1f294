package health_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ordinate-io/sequencer/internal/allocator"
	"github.com/ordinate-io/sequencer/internal/conflictcache"
	"github.com/ordinate-io/sequencer/internal/health"
	"github.com/ordinate-io/sequencer/internal/lease"
	"github.com/ordinate-io/sequencer/internal/leasestore"
	"github.com/ordinate-io/sequencer/internal/model"
	"github.com/ordinate-io/sequencer/internal/streamindex"
)

func newTestAllocator(t *testing.T) (*allocator.Allocator, leasestore.Store) {
	store := leasestore.NewMemoryStore()
	leaseMgr := lease.NewManager(store, 100_000, 10_000, zap.NewNop())
	idx := streamindex.New()
	cache := conflictcache.NewAdaptiveCache(10_000, 0.5, 0.5, zap.NewNop())
	alloc := allocator.New(leaseMgr, idx, cache, zap.NewNop())
	require.NoError(t, alloc.Initialize(context.Background(), lease.NoInitialTokenOverride))
	return alloc, store
}

func newAllocatorWithLease(t *testing.T, leaseLength, renewalNotice int64) (*allocator.Allocator, leasestore.Store) {
	store := leasestore.NewMemoryStore()
	leaseMgr := lease.NewManager(store, leaseLength, renewalNotice, zap.NewNop())
	idx := streamindex.New()
	cache := conflictcache.NewAdaptiveCache(10_000, 0.5, 0.5, zap.NewNop())
	alloc := allocator.New(leaseMgr, idx, cache, zap.NewNop())
	require.NoError(t, alloc.Initialize(context.Background(), lease.NoInitialTokenOverride))
	return alloc, store
}

func TestHealthChecker_HealthyWhenStoreReachable(t *testing.T) {
	alloc, store := newTestAllocator(t)
	hc := health.NewHealthChecker(&health.HealthCheckConfig{NodeID: "seq-1"}, alloc, store, zap.NewNop())

	hc.Start(ctxWithCancel(t))

	assert.True(t, hc.IsLive())
	assert.True(t, hc.IsReady())
}

func TestHealthChecker_UnhealthyWhenTailPinnedAgainstLeaseLimit(t *testing.T) {
	// renewalNotice of 0 means MaybeRenew only fires once the tail has
	// already reached the limit, so issuing right up to the limit pins the
	// tail exactly against it.
	alloc, store := newAllocatorWithLease(t, 1, 0)
	_, err := alloc.Handle(context.Background(), &model.TokenRequest{NumTokens: 1})
	require.NoError(t, err)

	hc := health.NewHealthChecker(&health.HealthCheckConfig{NodeID: "seq-1"}, alloc, store, zap.NewNop())
	hc.Start(ctxWithCancel(t))

	assert.True(t, hc.IsLive())
	assert.False(t, hc.IsReady())
	assert.Equal(t, model.NodeStatusUnhealthy, hc.GetStatus().Status)
}

func TestHealthChecker_SetReadinessOverride(t *testing.T) {
	alloc, store := newTestAllocator(t)
	hc := health.NewHealthChecker(&health.HealthCheckConfig{NodeID: "seq-1"}, alloc, store, zap.NewNop())

	hc.SetReadiness(false)
	assert.False(t, hc.IsReady())
}

// ctxWithCancel returns an already-cancelled context, so Start runs one
// synchronous check pass and returns instead of staying in the background
// ticker loop, which would outlive the test.
func ctxWithCancel(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	cancel()
	return ctx
}
