package membership_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ordinate-io/sequencer/internal/allocator"
	"github.com/ordinate-io/sequencer/internal/conflictcache"
	"github.com/ordinate-io/sequencer/internal/lease"
	"github.com/ordinate-io/sequencer/internal/leasestore"
	"github.com/ordinate-io/sequencer/internal/membership"
	"github.com/ordinate-io/sequencer/internal/model"
	"github.com/ordinate-io/sequencer/internal/streamindex"
)

func newTestAllocator(t *testing.T) *allocator.Allocator {
	store := leasestore.NewMemoryStore()
	leaseMgr := lease.NewManager(store, 100_000, 10_000, zap.NewNop())
	idx := streamindex.New()
	cache := conflictcache.NewAdaptiveCache(10_000, 0.5, 0.5, zap.NewNop())
	alloc := allocator.New(leaseMgr, idx, cache, zap.NewNop())
	require.NoError(t, alloc.Initialize(context.Background(), lease.NoInitialTokenOverride))
	return alloc
}

func TestAdvertiser_NewJoinsAndReportsSelf(t *testing.T) {
	alloc := newTestAllocator(t)

	adv, err := membership.New(membership.Config{
		NodeID:         "seq-test-1",
		BindAddr:       "127.0.0.1",
		BindPort:       0,
		GossipInterval: 50 * time.Millisecond,
	}, alloc, zap.NewNop())
	require.NoError(t, err)
	defer adv.Shutdown()

	members := adv.Members()
	require.Contains(t, members, "seq-test-1")
}

func TestAdvertiser_RefreshSnapshotReflectsAllocatorState(t *testing.T) {
	alloc := newTestAllocator(t)

	_, err := alloc.Handle(context.Background(), &model.TokenRequest{NumTokens: 5})
	require.NoError(t, err)

	adv, err := membership.New(membership.Config{
		NodeID:   "seq-test-2",
		BindAddr: "127.0.0.1",
		BindPort: 0,
	}, alloc, zap.NewNop())
	require.NoError(t, err)
	defer adv.Shutdown()

	adv.RefreshSnapshot(model.NodeStatusHealthy)

	meta := adv.NodeMeta(4096)
	require.NotEmpty(t, meta)
}

func TestAdvertiser_NodeMetaTruncatesToLimit(t *testing.T) {
	alloc := newTestAllocator(t)

	adv, err := membership.New(membership.Config{
		NodeID:   "seq-test-3",
		BindAddr: "127.0.0.1",
		BindPort: 0,
	}, alloc, zap.NewNop())
	require.NoError(t, err)
	defer adv.Shutdown()

	meta := adv.NodeMeta(8)
	require.LessOrEqual(t, len(meta), 8)
}
