// Package allocator implements the Token Allocator: the single serializing
// entry point that consults the Lease Manager, resolves transactions against
// the Conflict Cache and Stream Index, advances the global tail, and
// assembles the response. Every mutating call is serialized under one mutex;
// query-path calls share the same lock for simplicity, since the underlying
// state is cheap to read.
package allocator

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ordinate-io/sequencer/internal/conflictcache"
	"github.com/ordinate-io/sequencer/internal/errors"
	"github.com/ordinate-io/sequencer/internal/lease"
	"github.com/ordinate-io/sequencer/internal/metrics"
	"github.com/ordinate-io/sequencer/internal/model"
	"github.com/ordinate-io/sequencer/internal/streamindex"
)

// Allocator is the core token-issuing engine. It owns the global tail T
// exclusively; the Stream Index and Conflict Cache are shared with read-only
// query paths but all writes to them happen from Handle.
type Allocator struct {
	mu sync.Mutex

	lease   *lease.Manager
	index   *streamindex.Index
	cache   conflictcache.Cache
	logger  *zap.Logger
	metrics *metrics.Metrics

	// t is the global tail: the next position to be issued.
	t int64
}

// SetMetrics attaches a metrics recorder. Optional; Handle works fine
// without one, which keeps unit tests free of a Prometheus registry.
func (a *Allocator) SetMetrics(m *metrics.Metrics) {
	a.metrics = m
}

// New constructs an Allocator. Call Initialize before Handle.
func New(leaseManager *lease.Manager, index *streamindex.Index, cache conflictcache.Cache, logger *zap.Logger) *Allocator {
	return &Allocator{
		lease:  leaseManager,
		index:  index,
		cache:  cache,
		logger: logger,
	}
}

// Initialize establishes the starting value of T from the Lease Manager.
// initialTokenOverride should be lease.NoInitialTokenOverride unless the
// operator supplied an administrative reset.
func (a *Allocator) Initialize(ctx context.Context, initialTokenOverride int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	t, err := a.lease.Initialize(ctx, initialTokenOverride)
	if err != nil {
		return err
	}
	a.t = t
	return nil
}

// GlobalTail returns the current value of T. Intended for metrics/health;
// takes the same lock as Handle so it reflects a consistent snapshot.
func (a *Allocator) GlobalTail() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.t
}

// LeaseLimit returns the current lease boundary T is not allowed to cross
// without a renewal. Intended for health/readiness checks.
func (a *Allocator) LeaseLimit() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lease.LeaseLimit()
}

// Handle processes a single TokenRequest and returns the TokenResponse. It
// is the only point of mutation for T, L, the Stream Index, and the
// Conflict Cache, and is safe to call concurrently from many goroutines —
// every call blocks on the allocator's single mutex, so calls run one at a
// time (sync.Mutex does not guarantee they run in arrival order).
func (a *Allocator) Handle(ctx context.Context, req *model.TokenRequest) (*model.TokenResponse, error) {
	if req.Overwrite && req.ReplexOverwrite {
		return nil, errors.MalformedRequest("overwrite and replexOverwrite must not both be set")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if req.IsQuery() {
		if a.metrics != nil {
			a.metrics.QueryRequestsTotal.Inc()
		}
		return a.handleQuery(req), nil
	}

	if err := a.checkLease(ctx, int64(req.NumTokens)); err != nil {
		if a.metrics != nil && errors.GetCode(err) == errors.ErrCodeLeaseExhausted {
			a.metrics.LeaseExhaustedTotal.Inc()
		}
		return nil, err
	}
	if a.metrics != nil {
		a.metrics.LeaseBoundary.Set(float64(a.lease.LeaseStart()))
	}

	if !req.HasStreams() {
		resp := a.handleNonStream(req)
		a.recordIssuance(req.NumTokens)
		return resp, nil
	}

	if req.TxnResolution {
		if a.metrics != nil {
			a.metrics.TxnResolutionsTotal.Inc()
		}
		if aborted := a.resolveTransaction(req); aborted {
			a.logger.Debug("transaction aborted",
				zap.Int64("read_timestamp", req.ReadTimestamp),
				zap.Int("read_set_size", len(req.ReadSet)))
			if a.metrics != nil {
				a.metrics.TxnAbortsTotal.Inc()
			}
			return &model.TokenResponse{
				Token:          model.NoToken,
				BackpointerMap: map[model.StreamID]int64{},
				StreamTokens:   map[model.StreamID]int64{},
			}, nil
		}
		if a.metrics != nil {
			a.metrics.TxnCommitsTotal.Inc()
		}
	}

	resp := a.handleGrant(req)
	a.recordIssuance(req.NumTokens)
	return resp, nil
}

// recordIssuance updates the allocator's issuance metrics after a successful
// non-abort grant. Kept separate from Handle so both the non-stream and
// grant paths share it.
func (a *Allocator) recordIssuance(n uint32) {
	if a.metrics == nil {
		return
	}
	a.metrics.TokenRequestsTotal.Inc()
	a.metrics.TokensIssuedTotal.Add(float64(n))
	a.metrics.GlobalTail.Set(float64(a.t))
}

// handleQuery implements the n=0 read-only path. It does not advance T.
func (a *Allocator) handleQuery(req *model.TokenRequest) *model.TokenResponse {
	streamTails := make(map[model.StreamID]int64, len(req.Streams))
	maxStreamGlobal := int64(-1)
	sawAny := false

	for _, id := range req.Streams {
		streamTails[id] = a.index.QueryLocal(id)

		back := a.index.QueryBack(id)
		if back > maxStreamGlobal {
			maxStreamGlobal = back
		}
		sawAny = true
	}

	var globalTail int64
	if !sawAny {
		globalTail = a.t - 1
	} else {
		globalTail = maxStreamGlobal
	}

	return &model.TokenResponse{
		Token:          globalTail,
		BackpointerMap: map[model.StreamID]int64{},
		StreamTokens:   streamTails,
	}
}

// checkLease renews the lease if T is within the renewal notice threshold of
// the current limit, then verifies that issuing n more tokens would still
// stay within the (possibly just-renewed) limit. Returns LeaseExhausted if
// not — T is left untouched in that case. A failed renewal does not by itself
// refuse the grant: while n more tokens still fit under the current limit the
// grant proceeds, and once they do not, the LeaseExhausted error carries the
// storage failure as its cause.
func (a *Allocator) checkLease(ctx context.Context, n int64) error {
	renewErr := a.lease.MaybeRenew(ctx, a.t)
	if renewErr != nil {
		a.logger.Warn("lease renewal failed", zap.Error(renewErr))
	}

	limit := a.lease.LeaseLimit()
	if a.t+n > limit {
		exhausted := errors.LeaseExhausted(limit, a.t+n)
		exhausted.Cause = renewErr
		return exhausted
	}
	return nil
}

// handleNonStream implements the S-is-null path: a pure fetch-add on T with
// no index updates.
func (a *Allocator) handleNonStream(req *model.TokenRequest) *model.TokenResponse {
	base := a.t
	a.t += int64(req.NumTokens)

	return &model.TokenResponse{
		Token:          base,
		BackpointerMap: map[model.StreamID]int64{},
		StreamTokens:   map[model.StreamID]int64{},
	}
}

// resolveTransaction applies the abort rule: a transaction aborts iff any
// stream in the read set has been extended past the client's snapshot,
// checked first against explicit conflict keys (if any) and then, as the
// safety net, against the stream back-pointer map.
func (a *Allocator) resolveTransaction(req *model.TokenRequest) (aborted bool) {
	for _, key := range req.ConflictKeys {
		reduced := conflictcache.ReduceKey(key)
		if pos, found := a.cache.Lookup(reduced); found && pos > req.ReadTimestamp {
			return true
		}
	}

	for _, id := range req.ReadSet {
		back := a.index.QueryBack(id)
		if back != streamindex.Absent && back > req.ReadTimestamp {
			return true
		}
	}

	return false
}

// handleGrant implements the commit / non-txn-with-streams path: reserve
// [T, T+n), update the back-pointer and (conditionally) local-tail maps for
// every requested stream, and assemble the response.
func (a *Allocator) handleGrant(req *model.TokenRequest) *model.TokenResponse {
	base := a.t
	n := int64(req.NumTokens)
	a.t += n
	end := base + n - 1

	backPointerMap := make(map[model.StreamID]int64, len(req.Streams))
	streamTokens := make(map[model.StreamID]int64, len(req.Streams))

	advancesLocalTail := !req.Overwrite

	for _, id := range req.Streams {
		previous := a.index.UpdateBackPointer(id, end)
		backPointerMap[id] = previous

		if advancesLocalTail {
			streamTokens[id] = a.index.AdvanceLocalTail(id, req.NumTokens)
		}
	}

	for _, key := range req.ConflictKeys {
		a.cache.RecordWrite(conflictcache.ReduceKey(key), end)
	}

	return &model.TokenResponse{
		Token:          base,
		BackpointerMap: backPointerMap,
		StreamTokens:   streamTokens,
	}
}
