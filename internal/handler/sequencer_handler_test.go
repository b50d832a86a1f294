package handler_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ordinate-io/sequencer/internal/allocator"
	"github.com/ordinate-io/sequencer/internal/conflictcache"
	"github.com/ordinate-io/sequencer/internal/handler"
	"github.com/ordinate-io/sequencer/internal/lease"
	"github.com/ordinate-io/sequencer/internal/leasestore"
	"github.com/ordinate-io/sequencer/internal/streamindex"
	"github.com/ordinate-io/sequencer/internal/validation"
	pb "github.com/ordinate-io/sequencer/pkg/sequencerpb"
)

func newTestHandler(t *testing.T) *handler.SequencerHandler {
	store := leasestore.NewMemoryStore()
	leaseMgr := lease.NewManager(store, 100_000, 10_000, zap.NewNop())
	idx := streamindex.New()
	cache := conflictcache.NewAdaptiveCache(10_000, 0.5, 0.5, zap.NewNop())
	alloc := allocator.New(leaseMgr, idx, cache, zap.NewNop())
	require.NoError(t, alloc.Initialize(context.Background(), lease.NoInitialTokenOverride))

	return handler.NewSequencerHandler(alloc, validation.NewValidator(), zap.NewNop())
}

func TestRequestToken_NonStreamPath(t *testing.T) {
	h := newTestHandler(t)

	resp, err := h.RequestToken(context.Background(), &pb.TokenRequest{NumTokens: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.Token)
}

func TestRequestToken_StreamPathRoundTrip(t *testing.T) {
	h := newTestHandler(t)
	streamID := uuid.New()

	resp, err := h.RequestToken(context.Background(), &pb.TokenRequest{
		NumTokens:  1,
		StreamsSet: true,
		Streams:    [][]byte{streamID[:]},
	})
	require.NoError(t, err)
	require.Len(t, resp.BackpointerStreams, 1)
	assert.Equal(t, streamID[:], resp.BackpointerStreams[0])
	assert.Equal(t, int64(-1), resp.BackpointerValues[0])
}

func TestRequestToken_MalformedOverwriteCombination(t *testing.T) {
	h := newTestHandler(t)
	streamID := uuid.New()

	_, err := h.RequestToken(context.Background(), &pb.TokenRequest{
		NumTokens:       1,
		StreamsSet:      true,
		Streams:         [][]byte{streamID[:]},
		Overwrite:       true,
		ReplexOverwrite: true,
	})
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestRequestToken_InvalidStreamIDBytes(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.RequestToken(context.Background(), &pb.TokenRequest{
		NumTokens:  1,
		StreamsSet: true,
		Streams:    [][]byte{[]byte("too-short")},
	})
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestPing_ReturnsGlobalTail(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.RequestToken(context.Background(), &pb.TokenRequest{NumTokens: 3})
	require.NoError(t, err)

	resp, err := h.Ping(context.Background(), &pb.PingRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.GlobalTail)
}
