package leasestore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordinate-io/sequencer/internal/leasestore"
)

func TestBoltStore_ReadBeforeWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lease.db")
	store, err := leasestore.NewBoltStore(path)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.ReadLease(context.Background())
	assert.ErrorIs(t, err, leasestore.ErrNotFound)
}

func TestBoltStore_WriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lease.db")
	store, err := leasestore.NewBoltStore(path)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.WriteLease(ctx, 50_000))

	pos, err := store.ReadLease(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(50_000), pos)
}

func TestBoltStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lease.db")
	ctx := context.Background()

	store, err := leasestore.NewBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, store.WriteLease(ctx, 123_456))
	require.NoError(t, store.Close())

	reopened, err := leasestore.NewBoltStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	pos, err := reopened.ReadLease(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(123_456), pos)
}
