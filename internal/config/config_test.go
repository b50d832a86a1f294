package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordinate-io/sequencer/internal/config"
)

func writeConfigFile(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "sequencer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, "server:\n  node_id: seq-1\n")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "seq-1", cfg.Server.NodeID)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, int64(100_000), cfg.Lease.LeaseLength)
	assert.Equal(t, int64(10_000), cfg.Lease.LeaseRenewalNotice)
	assert.Nil(t, cfg.Lease.InitialToken)
	assert.Equal(t, "bolt", cfg.Lease.Backend)
	assert.Equal(t, "adaptive", cfg.ConflictCache.Policy)
	assert.Equal(t, 10_000, cfg.ConflictCache.MaxSize)
}

func TestLoadConfig_MissingNodeIDFailsValidation(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 9090\n")

	_, err := config.LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_InvalidBackendFailsValidation(t *testing.T) {
	path := writeConfigFile(t, "server:\n  node_id: seq-1\nlease:\n  backend: memcached\n")

	_, err := config.LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_RenewalNoticeExceedingLeaseLengthFailsValidation(t *testing.T) {
	path := writeConfigFile(t, "server:\n  node_id: seq-1\nlease:\n  lease_length: 100\n  lease_renewal_notice: 200\n")

	_, err := config.LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_ExplicitZeroInitialTokenIsNotTreatedAsUnset(t *testing.T) {
	path := writeConfigFile(t, "server:\n  node_id: seq-1\nlease:\n  initial_token: 0\n")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Lease.InitialToken)
	assert.Equal(t, int64(0), *cfg.Lease.InitialToken)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}
