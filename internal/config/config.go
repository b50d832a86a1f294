package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds gRPC server configuration.
type ServerConfig struct {
	NodeID          string        `yaml:"node_id"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	MaxConnections  int           `yaml:"max_connections"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LeaseConfig holds the lease protocol parameters and the choice of
// persistent lease store backend.
type LeaseConfig struct {
	// InitialToken is an administrative override of the starting global tail.
	// nil means "not set", distinct from an explicit initial_token: 0, which
	// is itself a legitimate override value. YAML leaves this nil when the
	// key is absent, so testing for the zero value here would conflate the
	// two.
	InitialToken       *int64 `yaml:"initial_token"`
	LeaseLength        int64  `yaml:"lease_length"`
	LeaseRenewalNotice int64  `yaml:"lease_renewal_notice"`
	Backend            string `yaml:"backend"` // "bolt", "redis", "postgres", "memory"

	BoltPath string `yaml:"bolt_path"`

	RedisHost     string `yaml:"redis_host"`
	RedisPort     int    `yaml:"redis_port"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	PostgresHost     string `yaml:"postgres_host"`
	PostgresPort     int    `yaml:"postgres_port"`
	PostgresDatabase string `yaml:"postgres_database"`
	PostgresUser     string `yaml:"postgres_user"`
	PostgresPassword string `yaml:"postgres_password"`
}

// ConflictCacheConfig holds the bounded conflict-key cache's size and policy.
type ConflictCacheConfig struct {
	MaxSize         int     `yaml:"max_size"`
	Policy          string  `yaml:"policy"` // "adaptive" or "lru"
	FrequencyWeight float64 `yaml:"frequency_weight"`
	RecencyWeight   float64 `yaml:"recency_weight"`
	AdaptiveWindow  time.Duration `yaml:"adaptive_window"`
}

// MembershipConfig holds informational cluster-presence advertisement
// configuration. This is advisory only; it plays no role in coordination or
// consensus, and a disabled membership advertiser does not affect
// correctness of token issuance.
type MembershipConfig struct {
	Enabled        bool          `yaml:"enabled"`
	BindPort       int           `yaml:"bind_port"`
	SeedNodes      []string      `yaml:"seed_nodes"`
	GossipInterval time.Duration `yaml:"gossip_interval"`
	ProbeTimeout   time.Duration `yaml:"probe_timeout"`
	ProbeInterval  time.Duration `yaml:"probe_interval"`
}

// LayoutConfig holds the optional layout/membership service client
// configuration, used only to advertise this sequencer's presence; the
// source of truth for who the active sequencer is lives outside this core.
type LayoutConfig struct {
	Enabled       bool          `yaml:"enabled"`
	BaseURL       string        `yaml:"base_url"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	MaxRetries    int           `yaml:"max_retries"`
}

// MetricsConfig holds metrics server configuration.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config represents the complete configuration for a sequencer process.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Lease         LeaseConfig         `yaml:"lease"`
	ConflictCache ConflictCacheConfig `yaml:"conflict_cache"`
	Membership    MembershipConfig    `yaml:"membership"`
	Layout        LayoutConfig        `yaml:"layout"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// LoadConfig loads configuration from a YAML file, applies defaults for
// unspecified fields, and validates the result.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 9090
	}
	if cfg.Server.MaxConnections == 0 {
		cfg.Server.MaxConnections = 1000
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}

	if cfg.Lease.LeaseLength == 0 {
		cfg.Lease.LeaseLength = 100_000
	}
	if cfg.Lease.LeaseRenewalNotice == 0 {
		cfg.Lease.LeaseRenewalNotice = 10_000
	}
	if cfg.Lease.Backend == "" {
		cfg.Lease.Backend = "bolt"
	}
	if cfg.Lease.BoltPath == "" {
		cfg.Lease.BoltPath = "/var/lib/sequencer/lease.db"
	}
	if cfg.Lease.RedisPort == 0 {
		cfg.Lease.RedisPort = 6379
	}
	if cfg.Lease.PostgresPort == 0 {
		cfg.Lease.PostgresPort = 5432
	}

	if cfg.ConflictCache.MaxSize == 0 {
		cfg.ConflictCache.MaxSize = 10_000
	}
	if cfg.ConflictCache.Policy == "" {
		cfg.ConflictCache.Policy = "adaptive"
	}
	if cfg.ConflictCache.FrequencyWeight == 0 {
		cfg.ConflictCache.FrequencyWeight = 0.5
	}
	if cfg.ConflictCache.RecencyWeight == 0 {
		cfg.ConflictCache.RecencyWeight = 0.5
	}
	if cfg.ConflictCache.AdaptiveWindow == 0 {
		cfg.ConflictCache.AdaptiveWindow = 5 * time.Minute
	}

	if cfg.Membership.GossipInterval == 0 {
		cfg.Membership.GossipInterval = 1 * time.Second
	}
	if cfg.Membership.ProbeTimeout == 0 {
		cfg.Membership.ProbeTimeout = 500 * time.Millisecond
	}
	if cfg.Membership.ProbeInterval == 0 {
		cfg.Membership.ProbeInterval = 1 * time.Second
	}

	if cfg.Layout.RetryInterval == 0 {
		cfg.Layout.RetryInterval = 5 * time.Second
	}
	if cfg.Layout.MaxRetries == 0 {
		cfg.Layout.MaxRetries = 10
	}

	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9100
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Validate checks the configuration for obviously invalid values.
func (c *Config) Validate() error {
	if c.Server.NodeID == "" {
		return fmt.Errorf("server.node_id is required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Lease.LeaseLength <= 0 {
		return fmt.Errorf("lease.lease_length must be positive")
	}
	if c.Lease.LeaseRenewalNotice < 0 || c.Lease.LeaseRenewalNotice > c.Lease.LeaseLength {
		return fmt.Errorf("lease.lease_renewal_notice must be between 0 and lease.lease_length")
	}
	switch c.Lease.Backend {
	case "bolt", "redis", "postgres", "memory":
	default:
		return fmt.Errorf("lease.backend must be one of bolt, redis, postgres, memory, got %q", c.Lease.Backend)
	}
	if c.ConflictCache.MaxSize <= 0 {
		return fmt.Errorf("conflict_cache.max_size must be positive")
	}
	switch c.ConflictCache.Policy {
	case "adaptive", "lru":
	default:
		return fmt.Errorf("conflict_cache.policy must be adaptive or lru, got %q", c.ConflictCache.Policy)
	}
	return nil
}
