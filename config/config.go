// Package config loads, validates, and hot-reloads vhub's runtime
// configuration. A single YAML file describes the listen address, snapshot
// storage, device-session timeouts, the relay store DSN, and optional TLS and
// S3 mirror settings; fsnotify watches the file for edits and swaps in a new
// validated Config atomically.
package config

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete vhub runtime configuration.
type Config struct {
	// Listen is the TCP address the hub's device/client session listener binds to.
	Listen string `yaml:"listen"`

	// RESTAddr is the address the REST API (chi router) binds to.
	RESTAddr string `yaml:"rest_addr"`

	TLS        TLSConfig        `yaml:"tls"`
	Timeouts   TimeoutConfig    `yaml:"timeouts"`
	Snapshot   SnapshotConfig   `yaml:"snapshot"`
	RelayStore RelayStoreConfig `yaml:"relay_store"`
	Auth       AuthConfig       `yaml:"auth"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// TelemetryConfig controls OpenTelemetry trace export. Disabled by default;
// a deployment opts in by pointing Endpoint at a collector.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
}

// TLSConfig configures TLS termination on the session listener and REST API.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// TimeoutConfig holds the session-loop and request-correlation timeouts.
type TimeoutConfig struct {
	// IdleTimeout closes a session that has sent nothing, including keepalives,
	// for this long.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// GetStreamTimeout bounds how long CS_GET_STREAM_REQ waits on the device's
	// DS_PUSH_STREAM_ACK before failing the client with REQUEST_TIMEOUT.
	GetStreamTimeout time.Duration `yaml:"get_stream_timeout"`

	// PollInterval is the cooperative poll-wait quantum (spec.md's 100ms tick).
	PollInterval time.Duration `yaml:"poll_interval"`
}

// SnapshotConfig controls where DS_POST_SNAP_REQ uploads land.
type SnapshotConfig struct {
	LocalRoot string      `yaml:"local_root"`
	WebRoot   string      `yaml:"web_root"`
	IndexPath string      `yaml:"index_path"` // sqlite index db path; empty disables indexing
	S3        S3MirrorConfig `yaml:"s3"`
}

// S3MirrorConfig optionally mirrors written snapshots to an S3-compatible bucket.
type S3MirrorConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"` // non-empty for S3-compatible stores other than AWS
	Prefix   string `yaml:"prefix"`

	// AccessKey/SecretKey pin a static credential pair, needed for
	// S3-compatible stores (minio and similar) that don't participate in
	// the AWS default credential chain. Both empty falls back to that chain.
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// RelayStoreConfig configures the Redis-backed relay-hook store. Addr empty
// runs the hub standalone with relay.NoopHooks (no playback-server brokering,
// single-instance deployments only).
type RelayStoreConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// StreamIDTimeout must be positive when Addr is set. It is not passed to
	// the relay hooks: stream ids minted by GenStreamID expire after
	// Timeouts.GetStreamTimeout.
	StreamIDTimeout time.Duration `yaml:"stream_id_timeout"`
}

// AuthConfig maps a device serial to the bcrypt hash of its expected token.
// A serial with no entry registers without a token check, matching
// original_source's never-enforced validation.
type AuthConfig struct {
	DeviceTokenHashes map[string]string `yaml:"device_token_hashes"`
}

// Validate checks that the configuration is internally consistent. It is
// called by Load and by SafeConfig.Update before a hot-reloaded config
// replaces the live one.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.RESTAddr == "" {
		return fmt.Errorf("rest_addr is required")
	}
	if c.TLS.Enabled {
		if c.TLS.CertFile == "" || c.TLS.KeyFile == "" {
			return fmt.Errorf("tls.cert_file and tls.key_file are required when tls.enabled")
		}
	}
	if c.Timeouts.IdleTimeout <= 0 {
		return fmt.Errorf("timeouts.idle_timeout must be positive")
	}
	if c.Timeouts.GetStreamTimeout <= 0 {
		return fmt.Errorf("timeouts.get_stream_timeout must be positive")
	}
	if c.Timeouts.PollInterval <= 0 {
		return fmt.Errorf("timeouts.poll_interval must be positive")
	}
	if c.Timeouts.PollInterval > c.Timeouts.GetStreamTimeout {
		return fmt.Errorf("timeouts.poll_interval must not exceed timeouts.get_stream_timeout")
	}
	if c.Snapshot.LocalRoot == "" {
		return fmt.Errorf("snapshot.local_root is required")
	}
	if c.Snapshot.S3.Enabled && c.Snapshot.S3.Bucket == "" {
		return fmt.Errorf("snapshot.s3.bucket is required when snapshot.s3.enabled")
	}
	if c.RelayStore.Addr != "" && c.RelayStore.StreamIDTimeout <= 0 {
		return fmt.Errorf("relay_store.stream_id_timeout must be positive when relay_store.addr is set")
	}
	return nil
}

// Default returns a Config with the spec's default timeouts and an otherwise
// empty, invalid configuration — callers must still set Listen, RESTAddr, and
// Snapshot.LocalRoot before Validate will pass.
func Default() *Config {
	return &Config{
		Timeouts: TimeoutConfig{
			IdleTimeout:      60 * time.Second,
			GetStreamTimeout: 10 * time.Second,
			PollInterval:     100 * time.Millisecond,
		},
	}
}

// Load reads and parses a YAML config file, applies defaults for any
// unset timeout, and validates the result.
func Load(path string) (*Config, error) {
	data, err := safeReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Clone returns a deep copy of the configuration, used by SafeConfig.Get so
// callers cannot mutate the live config through the map they're handed back.
func (c *Config) Clone() *Config {
	if c == nil {
		return Default()
	}

	// JSON round-trip gives a cheap deep copy without hand-written field-by-field
	// cloning for every nested struct (including the token-hash map).
	data, err := json.Marshal(c)
	if err != nil {
		copied := *c
		return &copied
	}
	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *c
		return &copied
	}
	return &clone
}
