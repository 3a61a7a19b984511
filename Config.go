// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package webhdfs

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Transport names accepted in Config.Transport
const (
	TransportWebHdfs = "webhdfs"
	TransportRpc     = "rpc"
)

// Config describes how to reach a cluster
type Config struct {
	Entrypoint string            `yaml:"entrypoint"` // WebHDFS base URL, webhdfs transport
	Namenodes  []string          `yaml:"namenodes"`  // host:port of NameNode RPC endpoints, rpc transport
	User       string            `yaml:"user"`       // user.name / RPC user
	Timeout    time.Duration     `yaml:"timeout"`    // per operation deadline, e.g. "30s"
	NatMap     map[string]string `yaml:"natmap"`     // DataNode address translation
	Transport  string            `yaml:"transport"`  // webhdfs or rpc
	Retry      RetryConfig       `yaml:"retry"`      // retries of metadata operations
}

// RetryConfig configures RetryPolicy. MaxAttempts <= 1 disables retries.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	TimeLimit   time.Duration `yaml:"time_limit"`
	MinDelay    time.Duration `yaml:"min_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
}

// Returns configuration with defaults: webhdfs transport, 30s timeout, no retries
func DefaultConfig() *Config {
	return &Config{
		Timeout:   DefaultTimeout,
		Transport: TransportWebHdfs,
		Retry:     RetryConfig{MaxAttempts: 1},
	}
}

// Loads configuration from a YAML file. Missing keys keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency
func (this *Config) Validate() error {
	if this.Timeout <= 0 {
		return errors.Errorf("timeout must be positive, got %s", this.Timeout)
	}
	switch this.Transport {
	case TransportWebHdfs:
		if this.Entrypoint == "" {
			return errors.New("entrypoint is required for the webhdfs transport")
		}
	case TransportRpc:
		if len(this.Namenodes) == 0 {
			return errors.New("namenodes are required for the rpc transport")
		}
	default:
		return errors.Errorf("unknown transport %q", this.Transport)
	}
	return nil
}

// RetryPolicy builds the retry policy for metadata operations
func (this *Config) RetryPolicy(clock Clock) *RetryPolicy {
	if this.Retry.MaxAttempts <= 1 {
		return NewNoRetryPolicy()
	}
	policy := NewDefaultRetryPolicy(clock)
	policy.MaxAttempts = this.Retry.MaxAttempts
	if this.Retry.TimeLimit > 0 {
		policy.TimeLimit = this.Retry.TimeLimit
	}
	if this.Retry.MinDelay > 0 {
		policy.MinDelay = this.Retry.MinDelay
	}
	if this.Retry.MaxDelay > 0 {
		policy.MaxDelay = this.Retry.MaxDelay
	}
	return policy
}

// Creates the transport described by the configuration
func NewAsyncClient(cfg *Config) (AsyncClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var acx AsyncClient
	switch cfg.Transport {
	case TransportRpc:
		native, err := NewNativeHdfsClient(cfg.Namenodes, cfg.User, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		acx = native
	default:
		rest, err := NewHdfsClientWithOptions(cfg.Entrypoint, NatMap(cfg.NatMap), HdfsClientOptions{User: cfg.User, Timeout: cfg.Timeout})
		if err != nil {
			return nil, err
		}
		acx = rest
	}
	if cfg.Retry.MaxAttempts > 1 {
		acx = NewFaultTolerantClient(acx, cfg.RetryPolicy(WallClock{}))
	}
	return acx, nil
}

// Creates a harness over the transport described by the configuration
func NewSyncHdfsClientFromConfig(cfg *Config) (*SyncHdfsClient, error) {
	acx, err := NewAsyncClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewSyncHdfsClientFromAsync(acx)
}
