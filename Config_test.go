// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package webhdfs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "webhdfs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
entrypoint: http://namenode:9870
user: alice
timeout: 5s
natmap:
  datanode1.internal:9864: 127.0.0.1:19864
retry:
  max_attempts: 4
  min_delay: 100ms
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://namenode:9870", cfg.Entrypoint)
	assert.Equal(t, "alice", cfg.User)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, TransportWebHdfs, cfg.Transport)
	assert.Equal(t, "127.0.0.1:19864", cfg.NatMap["datanode1.internal:9864"])

	policy := cfg.RetryPolicy(&MockClock{})
	assert.Equal(t, 4, policy.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, policy.MinDelay)
	assert.Equal(t, time.Minute, policy.MaxDelay)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "entrypoint: https://namenode:9871\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, 1, cfg.RetryPolicy(WallClock{}).MaxAttempts)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	_, err = LoadConfig(writeConfig(t, "entrypoint: [oops"))
	assert.Error(t, err)
	_, err = LoadConfig(writeConfig(t, "user: bob\n"))
	assert.Error(t, err)
	_, err = LoadConfig(writeConfig(t, "entrypoint: http://nn:9870\ntimeout: -1s\n"))
	assert.Error(t, err)
	_, err = LoadConfig(writeConfig(t, "transport: carrier-pigeon\n"))
	assert.Error(t, err)
	_, err = LoadConfig(writeConfig(t, "transport: rpc\n"))
	assert.Error(t, err)
}

func TestNewSyncHdfsClientFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Entrypoint = "http://namenode:9870"
	cfg.Timeout = 3 * time.Second
	cx, err := NewSyncHdfsClientFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cx.Timeout())
	_, ok := cx.Client().(*HdfsClient)
	assert.True(t, ok)

	cfg.Retry.MaxAttempts = 3
	cx, err = NewSyncHdfsClientFromConfig(cfg)
	require.NoError(t, err)
	ft, ok := cx.Client().(*FaultTolerantClient)
	require.True(t, ok)
	assert.Equal(t, 3, ft.RetryPolicy.MaxAttempts)
	assert.Equal(t, 3*time.Second, cx.Timeout())
}
