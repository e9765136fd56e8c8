package app

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mfaber/hindsight/internal/config"
	"github.com/mfaber/hindsight/internal/core"
	"github.com/mfaber/hindsight/internal/storage/archive"
)

// freePort grabs an ephemeral port and releases it for the server to bind.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.Server.Host = "localhost"
	cfg.Server.Port = freePort(t)
	cfg.Archive.Path = t.TempDir()
	return cfg
}

func TestNew_LocalArchive(t *testing.T) {
	app, err := New(testConfig(t), zap.NewNop())
	require.NoError(t, err)

	_, ok := app.Archive().(*archive.LocalFS)
	assert.True(t, ok, "expected local backend by default")
}

func TestNew_S3Archive(t *testing.T) {
	cfg := testConfig(t)
	cfg.Archive.Backend = "s3"
	cfg.Archive.S3.Bucket = "hindsight-runs"
	cfg.Archive.S3.Region = "eu-west-1"

	app, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	_, ok := app.Archive().(*archive.S3Storage)
	assert.True(t, ok, "expected s3 backend")
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Port = -1

	_, err := New(cfg, zap.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidConfig))
}

func TestNew_S3WithoutBucket(t *testing.T) {
	cfg := testConfig(t)
	cfg.Archive.Backend = "s3"

	_, err := New(cfg, zap.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidConfig))
}

func TestNew_NilLogger(t *testing.T) {
	_, err := New(testConfig(t), nil)
	require.NoError(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	app, err := New(testConfig(t), zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.Run(ctx)
	}()

	// Give the listener a moment to come up before asking it to drain.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after cancellation")
	}
}
