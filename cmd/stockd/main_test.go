package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stockcore/internal/config"
)

func stubServe(t *testing.T, err error) *config.Config {
	t.Helper()
	var got config.Config
	orig := serveFunc
	serveFunc = func(_ context.Context, cfg config.Config, _ *zap.Logger) error {
		got = cfg
		return err
	}
	t.Cleanup(func() { serveFunc = orig })
	return &got
}

func TestRunAppliesFlagOverrides(t *testing.T) {
	t.Setenv("PORT", "4000")
	t.Setenv("STOCKCORE_STORAGE_DRIVER", "sqlite")
	got := stubServe(t, nil)

	var stderr bytes.Buffer
	code := execute(context.Background(), []string{"--port", "5050", "--driver", "memory", "--log-level", "error"}, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, 5050, got.Port)
	assert.Equal(t, "memory", got.Storage.Driver)
	assert.Equal(t, "error", got.Log.Level)
}

func TestRunUsesEnvironmentWithoutFlags(t *testing.T) {
	t.Setenv("PORT", "4000")
	t.Setenv("STOCKCORE_DOCUMENT_PATH", "/tmp/stock.json")
	got := stubServe(t, nil)

	require.Equal(t, 0, execute(context.Background(), nil, &bytes.Buffer{}))
	assert.Equal(t, 4000, got.Port)
	assert.Equal(t, "fs", got.Storage.Driver)
	assert.Equal(t, "/tmp/stock.json", got.Storage.DocumentPath)
}

func TestRunReportsFailures(t *testing.T) {
	stubServe(t, errors.New("address in use"))
	var stderr bytes.Buffer
	assert.Equal(t, 1, execute(context.Background(), []string{"--log-level", "fatal"}, &stderr))
	assert.Contains(t, stderr.String(), "address in use")

	stderr.Reset()
	assert.Equal(t, 1, execute(context.Background(), []string{"--driver", "mongo"}, &stderr))
	assert.Contains(t, stderr.String(), "unknown storage driver")

	stderr.Reset()
	assert.Equal(t, 1, execute(context.Background(), []string{"extra"}, &stderr))
}

func TestRunWiresSignalContext(t *testing.T) {
	stubServe(t, nil)
	assert.Equal(t, 0, run([]string{"--driver", "memory"}, &bytes.Buffer{}))
}
