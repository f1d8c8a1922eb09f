package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/amorph/config"
)

// TestLoad_Defaults: with a clean environment the built-ins win.
func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, runtime.GOMAXPROCS(0), cfg.Parallelism)
	require.Equal(t, 64, cfg.ChunkSize)
	require.Equal(t, 16, cfg.BackScan)
	require.False(t, cfg.BindThreads)
}

// TestLoad_Environment: AMORPH_* variables override the defaults.
func TestLoad_Environment(t *testing.T) {
	t.Setenv("AMORPH_PARALLELISM", "3")
	t.Setenv("AMORPH_CHUNK_SIZE", "128")
	t.Setenv("AMORPH_BACK_SCAN", "4")
	t.Setenv("AMORPH_BIND_THREADS", "true")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Parallelism)
	require.Equal(t, 128, cfg.ChunkSize)
	require.Equal(t, 4, cfg.BackScan)
	require.True(t, cfg.BindThreads)
}

// TestLoad_File: a file named by AMORPH_CONFIG supplies values, and the
// environment still overrides it.
func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "amorph.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunk_size: 256\nback_scan: 8\n"), 0o600))
	t.Setenv("AMORPH_CONFIG", path)
	t.Setenv("AMORPH_BACK_SCAN", "2")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 256, cfg.ChunkSize)
	require.Equal(t, 2, cfg.BackScan, "environment overrides the file")
}

// TestLoad_Invalid: out-of-range values and unreadable files surface as
// sentinels.
func TestLoad_Invalid(t *testing.T) {
	t.Setenv("AMORPH_PARALLELISM", "0")
	_, err := config.Load()
	require.ErrorIs(t, err, config.ErrBadValue)

	t.Setenv("AMORPH_PARALLELISM", "2")
	t.Setenv("AMORPH_CHUNK_SIZE", "9999")
	_, err = config.Load()
	require.ErrorIs(t, err, config.ErrBadValue)

	t.Setenv("AMORPH_CHUNK_SIZE", "64")
	t.Setenv("AMORPH_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = config.Load()
	require.ErrorIs(t, err, config.ErrUnreadableFile)
}
