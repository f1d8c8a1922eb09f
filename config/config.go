package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Sentinel errors for configuration loading.
var (
	// ErrBadValue is returned when a resolved setting is out of range.
	ErrBadValue = errors.New("config: value out of range")

	// ErrUnreadableFile is returned when AMORPH_CONFIG names a file that
	// cannot be read or parsed.
	ErrUnreadableFile = errors.New("config: cannot read configuration file")
)

// Keys recognized in files and, upper-cased with the AMORPH_ prefix, in the
// environment.
const (
	KeyParallelism = "parallelism"
	KeyChunkSize   = "chunk_size"
	KeyBackScan    = "back_scan"
	KeyBindThreads = "bind_threads"

	envPrefix = "AMORPH"
	envFile   = "AMORPH_CONFIG"
)

// Config holds the resolved runtime defaults.
type Config struct {
	// Parallelism is the worker-pool size used when a loop does not set
	// its own.
	Parallelism int

	// ChunkSize is the default chunk capacity for every worklist flavor.
	ChunkSize int

	// BackScan is the OBIM backward-sweep period. Very low values cost
	// scanning time; very high values delay (but never lose) late pushes
	// to low-priority buckets.
	BackScan int

	// BindThreads locks each worker to an OS thread and pins it to a CPU
	// chosen from the detected topology.
	BindThreads bool
}

// Load resolves the configuration from defaults, the optional file named
// by AMORPH_CONFIG, and AMORPH_* environment variables.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyParallelism, runtime.GOMAXPROCS(0))
	v.SetDefault(KeyChunkSize, 64)
	v.SetDefault(KeyBackScan, 16)
	v.SetDefault(KeyBindThreads, false)

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrUnreadableFile, file, err)
		}
	}

	cfg := Config{
		Parallelism: v.GetInt(KeyParallelism),
		ChunkSize:   v.GetInt(KeyChunkSize),
		BackScan:    v.GetInt(KeyBackScan),
		BindThreads: v.GetBool(KeyBindThreads),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Parallelism < 1 {
		return fmt.Errorf("%w: %s=%d (want >= 1)", ErrBadValue, KeyParallelism, c.Parallelism)
	}
	if c.ChunkSize < 1 || c.ChunkSize > 1024 {
		return fmt.Errorf("%w: %s=%d (want 1..1024)", ErrBadValue, KeyChunkSize, c.ChunkSize)
	}
	if c.BackScan < 1 {
		return fmt.Errorf("%w: %s=%d (want >= 1)", ErrBadValue, KeyBackScan, c.BackScan)
	}
	return nil
}

var (
	defaultOnce sync.Once
	defaultCfg  Config
)

// Default returns the process-wide configuration, loading it once. A load
// failure falls back to the built-in defaults; callers that must observe
// errors use Load directly.
func Default() Config {
	defaultOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			cfg = Config{
				Parallelism: runtime.GOMAXPROCS(0),
				ChunkSize:   64,
				BackScan:    16,
			}
		}
		defaultCfg = cfg
	})
	return defaultCfg
}
