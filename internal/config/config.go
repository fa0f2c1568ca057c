// Package config provides configuration management for columnar kernels
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/paveg/columnar/internal/errors"
)

// Config represents the global configuration for columnar operations
type Config struct {
	// Sort defaults
	DefaultDescending bool `json:"default_descending" yaml:"default_descending"`   // Sort valid values in descending order
	DefaultNullsFirst bool `json:"default_nulls_first" yaml:"default_nulls_first"` // Place nulls before valid values

	// Growable Configuration
	GrowableCapacityHint int `json:"growable_capacity_hint" yaml:"growable_capacity_hint"` // Initial element capacity (0 = derive from inputs)

	// Parallel Processing Configuration
	ParallelThreshold int `json:"parallel_threshold" yaml:"parallel_threshold"` // Minimum total elements to fan out across workers
	WorkerPoolSize    int `json:"worker_pool_size" yaml:"worker_pool_size"`     // Number of worker goroutines (0 = auto-detect)

	// Debugging Configuration
	VerboseLogging    bool `json:"verbose_logging" yaml:"verbose_logging"`       // Enable verbose logging
	MetricsCollection bool `json:"metrics_collection" yaml:"metrics_collection"` // Enable metrics collection
}

// SystemInfo contains system information for configuration validation
type SystemInfo struct {
	CPUCount     int
	Architecture string
	OSType       string
}

// ConfigValidator validates and provides recommendations for configuration
type ConfigValidator struct {
	systemInfo SystemInfo
}

// Global configuration instance
var (
	globalConfig Config
	configMutex  sync.RWMutex
)

// Default configuration values
const (
	DefaultParallelThreshold = 1 << 16
	EnvPrefix                = "COLUMNAR_"
)

// Initialize global configuration with defaults
func init() {
	globalConfig = NewConfig()
}

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		DefaultDescending: false,
		DefaultNullsFirst: true,

		GrowableCapacityHint: 0, // Derive from inputs

		ParallelThreshold: DefaultParallelThreshold,
		WorkerPoolSize:    0, // Auto-detect

		VerboseLogging:    false,
		MetricsCollection: false,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.GrowableCapacityHint < 0 {
		return errors.NewConfigurationError("GrowableCapacityHint", c.GrowableCapacityHint, []string{">= 0"})
	}

	if c.ParallelThreshold <= 0 {
		return errors.NewConfigurationError("ParallelThreshold", c.ParallelThreshold, []string{"> 0"})
	}

	if c.WorkerPoolSize < 0 {
		return errors.NewConfigurationError("WorkerPoolSize", c.WorkerPoolSize, []string{">= 0"})
	}

	return nil
}

// WithDefaults returns a new configuration with default values filled in for zero values
func (c Config) WithDefaults() Config {
	defaults := NewConfig()

	if c.ParallelThreshold == 0 {
		c.ParallelThreshold = defaults.ParallelThreshold
	}

	// Note: Boolean fields are intentionally not set to defaults here
	// This allows distinguishing between explicitly set false and unset values
	// Use NewConfig() directly if you need boolean defaults

	return c
}

// Workers returns the effective worker count, resolving 0 to the CPU count
func (c Config) Workers() int {
	if c.WorkerPoolSize > 0 {
		return c.WorkerPoolSize
	}
	return runtime.NumCPU()
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = config
}

// GetGlobalConfig returns the current global configuration
func GetGlobalConfig() Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// LoadFromJSON loads configuration from JSON data
func LoadFromJSON(data []byte) (Config, error) {
	config := NewConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing JSON configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromFile loads configuration from a JSON or YAML file
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}

	config := NewConfig()
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".json":
		err = json.Unmarshal(data, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", filename, err)
	}

	return config.WithDefaults(), nil
}

// LoadFromEnv loads configuration from COLUMNAR_* environment variables.
// Unparsable values are ignored.
func LoadFromEnv() Config {
	config := NewConfig()

	envBool("DEFAULT_DESCENDING", &config.DefaultDescending)
	envBool("DEFAULT_NULLS_FIRST", &config.DefaultNullsFirst)
	envInt("GROWABLE_CAPACITY_HINT", &config.GrowableCapacityHint)
	envInt("PARALLEL_THRESHOLD", &config.ParallelThreshold)
	envInt("WORKER_POOL_SIZE", &config.WorkerPoolSize)
	envBool("VERBOSE_LOGGING", &config.VerboseLogging)
	envBool("METRICS_COLLECTION", &config.MetricsCollection)

	return config
}

func envInt(name string, dst *int) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			*dst = parsed
		}
	}
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			*dst = parsed
		}
	}
}

// GetSystemInfo returns system information for configuration validation
func GetSystemInfo() SystemInfo {
	return SystemInfo{
		CPUCount:     runtime.NumCPU(),
		Architecture: runtime.GOARCH,
		OSType:       runtime.GOOS,
	}
}

// NewConfigValidator creates a validator for the current machine
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		systemInfo: GetSystemInfo(),
	}
}

// Validate rejects an invalid configuration and returns warnings for
// settings that are valid but undermine the parallel kernels.
func (cv *ConfigValidator) Validate(config Config) ([]string, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var warnings []string
	if config.WorkerPoolSize > cv.systemInfo.CPUCount*2 {
		warnings = append(warnings,
			fmt.Sprintf("worker pool size (%d) exceeds 2x CPU count (%d), may cause contention",
				config.WorkerPoolSize, cv.systemInfo.CPUCount))
	}

	// parallel sort needs two elements per worker before it splits
	if workers := config.Workers(); workers > 1 && config.ParallelThreshold < 2*workers {
		warnings = append(warnings,
			fmt.Sprintf("parallel threshold (%d) is below 2x worker count (%d), smaller inputs still sort sequentially",
				config.ParallelThreshold, workers))
	}

	if config.GrowableCapacityHint > config.ParallelThreshold {
		warnings = append(warnings,
			fmt.Sprintf("growable capacity hint (%d) exceeds parallel threshold (%d), small outputs over-allocate",
				config.GrowableCapacityHint, config.ParallelThreshold))
	}

	return warnings, nil
}
