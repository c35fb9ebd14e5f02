package paging

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Config holds simulator configuration
type Config struct {
	// Simulation
	Algorithm      string       `json:"algorithm"`       // FIFO, LRU, NRU, OPT, CLOCK, LFU, MFU
	Sequence       []int        `json:"sequence"`        // Page reference sequence
	FrameCount     int          `json:"frame_count"`     // Number of physical frames
	DirtyOverrides map[int]bool `json:"dirty_overrides"` // NRU modified bit per step

	// Playback
	PlaySpeedMs int `json:"play_speed_ms"` // Milliseconds between automatic steps

	// Trace archives
	TraceCompression string `json:"trace_compression"` // none, lz4, snappy, best

	// Observability
	EnableMetrics bool   `json:"enable_metrics"` // Whether to collect run metrics
	LogLevel      string `json:"log_level"`      // Log level (debug, info, warn, error)
}

// DefaultSequence is the classic Belady reference string
var DefaultSequence = []int{1, 2, 3, 4, 1, 2, 5, 1, 2, 3, 4, 5}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Algorithm:        string(AlgorithmFIFO),
		Sequence:         slices.Clone(DefaultSequence),
		FrameCount:       3,
		DirtyOverrides:   map[int]bool{},
		PlaySpeedMs:      1000,
		TraceCompression: "lz4",
		EnableMetrics:    true,
		LogLevel:         "info",
	}
}

// LoadConfigFromFile loads configuration from a JSON file
func LoadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	err = json.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadConfigFromEnv loads configuration from environment variables
// Falls back to default values if environment variables are not set or do not parse
func LoadConfigFromEnv() *Config {
	config := DefaultConfig()

	// Simulation
	if val := os.Getenv("PAGESIM_ALGORITHM"); val != "" {
		config.Algorithm = val
	}

	if val := os.Getenv("PAGESIM_SEQUENCE"); val != "" {
		if seq, err := ParseSequence(val); err == nil {
			config.Sequence = seq
		}
	}

	if val := os.Getenv("PAGESIM_FRAME_COUNT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			config.FrameCount = n
		}
	}

	if val := os.Getenv("PAGESIM_DIRTY_OVERRIDES"); val != "" {
		if overrides, err := ParseDirtyOverrides(val); err == nil {
			config.DirtyOverrides = overrides
		}
	}

	// Playback
	if val := os.Getenv("PAGESIM_PLAY_SPEED_MS"); val != "" {
		if ms, err := strconv.Atoi(val); err == nil {
			config.PlaySpeedMs = ms
		}
	}

	// Trace archives
	if val := os.Getenv("PAGESIM_TRACE_COMPRESSION"); val != "" {
		config.TraceCompression = val
	}

	// Observability
	if val := os.Getenv("PAGESIM_ENABLE_METRICS"); val != "" {
		config.EnableMetrics = val == "true" || val == "1"
	}

	if val := os.Getenv("PAGESIM_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}

	return config
}

// SaveToFile saves the configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(path, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := ParseAlgorithm(c.Algorithm); err != nil {
		return err
	}

	if err := ValidateRun(c.Sequence, c.FrameCount, Options{DirtyOverrides: c.DirtyOverrides}); err != nil {
		return err
	}

	if c.PlaySpeedMs <= 0 {
		return ErrInvalidConfiguration("Validate", "play speed must be greater than 0")
	}

	if _, err := ParseCompressionType(c.TraceCompression); err != nil {
		return err
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.LogLevel] {
		return ErrInvalidConfiguration("Validate",
			fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel))
	}

	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	return &Config{
		Algorithm:        c.Algorithm,
		Sequence:         slices.Clone(c.Sequence),
		FrameCount:       c.FrameCount,
		DirtyOverrides:   maps.Clone(c.DirtyOverrides),
		PlaySpeedMs:      c.PlaySpeedMs,
		TraceCompression: c.TraceCompression,
		EnableMetrics:    c.EnableMetrics,
		LogLevel:         c.LogLevel,
	}
}

// AlgorithmID returns the parsed algorithm, or an error for an unknown id
func (c *Config) AlgorithmID() (Algorithm, error) {
	return ParseAlgorithm(c.Algorithm)
}

// Options returns the per-run options carried by the configuration
func (c *Config) Options() Options {
	return Options{DirtyOverrides: maps.Clone(c.DirtyOverrides)}
}

var sequenceSeparators = regexp.MustCompile(`[\s,;]+`)

// ParseSequence parses page references separated by whitespace, commas or semicolons
func ParseSequence(text string) ([]int, error) {
	var pages []int
	for _, tok := range sequenceSeparators.Split(strings.TrimSpace(text), -1) {
		if tok == "" {
			continue
		}
		page, err := strconv.Atoi(tok)
		if err != nil || page < 0 {
			return nil, NewSimError(
				ErrCodeInvalidConfiguration,
				"ParseSequence",
				fmt.Sprintf("invalid page %q: only non-negative integers are allowed", tok),
				err,
			)
		}
		pages = append(pages, page)
	}

	if len(pages) == 0 {
		return nil, ErrEmptySequence("ParseSequence")
	}
	return pages, nil
}

// ParseDirtyOverrides parses "step=bool" pairs, e.g. "3=1,5=false"
func ParseDirtyOverrides(text string) (map[int]bool, error) {
	overrides := make(map[int]bool)
	for _, pair := range sequenceSeparators.Split(strings.TrimSpace(text), -1) {
		if pair == "" {
			continue
		}
		stepText, valueText, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, ErrInvalidConfiguration("ParseDirtyOverrides",
				fmt.Sprintf("override %q must have the form step=bool", pair))
		}
		step, err := strconv.Atoi(stepText)
		if err != nil || step < 0 {
			return nil, NewSimError(ErrCodeInvalidConfiguration, "ParseDirtyOverrides",
				fmt.Sprintf("invalid step %q", stepText), err)
		}
		value, err := strconv.ParseBool(valueText)
		if err != nil {
			return nil, NewSimError(ErrCodeInvalidConfiguration, "ParseDirtyOverrides",
				fmt.Sprintf("invalid modified bit %q", valueText), err)
		}
		overrides[step] = value
	}
	return overrides, nil
}
