// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"audioviz/internal/analysis"
	"audioviz/internal/source"
)

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	Debug     bool            `yaml:"debug"`     // Enable debug mode (verbose logging).
	LogLevel  string          `yaml:"log_level"` // Logging level (e.g., "debug", "info", "warn", "error").
	Analysis  AnalysisConfig  `yaml:"analysis"`  // Audio analysis settings.
	Source    SourceConfig    `yaml:"source"`    // Audio frame source settings.
	Transport TransportConfig `yaml:"transport"` // Data transport settings.
	Metrics   MetricsConfig   `yaml:"metrics"`   // Prometheus metrics settings.
}

// Duration wraps time.Duration so YAML values can be written as "33ms"
// style strings as well as plain nanosecond integers.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler. Bare integers are taken as
// nanoseconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if n, err := strconv.ParseInt(value.Value, 10, 64); err == nil {
		*d = Duration(n)
		return nil
	}
	dur, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(dur)
	return nil
}

// Std returns the wrapped standard-library duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// String formats like time.Duration.
func (d Duration) String() string { return time.Duration(d).String() }

// AnalysisConfig holds settings for the analysis pipeline.
type AnalysisConfig struct {
	Method        string   `yaml:"method"`         // Analysis method ("fft" or "rms").
	FrameInterval Duration `yaml:"frame_interval"` // Interval between frames.
}

// SourceConfig selects and parameterizes the audio frame source.
type SourceConfig struct {
	Kind         string  `yaml:"kind"`          // "sine", "wav" or "stdin".
	FrameSamples int     `yaml:"frame_samples"` // Samples per frame read from the source.
	SampleRate   float64 `yaml:"sample_rate"`   // Sample rate in Hz (sine source).
	Frequency    float64 `yaml:"frequency"`     // Fundamental in Hz (sine source).
	WAVPath      string  `yaml:"wav_path"`      // Path to the input file (wav source).
	Loop         bool    `yaml:"loop"`          // Restart the file at EOF (wav source).
}

// TransportConfig holds settings for delivering vectors to consumers.
type TransportConfig struct {
	WSEnabled        bool     `yaml:"ws_enabled"`         // Enable the WebSocket broadcast server.
	WSAddress        string   `yaml:"ws_address"`         // Listen address for WebSocket clients (e.g., ":8080").
	UDPEnabled       bool     `yaml:"udp_enabled"`        // Enable sending binary frames over UDP.
	UDPTargetAddress string   `yaml:"udp_target_address"` // Target address for UDP packets (e.g., "127.0.0.1:9090").
	UDPSendInterval  Duration `yaml:"udp_send_interval"`  // Minimum interval between UDP packets.
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // Serve /metrics.
	Address string `yaml:"address"` // Listen address for the metrics endpoint.
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		Analysis: AnalysisConfig{
			Method:        "fft",
			FrameInterval: Duration(33 * time.Millisecond), // ~30Hz
		},
		Source: SourceConfig{
			Kind:         source.KindSine,
			FrameSamples: 2048,
			SampleRate:   44100,
			Frequency:    440,
		},
		Transport: TransportConfig{
			WSEnabled:        true,
			WSAddress:        ":8080",
			UDPEnabled:       false,
			UDPTargetAddress: "127.0.0.1:9090",
			UDPSendInterval:  Duration(33 * time.Millisecond),
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Address: ":9100",
		},
	}
}

// LoadConfig loads configuration from a YAML file specified by path. If path
// is empty, it searches default locations ("config.yaml"). If no file is
// found, it uses built-in defaults. Environment variable overrides apply
// after loading, then the final configuration is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		candidates := []string{
			"config.yaml",
		}
		found := false
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				found = true
				break
			}
		}
		if !found {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks cross-field consistency after all overrides applied.
func (c *Config) Validate() error {
	if _, err := analysis.ParseMethod(c.Analysis.Method); err != nil {
		return err
	}
	if c.Analysis.FrameInterval <= 0 {
		return fmt.Errorf("analysis.frame_interval must be positive")
	}
	if c.Source.FrameSamples <= 0 {
		return fmt.Errorf("source.frame_samples must be positive")
	}
	switch c.Source.Kind {
	case "", source.KindSine, source.KindStdin:
	case source.KindWAV:
		if c.Source.WAVPath == "" {
			return fmt.Errorf("source.wav_path must be set for the wav source")
		}
	default:
		return fmt.Errorf("unknown source.kind: %q", c.Source.Kind)
	}
	if c.Transport.UDPEnabled {
		if c.Transport.UDPTargetAddress == "" {
			return fmt.Errorf("transport.udp_target_address must be set when UDP is enabled")
		}
		if c.Transport.UDPSendInterval <= 0 {
			return fmt.Errorf("transport.udp_send_interval must be positive when UDP is enabled")
		}
	}
	if c.Transport.WSEnabled && c.Transport.WSAddress == "" {
		return fmt.Errorf("transport.ws_address must be set when the WebSocket server is enabled")
	}
	if c.Metrics.Enabled && c.Metrics.Address == "" {
		return fmt.Errorf("metrics.address must be set when metrics are enabled")
	}
	return nil
}

// applyEnvOverrides applies ENV_* variables on top of the loaded file.
func (cfg *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
		}
	}
	if val, ok := os.LookupEnv("ENV_METHOD"); ok {
		cfg.Analysis.Method = val
	}
	if val, ok := os.LookupEnv("ENV_WS_ADDRESS"); ok {
		cfg.Transport.WSAddress = val
	}
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.UDPEnabled = bVal
		}
	}
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		cfg.Transport.UDPTargetAddress = val
	}
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			cfg.Transport.UDPSendInterval = Duration(dur)
		}
	}
}
