package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults mirror the original service constants.
const (
	DefaultConfidenceThreshold  = 0.5
	DefaultCooldownSeconds      = 3.0
	DefaultCenterThresholdRatio = 0.2
	DefaultDistanceCloseRatio   = 0.15
	DefaultDistanceMediumRatio  = 0.05
	DefaultMaxDetections        = 20
)

// DefaultPriorityObjects are the class labels considered safety-relevant
// when the config file does not list any.
var DefaultPriorityObjects = []string{
	"person", "car", "bicycle", "motorcycle", "bus", "truck", "dog",
}

// KafkaConfig gates the optional alert event publisher.
type KafkaConfig struct {
	Enabled          bool   `yaml:"Enabled"`
	BootstrapServers string `yaml:"BootstrapServers"`
	Topic            string `yaml:"Topic"`
}

// Config is the process-wide configuration. It is read once at startup,
// validated, and treated as immutable afterwards; request handlers only
// ever see it by reference.
type Config struct {
	HTTPPort    int `yaml:"HTTPPort"`
	MetricsPort int `yaml:"MetricsPort"`

	DetectorURL       string `yaml:"DetectorURL"`
	DetectorTimeoutMs int    `yaml:"DetectorTimeoutMs"`
	DetectorWorkers   int    `yaml:"DetectorWorkers"`

	RotateToPortrait bool `yaml:"RotateToPortrait"`
	SessionIdleMs    int  `yaml:"SessionIdleMs"`

	ConfidenceThreshold  float64  `yaml:"ConfidenceThreshold"`
	MaxDetections        int      `yaml:"MaxDetections"`
	CooldownSeconds      float64  `yaml:"CooldownSeconds"`
	CenterThresholdRatio float64  `yaml:"CenterThresholdRatio"`
	DistanceCloseRatio   float64  `yaml:"DistanceCloseRatio"`
	DistanceMediumRatio  float64  `yaml:"DistanceMediumRatio"`
	PriorityObjects      []string `yaml:"PriorityObjects"`

	Kafka KafkaConfig `yaml:"Kafka"`
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTPPort == 0 {
		c.HTTPPort = 5000
	}
	if c.MetricsPort == 0 {
		c.MetricsPort = 9091
	}
	if c.DetectorTimeoutMs <= 0 {
		c.DetectorTimeoutMs = 2000
	}
	if c.DetectorWorkers <= 0 {
		c.DetectorWorkers = 1
	}
	if c.SessionIdleMs <= 0 {
		c.SessionIdleMs = 30000
	}
	if c.ConfidenceThreshold == 0 {
		c.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if c.MaxDetections <= 0 {
		c.MaxDetections = DefaultMaxDetections
	}
	if c.CooldownSeconds == 0 {
		c.CooldownSeconds = DefaultCooldownSeconds
	}
	if c.CenterThresholdRatio == 0 {
		c.CenterThresholdRatio = DefaultCenterThresholdRatio
	}
	if c.DistanceCloseRatio == 0 {
		c.DistanceCloseRatio = DefaultDistanceCloseRatio
	}
	if c.DistanceMediumRatio == 0 {
		c.DistanceMediumRatio = DefaultDistanceMediumRatio
	}
	if len(c.PriorityObjects) == 0 {
		c.PriorityObjects = append([]string(nil), DefaultPriorityObjects...)
	}
}

func (c *Config) validate() error {
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("ConfidenceThreshold must be between 0.0 and 1.0, got %f", c.ConfidenceThreshold)
	}
	if c.CooldownSeconds < 0 {
		return fmt.Errorf("CooldownSeconds must be non-negative, got %f", c.CooldownSeconds)
	}
	if c.CenterThresholdRatio < 0 || c.CenterThresholdRatio >= 0.5 {
		return fmt.Errorf("CenterThresholdRatio must be in [0.0, 0.5), got %f", c.CenterThresholdRatio)
	}
	if c.DistanceCloseRatio <= c.DistanceMediumRatio {
		return fmt.Errorf("DistanceCloseRatio (%f) must exceed DistanceMediumRatio (%f)",
			c.DistanceCloseRatio, c.DistanceMediumRatio)
	}
	if c.DistanceMediumRatio <= 0 {
		return fmt.Errorf("DistanceMediumRatio must be positive, got %f", c.DistanceMediumRatio)
	}
	if c.DetectorURL == "" {
		return fmt.Errorf("DetectorURL cannot be empty")
	}
	if c.Kafka.Enabled {
		if c.Kafka.BootstrapServers == "" {
			return fmt.Errorf("Kafka.BootstrapServers cannot be empty when Kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("Kafka.Topic cannot be empty when Kafka is enabled")
		}
	}
	return nil
}

// Cooldown returns CooldownSeconds as a duration.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds * float64(time.Second))
}

// DetectorTimeout returns DetectorTimeoutMs as a duration.
func (c *Config) DetectorTimeout() time.Duration {
	return time.Duration(c.DetectorTimeoutMs) * time.Millisecond
}

// SessionIdle returns SessionIdleMs as a duration.
func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMs) * time.Millisecond
}

// PrioritySet builds the lookup set from PriorityObjects.
func (c *Config) PrioritySet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.PriorityObjects))
	for _, name := range c.PriorityObjects {
		set[name] = struct{}{}
	}
	return set
}

// View is the read-only snapshot served by the config introspection endpoint.
type View struct {
	ConfidenceThreshold  float64  `json:"confidenceThreshold"`
	MaxDetections        int      `json:"maxDetections"`
	CooldownSeconds      float64  `json:"cooldownSeconds"`
	CenterThresholdRatio float64  `json:"centerThresholdRatio"`
	DistanceCloseRatio   float64  `json:"distanceCloseRatio"`
	DistanceMediumRatio  float64  `json:"distanceMediumRatio"`
	PriorityObjects      []string `json:"priorityObjects"`
	RotateToPortrait     bool     `json:"rotateToPortrait"`
}

// Snapshot returns the introspection view.
func (c *Config) Snapshot() View {
	return View{
		ConfidenceThreshold:  c.ConfidenceThreshold,
		MaxDetections:        c.MaxDetections,
		CooldownSeconds:      c.CooldownSeconds,
		CenterThresholdRatio: c.CenterThresholdRatio,
		DistanceCloseRatio:   c.DistanceCloseRatio,
		DistanceMediumRatio:  c.DistanceMediumRatio,
		PriorityObjects:      append([]string(nil), c.PriorityObjects...),
		RotateToPortrait:     c.RotateToPortrait,
	}
}
