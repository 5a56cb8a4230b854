package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for intake.
type Config struct {
	BaseDir  string        `toml:"base_dir"`
	LogDir   string        `toml:"log_dir"`
	LogLevel string        `toml:"log_level"` // "debug", "info", "warn" or "error"
	Tracker  TrackerConfig `toml:"tracker"`
	Store    StoreConfig   `toml:"store"`
	Intake   IntakeConfig  `toml:"intake"`
}

// TrackerConfig tunes the document status tracker.
type TrackerConfig struct {
	TickInterval           Duration `toml:"tick_interval"`
	AdvanceProbability     float64  `toml:"advance_probability"` // 0 disables auto-advance; negative means unset
	RandomSeed             int64    `toml:"random_seed"` // 0 picks a random seed
	SkipSamples            bool     `toml:"skip_samples"` // start with an empty collection
	DefaultRejectionReason string   `toml:"default_rejection_reason"`
}

// StoreConfig selects where the record collection lives.
// Both types are in-memory; records never outlive the process.
type StoreConfig struct {
	Type string `toml:"type"` // "memory" or "sqlite"
}

// IntakeConfig holds the file-selection rules and submission behaviour.
type IntakeConfig struct {
	MaxSize      int64    `toml:"max_size"`      // bytes; files must be strictly smaller
	AllowedTypes []string `toml:"allowed_types"` // MIME types
	SubmitDelay  Duration `toml:"submit_delay"`
}

// Duration is a time.Duration that reads and writes as a string such as "2s".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// DefaultAllowedTypes are the MIME types accepted for intake.
var DefaultAllowedTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/bmp",
	"image/webp",
	"application/pdf",
}

// NewConfig creates a new Config rooted at baseDir with default settings.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir:  baseDir,
		LogDir:   filepath.Join(baseDir, "log"),
		LogLevel: "info",
		Tracker: TrackerConfig{
			TickInterval:           Duration{2 * time.Second},
			AdvanceProbability:     0.10,
			DefaultRejectionReason: "Document rejected by reviewer",
		},
		Store: StoreConfig{Type: "memory"},
		Intake: IntakeConfig{
			MaxSize:      1024 * 1024,
			AllowedTypes: append([]string(nil), DefaultAllowedTypes...),
			SubmitDelay:  Duration{1500 * time.Millisecond},
		},
	}
}

// ApplyDefaults fills every unset field from NewConfig(c.BaseDir).
// Zero durations and sizes count as unset. AdvanceProbability is unset
// only when negative, so an explicit 0 survives.
func (c *Config) ApplyDefaults() {
	d := NewConfig(c.BaseDir)

	if c.LogDir == "" {
		c.LogDir = d.LogDir
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Tracker.TickInterval.Duration <= 0 {
		c.Tracker.TickInterval = d.Tracker.TickInterval
	}
	if c.Tracker.AdvanceProbability < 0 {
		c.Tracker.AdvanceProbability = d.Tracker.AdvanceProbability
	}
	if c.Tracker.DefaultRejectionReason == "" {
		c.Tracker.DefaultRejectionReason = d.Tracker.DefaultRejectionReason
	}
	if c.Store.Type == "" {
		c.Store.Type = d.Store.Type
	}
	if c.Intake.MaxSize <= 0 {
		c.Intake.MaxSize = d.Intake.MaxSize
	}
	if len(c.Intake.AllowedTypes) == 0 {
		c.Intake.AllowedTypes = d.Intake.AllowedTypes
	}
	if c.Intake.SubmitDelay.Duration <= 0 {
		c.Intake.SubmitDelay = d.Intake.SubmitDelay
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader. A missing
// advance_probability key reads as -1 so ApplyDefaults can tell it apart
// from an explicit 0.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if !md.IsDefined("tracker", "advance_probability") {
		cfg.Tracker.AdvanceProbability = -1
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads the config at path with defaults applied, or returns
// NewConfig(baseDir) when no file exists there.
func Load(path, baseDir string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewConfig(baseDir), nil
	}

	cfg, err := ReadFromFile(path)
	if err != nil {
		return nil, err
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = baseDir
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
