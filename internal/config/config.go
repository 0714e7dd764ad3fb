// Package config loads the YAML description of a training run.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/arenaml/internal/nn"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	// Data is a CSV file, or a SQLite database when DataQuery is set.
	Data           string   `yaml:"data"`
	DataQuery      string   `yaml:"data_query,omitempty"`
	LabelColumn    string   `yaml:"label_column"`
	FeatureColumns []string `yaml:"feature_columns"`
	Classes        []string `yaml:"classes"`

	BatchSize  int     `yaml:"batch_size"`
	Epochs     int     `yaml:"epochs"`
	LR         float32 `yaml:"lr"`
	LogEvery   int     `yaml:"log_every"`
	Seed       int64   `yaml:"seed"`
	WeightInit string  `yaml:"weight_init"`
	BiasInit   string  `yaml:"bias_init"`
	ArenaKiB   int     `yaml:"arena_kib"`

	Listen  string `yaml:"listen,omitempty"`
	History string `yaml:"history,omitempty"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	Data      string
	BatchSize int
	Epochs    int
	LR        float32
	LogEvery  int
	Seed      int64
	Listen    string
	History   string
}

// Default returns the settings used for any key the file leaves out.
func Default() Config {
	return Config{
		BatchSize:  16,
		Epochs:     100,
		LR:         0.1,
		LogEvery:   50,
		WeightInit: nn.FillXavierUniform.String(),
		BiasInit:   nn.FillZeros.String(),
		ArenaKiB:   256,
		Listen:     ":8080",
	}
}

// Load reads and validates a Config from YAML.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default. Unknown keys are rejected.
// The result is not validated.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &cfg, nil
}

// Marshal renders cfg as YAML, as stored in the run history.
func (c *Config) Marshal() (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Data != "" {
		c.Data = o.Data
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.LR > 0 {
		c.LR = o.LR
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.Listen != "" {
		c.Listen = o.Listen
	}
	if o.History != "" {
		c.History = o.History
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Data == "" {
		return errors.New("data must be set")
	}
	if c.LabelColumn == "" {
		return errors.New("label_column must be set")
	}
	if len(c.FeatureColumns) == 0 {
		return errors.New("feature_columns must list at least one column")
	}
	if len(c.Classes) < 2 {
		return fmt.Errorf("classes must list at least two labels (got %d)", len(c.Classes))
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be > 0 (got %d)", c.Epochs)
	}
	if !(c.LR > 0) {
		return fmt.Errorf("lr must be > 0 (got %g)", c.LR)
	}
	if c.ArenaKiB <= 0 {
		return fmt.Errorf("arena_kib must be > 0 (got %d)", c.ArenaKiB)
	}
	if c.LogEvery <= 0 {
		return fmt.Errorf("log_every must be > 0 (got %d)", c.LogEvery)
	}
	if _, _, err := c.Strategies(); err != nil {
		return err
	}
	return nil
}

// Strategies returns the parsed weight and bias fill strategies.
func (c *Config) Strategies() (weight, bias nn.FillStrategy, err error) {
	if weight, err = nn.ParseFillStrategy(c.WeightInit); err != nil {
		return 0, 0, fmt.Errorf("weight_init: %w", err)
	}
	if bias, err = nn.ParseFillStrategy(c.BiasInit); err != nil {
		return 0, 0, fmt.Errorf("bias_init: %w", err)
	}
	return weight, bias, nil
}
