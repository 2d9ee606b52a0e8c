// Package config loads the run configuration for the digitnet CLI.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/FlavioCFOliveira/digitnet/internal/activations"
)

// Config captures the runtime knobs for training and evaluation.
type Config struct {
	Sizes        []int   `yaml:"sizes"`
	Activation   string  `yaml:"activation"`
	LearningRate float64 `yaml:"learning_rate"`
	Epochs       int     `yaml:"epochs"`
	BatchSize    int     `yaml:"batch_size"`
	Seed         uint64  `yaml:"seed"`

	TrainImages string `yaml:"train_images"`
	TrainLabels string `yaml:"train_labels"`
	TestImages  string `yaml:"test_images"`
	TestLabels  string `yaml:"test_labels"`
	// TrainLimit and TestLimit cap how many samples are used; 0 means all.
	TrainLimit int `yaml:"train_limit"`
	TestLimit  int `yaml:"test_limit"`

	StateIn       string  `yaml:"state_in"`
	StateOut      string  `yaml:"state_out"`
	MetricsCSV    string  `yaml:"metrics_csv"`
	Checkpoint    string  `yaml:"checkpoint"`
	ProgressEvery float64 `yaml:"progress_every"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	LearningRate float64
	Epochs       int
	BatchSize    int
	Seed         uint64
	StateIn      string
	StateOut     string
	TrainLimit   int
	TestLimit    int
}

// Default returns the 784-20-10 sigmoid digit network with the usual
// hyperparameters and the standard MNIST file names under data/.
func Default() *Config {
	return &Config{
		Sizes:         []int{784, 20, 10},
		Activation:    "sigmoid",
		LearningRate:  3,
		Epochs:        10,
		BatchSize:     10,
		TrainImages:   "data/train-images-idx3-ubyte",
		TrainLabels:   "data/train-labels-idx1-ubyte",
		TestImages:    "data/t10k-images-idx3-ubyte",
		TestLabels:    "data/t10k-labels-idx1-ubyte",
		StateOut:      "network.json",
		ProgressEvery: 10,
	}
}

// Load reads a YAML config on top of Default and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.StateIn != "" {
		c.StateIn = o.StateIn
	}
	if o.StateOut != "" {
		c.StateOut = o.StateOut
	}
	if o.TrainLimit > 0 {
		c.TrainLimit = o.TrainLimit
	}
	if o.TestLimit > 0 {
		c.TestLimit = o.TestLimit
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if len(c.Sizes) < 2 {
		return fmt.Errorf("sizes needs at least input and output layers (got %v)", c.Sizes)
	}
	for i, s := range c.Sizes {
		if s <= 0 {
			return fmt.Errorf("sizes[%d] must be > 0 (got %d)", i, s)
		}
	}
	if _, err := activations.ByName(c.Activation); err != nil {
		return err
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be > 0 (got %g)", c.LearningRate)
	}
	if c.Epochs < 0 {
		return fmt.Errorf("epochs must be >= 0 (got %d)", c.Epochs)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.TrainLimit < 0 || c.TestLimit < 0 {
		return errors.New("train_limit and test_limit must be >= 0")
	}
	return nil
}
