// Package config loads the YAML experiment file the command line
// tools share. Machine-local paths can be overridden through the
// environment (optionally from a .env file) so the YAML stays
// commit-safe.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/nordlys-ml/urlclass/internal/classifier"
	"github.com/nordlys-ml/urlclass/internal/dataset"
	"github.com/nordlys-ml/urlclass/pkg/embedding"
	"github.com/nordlys-ml/urlclass/pkg/featurize"
	"github.com/nordlys-ml/urlclass/pkg/logging"
)

// Environment variables overriding machine-local paths.
const (
	EnvDataDir      = "URLCLASS_DATA_DIR"
	EnvEmbeddingDir = "URLCLASS_EMBEDDING_DIR"
	EnvOutputDir    = "URLCLASS_OUTPUT_DIR"
	EnvPostgresDSN  = "URLCLASS_POSTGRES_DSN"
)

// Validation sentinels, wrapped with field context by Validate.
var (
	ErrMissingPath  = errors.New("required path is empty")
	ErrBadFraction  = errors.New("fraction outside (0, 1)")
	ErrBadEmbedding = errors.New("unknown embedding name")
	ErrBadDataset   = errors.New("unknown dataset name")
	ErrBadMaxLen    = errors.New("token slot count must be positive")
)

// FeaturizerConfig holds the token slot counts per URL section.
type FeaturizerConfig struct {
	SubMax  int `yaml:"sub_max"`
	MainMax int `yaml:"main_max"`
	PathMax int `yaml:"path_max"`
	ArgMax  int `yaml:"arg_max"`
}

// EmbeddingConfig selects the vector source for featurization.
type EmbeddingConfig struct {
	// Name is one of the known distributions, or "hashed".
	Name string `yaml:"name"`
	// Dir is where the downloaded embedding files live.
	Dir string `yaml:"dir"`
	// MaxWords caps the vocabulary read from disk, 0 reads all.
	MaxWords int `yaml:"max_words"`
	// HashedDim is the vector size when Name is "hashed".
	HashedDim int `yaml:"hashed_dim"`
}

// Config is the full experiment file.
type Config struct {
	DataDir  string   `yaml:"data_dir"`
	Datasets []string `yaml:"datasets"`
	Sample   bool     `yaml:"sample"`

	OutputDir   string  `yaml:"output_dir"`
	Seed        int64   `yaml:"seed"`
	TrainFrac   float64 `yaml:"train_frac"`
	PostgresDSN string  `yaml:"postgres_dsn"`

	Featurizer FeaturizerConfig       `yaml:"featurizer"`
	Embedding  EmbeddingConfig        `yaml:"embedding"`
	Training   classifier.TrainConfig `yaml:"training"`
	SkipGram   embedding.TrainConfig  `yaml:"skipgram"`

	Logging logging.LogConfig `yaml:"logging"`
}

// Default returns the config the tools start from before the YAML
// file and environment are applied.
func Default() *Config {
	return &Config{
		DataDir:   "data",
		Datasets:  dataset.Formats(),
		OutputDir: "out",
		Seed:      42,
		TrainFrac: 0.8,
		Featurizer: FeaturizerConfig{
			SubMax:  5,
			MainMax: 5,
			PathMax: 10,
			ArgMax:  10,
		},
		Embedding: EmbeddingConfig{
			Name:      "glove",
			Dir:       "embeddings",
			HashedDim: 100,
		},
		Training: classifier.DefaultTrainConfig(),
		SkipGram: embedding.DefaultTrainConfig(),
		Logging:  *logging.DefaultLogConfig(),
	}
}

// Load reads a YAML experiment file over the defaults and applies
// environment overrides. An empty path keeps the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadEnvFile reads a .env file into the process environment when it
// exists; a missing file is not an error.
func LoadEnvFile(path string) {
	if err := godotenv.Load(path); err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("Ignoring unreadable .env file")
		}
		return
	}
	log.Debug().Str("path", path).Msg("Loaded environment file")
}

// applyEnv overrides machine-local settings from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvEmbeddingDir); v != "" {
		c.Embedding.Dir = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv(EnvPostgresDSN); v != "" {
		c.PostgresDSN = v
	}
}

// Validate checks everything the tools rely on before any file is
// touched.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir: %w", ErrMissingPath)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir: %w", ErrMissingPath)
	}
	if c.TrainFrac <= 0 || c.TrainFrac >= 1 {
		return fmt.Errorf("train_frac %g: %w", c.TrainFrac, ErrBadFraction)
	}
	for _, name := range c.Datasets {
		valid := false
		for _, known := range dataset.Formats() {
			if name == known {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("datasets entry %q: %w", name, ErrBadDataset)
		}
	}
	if c.Embedding.Name != "hashed" {
		if _, ok := embedding.Sources[c.Embedding.Name]; !ok {
			return fmt.Errorf("embedding name %q: %w", c.Embedding.Name, ErrBadEmbedding)
		}
	}
	for _, n := range []int{c.Featurizer.SubMax, c.Featurizer.MainMax, c.Featurizer.PathMax, c.Featurizer.ArgMax} {
		if n <= 0 {
			return fmt.Errorf("featurizer slots %+v: %w", c.Featurizer, ErrBadMaxLen)
		}
	}
	return nil
}

// DatasetFormats returns the selected datasets as typed formats.
func (c *Config) DatasetFormats() []dataset.Format {
	formats := make([]dataset.Format, len(c.Datasets))
	for i, name := range c.Datasets {
		formats[i] = dataset.Format(name)
	}
	return formats
}

// Layout returns the dataset layout the config points at.
func (c *Config) Layout() dataset.Layout {
	return dataset.Layout{Dir: c.DataDir, Sample: c.Sample}
}

// LoadEmbedding opens the configured vector table.
func (c *Config) LoadEmbedding() (featurize.Embedding, error) {
	if c.Embedding.Name == "hashed" {
		return embedding.NewHashedTable(c.Embedding.HashedDim, uint64(c.Seed)), nil
	}
	var opts []embedding.LoadOption
	if c.Embedding.MaxWords > 0 {
		opts = append(opts, embedding.WithMaxWords(c.Embedding.MaxWords))
	}
	return embedding.LoadNamed(c.Embedding.Name, c.Embedding.Dir, opts...)
}
