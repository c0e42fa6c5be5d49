package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordlys-ml/urlclass/internal/dataset"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "experiment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
data_dir: /srv/urlclass/data
datasets: [phishing]
sample: true
seed: 7
embedding:
  name: conceptnet
  dir: /srv/embeddings
  max_words: 5000
featurizer:
  sub_max: 2
  main_max: 3
  path_max: 4
  arg_max: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/urlclass/data", cfg.DataDir)
	assert.Equal(t, []string{"phishing"}, cfg.Datasets)
	assert.True(t, cfg.Sample)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, "conceptnet", cfg.Embedding.Name)
	assert.Equal(t, 5000, cfg.Embedding.MaxWords)
	assert.Equal(t, 2, cfg.Featurizer.SubMax)

	// Untouched fields keep their defaults.
	assert.Equal(t, 0.8, cfg.TrainFrac)
	assert.Equal(t, 100, cfg.Training.Epochs)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "data_dir: data\nnot_a_field: 1\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().DataDir, cfg.DataDir)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvDataDir, "/env/data")
	t.Setenv(EnvEmbeddingDir, "/env/embeddings")
	t.Setenv(EnvPostgresDSN, "postgres://localhost/urlclass")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/env/data", cfg.DataDir)
	assert.Equal(t, "/env/embeddings", cfg.Embedding.Dir)
	assert.Equal(t, "postgres://localhost/urlclass", cfg.PostgresDSN)
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		sentinel error
	}{
		{"empty data dir", func(c *Config) { c.DataDir = "" }, ErrMissingPath},
		{"empty output dir", func(c *Config) { c.OutputDir = "" }, ErrMissingPath},
		{"train frac too high", func(c *Config) { c.TrainFrac = 1 }, ErrBadFraction},
		{"train frac negative", func(c *Config) { c.TrainFrac = -0.1 }, ErrBadFraction},
		{"unknown dataset", func(c *Config) { c.Datasets = []string{"imagenet"} }, ErrBadDataset},
		{"unknown embedding", func(c *Config) { c.Embedding.Name = "bert" }, ErrBadEmbedding},
		{"zero slot count", func(c *Config) { c.Featurizer.PathMax = 0 }, ErrBadMaxLen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestHashedEmbeddingIsAccepted(t *testing.T) {
	cfg := Default()
	cfg.Embedding.Name = "hashed"
	cfg.Embedding.HashedDim = 16
	require.NoError(t, cfg.Validate())

	emb, err := cfg.LoadEmbedding()
	require.NoError(t, err)
	assert.Equal(t, 16, emb.Dim())
}

func TestDatasetFormatsAndLayout(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/somewhere"
	cfg.Datasets = []string{"dmoz", "webkb"}
	cfg.Sample = true

	assert.Equal(t, []dataset.Format{dataset.FormatDMOZ, dataset.FormatWebKB}, cfg.DatasetFormats())
	layout := cfg.Layout()
	assert.Equal(t, "/somewhere", layout.Dir)
	assert.True(t, layout.Sample)
}

func TestLoadEnvFileMissingIsFine(t *testing.T) {
	LoadEnvFile(filepath.Join(t.TempDir(), "absent.env"))
}
