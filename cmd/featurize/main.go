// Command featurize turns the configured datasets into classifier
// inputs: a CSV of hand picked feature vectors and a gob file holding
// the word matrices.
package main

import (
	"encoding/csv"
	"encoding/gob"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/nordlys-ml/urlclass/internal/config"
	"github.com/nordlys-ml/urlclass/internal/dataset"
	"github.com/nordlys-ml/urlclass/pkg/featurize"
	"github.com/nordlys-ml/urlclass/pkg/logging"
)

// MatrixFile is the gob payload: one word matrix per record, aligned
// with the rows of the CSV.
type MatrixFile struct {
	EmbeddingName string
	Dim           int
	Matrices      [][][]float64
}

func main() {
	cfgPath := flag.String("config", "", "experiment YAML file")
	envPath := flag.String("env", ".env", "environment file with machine-local paths")
	flag.Parse()

	config.LoadEnvFile(*envPath)
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if err := logging.SetupLogger(&cfg.Logging); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	logger := logging.GetLogger("featurize")

	records, _, err := dataset.ReadAll(cfg.Layout(), cfg.DatasetFormats()...)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to read datasets")
	}

	emb, err := cfg.LoadEmbedding()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load embedding table")
	}
	f := featurize.New(emb, featurize.WithMaxLens(
		cfg.Featurizer.SubMax, cfg.Featurizer.MainMax, cfg.Featurizer.PathMax, cfg.Featurizer.ArgMax))

	feats := f.FeaturizeAll(dataset.URLs(records))

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create output directory")
	}
	csvPath := filepath.Join(cfg.OutputDir, "features.csv")
	if err := writeFeatureCSV(csvPath, records, feats); err != nil {
		logger.Fatal().Err(err).Msg("Failed to write feature CSV")
	}

	gobPath := filepath.Join(cfg.OutputDir, "matrices.gob")
	if err := writeMatrices(gobPath, cfg.Embedding.Name, emb.Dim(), feats); err != nil {
		logger.Fatal().Err(err).Msg("Failed to write word matrices")
	}

	logger.Info().
		Int("records", len(records)).
		Str("csv", csvPath).
		Str("matrices", gobPath).
		Msg("Featurized datasets")
}

func writeFeatureCSV(path string, records []dataset.Record, feats []featurize.Features) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create feature file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"url", "label", "source"}, featurize.FeatureNames[:]...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, feat := range feats {
		row := make([]string, 0, len(header))
		row = append(row, records[i].URL, records[i].Label, records[i].Source)
		for _, v := range feat.Vector {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	w.Flush()
	return w.Error()
}

func writeMatrices(path, embeddingName string, dim int, feats []featurize.Features) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create matrix file: %w", err)
	}
	defer f.Close()

	payload := MatrixFile{EmbeddingName: embeddingName, Dim: dim}
	payload.Matrices = make([][][]float64, len(feats))
	for i, feat := range feats {
		payload.Matrices[i] = feat.Matrix
	}
	if err := gob.NewEncoder(f).Encode(payload); err != nil {
		return fmt.Errorf("failed to encode matrices: %w", err)
	}
	return nil
}
