// Command ingest normalizes the raw dataset files into JSONL, one
// file per dataset, and optionally mirrors the records into Postgres.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/nordlys-ml/urlclass/internal/config"
	"github.com/nordlys-ml/urlclass/internal/dataset"
	"github.com/nordlys-ml/urlclass/internal/storage"
	"github.com/nordlys-ml/urlclass/pkg/logging"
)

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
	logger := logging.GetLogger("ingest")

	records, counts, err := dataset.ReadAll(cfg.Layout(), cfg.DatasetFormats()...)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to read datasets")
	}
	logger.Info().Interface("counts", counts).Int("total", len(records)).Msg("Normalized datasets")

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create output directory")
	}
	for name, group := range dataset.GroupBySource(records) {
		path := filepath.Join(cfg.OutputDir, name+".jsonl")
		sum, err := storage.WriteRecordsJSONL(path, group)
		if err != nil {
			logger.Fatal().Err(err).Str("dataset", name).Msg("Failed to write records")
		}
		logger.Info().
			Str("dataset", name).
			Str("path", path).
			Str("sha256", sum).
			Int("records", len(group)).
			Msg("Wrote normalized dataset")
	}

	if cfg.PostgresDSN != "" {
		sink, err := storage.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to open postgres sink")
		}
		defer sink.Close()
		if err := sink.InsertRecords("ingest", records); err != nil {
			logger.Fatal().Err(err).Msg("Failed to insert records into postgres")
		}
		logger.Info().Int("records", len(records)).Msg("Mirrored records into postgres")
	}
}
