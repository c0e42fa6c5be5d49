// Command snapshot freezes the normalized, shuffled datasets into a
// checksummed snapshot so experiments can be rerun against identical
// inputs. Snapshots are git committed by default.
package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nordlys-ml/urlclass/internal/config"
	"github.com/nordlys-ml/urlclass/internal/dataset"
	"github.com/nordlys-ml/urlclass/internal/storage"
	"github.com/nordlys-ml/urlclass/pkg/logging"
)

func main() {
	cfgPath := flag.String("config", "", "experiment YAML file")
	envPath := flag.String("env", ".env", "environment file with machine-local paths")
	plain := flag.Bool("plain", false, "write a plain directory instead of committing to git")
	list := flag.Bool("list", false, "list stored snapshots instead of creating one")
	flag.Parse()

	config.LoadEnvFile(*envPath)
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if err := logging.SetupLogger(&cfg.Logging); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	logger := logging.GetLogger("snapshot")

	store := openStore(logger, cfg, *plain)

	if *list {
		manifests, err := store.List()
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to list snapshots")
		}
		for _, m := range manifests {
			total := 0
			for _, df := range m.Datasets {
				total += df.Records
			}
			fmt.Printf("%s  %s  seed=%d  datasets=%d  records=%d\n",
				m.ID, m.CreatedAt.Format("2006-01-02 15:04:05"), m.Seed, len(m.Datasets), total)
		}
		return
	}

	records, counts, err := dataset.ReadAll(cfg.Layout(), cfg.DatasetFormats()...)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to read datasets")
	}

	snap := storage.NewSnapshot(records, cfg.Seed)
	ref, err := store.Save(snap)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to save snapshot")
	}
	logger.Info().
		Str("id", snap.Manifest.ID).
		Str("ref", ref).
		Interface("counts", counts).
		Msg("Saved snapshot")

	if cfg.PostgresDSN != "" {
		sink, err := storage.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to open postgres sink")
		}
		defer sink.Close()
		if err := sink.InsertRecords(snap.Manifest.ID, snap.All()); err != nil {
			logger.Fatal().Err(err).Msg("Failed to insert snapshot into postgres")
		}
		logger.Info().Str("snapshot", snap.Manifest.ID).Msg("Mirrored snapshot into postgres")
	}
}

func openStore(logger zerolog.Logger, cfg *config.Config, plain bool) storage.Store {
	root := filepath.Join(cfg.OutputDir, "snapshots")
	metrics := storage.NewCollector()
	if plain {
		store, err := storage.NewFSStore(root, metrics)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to open snapshot directory")
		}
		return store
	}
	store, err := storage.NewGitStore(root, metrics)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open snapshot repository")
	}
	return store
}
