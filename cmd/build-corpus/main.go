// Command build-corpus exports token sentence files from the
// configured datasets, the training input for train-embedding.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/nordlys-ml/urlclass/internal/config"
	"github.com/nordlys-ml/urlclass/internal/corpus"
	"github.com/nordlys-ml/urlclass/internal/dataset"
	"github.com/nordlys-ml/urlclass/pkg/logging"
	"github.com/nordlys-ml/urlclass/pkg/urltoken"
)

func main() {
	cfgPath := flag.String("config", "", "experiment YAML file")
	envPath := flag.String("env", ".env", "environment file with machine-local paths")
	expand := flag.Bool("expand", false, "apply the embedded abbreviation table")
	reverse := flag.Bool("reverse-path", false, "reverse the path tokens")
	stem := flag.Bool("stem", false, "reduce tokens to their English stems")
	minLen := flag.Int("min-token-len", 0, "drop tokens shorter than this")
	combined := flag.Bool("combined", false, "write one combined corpus instead of one per dataset")
	flag.Parse()

	config.LoadEnvFile(*envPath)
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if err := logging.SetupLogger(&cfg.Logging); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	logger := logging.GetLogger("build-corpus")

	builderCfg := corpus.Config{
		ReversePath: *reverse,
		Stem:        *stem,
		MinTokenLen: *minLen,
	}
	if *expand {
		builderCfg.Expansions = urltoken.DefaultExpansions()
	}
	builder := corpus.NewBuilder(builderCfg)

	records, _, err := dataset.ReadAll(cfg.Layout(), cfg.DatasetFormats()...)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to read datasets")
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create output directory")
	}

	groups := dataset.GroupBySource(records)
	if *combined {
		groups = map[string][]dataset.Record{"all": records}
	}
	for name, group := range groups {
		path := filepath.Join(cfg.OutputDir, "sentences-"+name+".txt")
		n, err := builder.WriteFile(path, group)
		if err != nil {
			logger.Fatal().Err(err).Str("dataset", name).Msg("Failed to write corpus")
		}
		logger.Info().Str("path", path).Int("sentences", n).Msg("Wrote corpus")
	}
}
