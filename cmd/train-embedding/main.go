// Command train-embedding fits skip-gram vectors over a token corpus
// written by build-corpus and saves them in the text format the
// featurizer loads.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/nordlys-ml/urlclass/internal/config"
	"github.com/nordlys-ml/urlclass/internal/corpus"
	"github.com/nordlys-ml/urlclass/pkg/embedding"
	"github.com/nordlys-ml/urlclass/pkg/logging"
)

func main() {
	cfgPath := flag.String("config", "", "experiment YAML file")
	envPath := flag.String("env", ".env", "environment file with machine-local paths")
	corpusPath := flag.String("corpus", "", "token sentence file (required)")
	outPath := flag.String("out", "", "vectors output file (required)")
	flag.Parse()

	config.LoadEnvFile(*envPath)
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if err := logging.SetupLogger(&cfg.Logging); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	logger := logging.GetLogger("train-embedding")

	if *corpusPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: train-embedding -corpus <file> -out <file> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	sentences, err := corpus.ReadSentences(*corpusPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to read corpus")
	}
	logger.Info().Int("sentences", len(sentences)).Msg("Loaded corpus")

	table, err := embedding.Train(sentences, cfg.SkipGram)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to train embedding")
	}
	if err := table.SaveFile(*outPath); err != nil {
		logger.Fatal().Err(err).Msg("Failed to save embedding")
	}
	logger.Info().
		Str("path", *outPath).
		Int("words", table.Len()).
		Int("dim", table.Dim()).
		Msg("Saved trained embedding")
}
