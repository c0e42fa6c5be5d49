// Command train-classifier fits the logistic regression baseline on
// featurized URLs, evaluates it on a held out split and saves the
// model as JSON.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/nordlys-ml/urlclass/internal/classifier"
	"github.com/nordlys-ml/urlclass/internal/config"
	"github.com/nordlys-ml/urlclass/internal/dataset"
	"github.com/nordlys-ml/urlclass/internal/report"
	"github.com/nordlys-ml/urlclass/pkg/featurize"
	"github.com/nordlys-ml/urlclass/pkg/logging"
)

func main() {
	cfgPath := flag.String("config", "", "experiment YAML file")
	envPath := flag.String("env", ".env", "environment file with machine-local paths")
	modelOut := flag.String("model", "", "model output path (default <output_dir>/model.json)")
	flag.Parse()

	config.LoadEnvFile(*envPath)
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if err := logging.SetupLogger(&cfg.Logging); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	logger := logging.GetLogger("train-classifier")

	records, counts, err := dataset.ReadAll(cfg.Layout(), cfg.DatasetFormats()...)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to read datasets")
	}
	logger.Info().Interface("counts", counts).Msg("Loaded datasets")

	dataset.Shuffle(records, cfg.Seed)
	train, test, err := dataset.Split(records, cfg.TrainFrac)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to split dataset")
	}

	emb, err := cfg.LoadEmbedding()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load embedding table")
	}
	f := featurize.New(emb, featurize.WithMaxLens(
		cfg.Featurizer.SubMax, cfg.Featurizer.MainMax, cfg.Featurizer.PathMax, cfg.Featurizer.ArgMax))

	trainX, trainY := combined(f, train)
	testX, testY := combined(f, test)

	model, err := classifier.Train(trainX, trainY, cfg.Training)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to train classifier")
	}

	eval, err := classifier.EvaluateModel(model, testX, testY)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to evaluate classifier")
	}
	report.WriteEvaluationTable(os.Stdout, eval)

	path := *modelOut
	if path == "" {
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			logger.Fatal().Err(err).Msg("Failed to create output directory")
		}
		path = filepath.Join(cfg.OutputDir, "model.json")
	}
	if err := classifier.SaveModel(model, path); err != nil {
		logger.Fatal().Err(err).Msg("Failed to save model")
	}
	logger.Info().
		Str("path", path).
		Float64("accuracy", eval.Accuracy).
		Float64("macro_f1", eval.MacroF1).
		Msg("Saved trained model")
}

// combined featurizes records into the flat classifier input.
func combined(f *featurize.Featurizer, records []dataset.Record) ([][]float64, []string) {
	feats := f.FeaturizeAll(dataset.URLs(records))
	x := make([][]float64, len(feats))
	y := make([]string, len(feats))
	for i, feat := range feats {
		x[i] = feat.Combined()
		y[i] = records[i].Label
	}
	return x, y
}
