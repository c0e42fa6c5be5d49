// Command eval-classifier scores a saved model against the configured
// datasets, optionally runs k-fold cross validation and renders an
// HTML chart of the per-class metrics.
package main

import (
	"flag"
	"fmt"
	"os"

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
	modelPath := flag.String("model", "", "saved model JSON (required unless -kfold is set)")
	kfold := flag.Int("kfold", 0, "run k-fold cross validation instead of scoring a saved model")
	chartPath := flag.String("chart", "", "write an HTML bar chart of per-class metrics to this path")
	confusion := flag.Bool("confusion", false, "print the confusion matrix")
	flag.Parse()

	config.LoadEnvFile(*envPath)
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if err := logging.SetupLogger(&cfg.Logging); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	logger := logging.GetLogger("eval-classifier")

	if *modelPath == "" && *kfold == 0 {
		fmt.Fprintln(os.Stderr, "usage: eval-classifier -model <file> | -kfold <n> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

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
	x := make([][]float64, len(feats))
	y := make([]string, len(feats))
	for i, feat := range feats {
		x[i] = feat.Combined()
		y[i] = records[i].Label
	}

	if *kfold > 0 {
		result, err := classifier.CrossValidate(x, y, *kfold, cfg.Training)
		if err != nil {
			logger.Fatal().Err(err).Msg("Cross validation failed")
		}
		fmt.Printf("%d-fold cross validation: accuracy %.3f±%.3f, macro-F1 %.3f±%.3f\n",
			*kfold, result.MeanAcc, result.StdAcc, result.MeanMacro, result.StdMacro)
		return
	}

	model, err := classifier.LoadModel(*modelPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load model")
	}
	eval, err := classifier.EvaluateModel(model, x, y)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to evaluate model")
	}

	report.WriteEvaluationTable(os.Stdout, eval)
	if *confusion {
		fmt.Println()
		report.WriteConfusionTable(os.Stdout, eval)
	}
	if *chartPath != "" {
		if err := report.WriteEvaluationChart(*chartPath, "url classifier evaluation", eval); err != nil {
			logger.Fatal().Err(err).Msg("Failed to write chart")
		}
		logger.Info().Str("path", *chartPath).Msg("Wrote evaluation chart")
	}
}
