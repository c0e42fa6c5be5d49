// Command dataset-stats prints per-dataset statistics: record and
// label counts, URL length distribution, distinct URL and token
// estimates, top registered domains, and optionally the cross-dataset
// URL overlap matrix.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/nordlys-ml/urlclass/internal/config"
	"github.com/nordlys-ml/urlclass/internal/dataset"
	"github.com/nordlys-ml/urlclass/internal/report"
	"github.com/nordlys-ml/urlclass/pkg/logging"
)

func main() {
	cfgPath := flag.String("config", "", "experiment YAML file")
	envPath := flag.String("env", ".env", "environment file with machine-local paths")
	labels := flag.Bool("labels", false, "print the label distribution per dataset")
	overlap := flag.Bool("overlap", false, "print the cross-dataset URL overlap matrix")
	flag.Parse()

	config.LoadEnvFile(*envPath)
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if err := logging.SetupLogger(&cfg.Logging); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	logger := logging.GetLogger("dataset-stats")

	records, _, err := dataset.ReadAll(cfg.Layout(), cfg.DatasetFormats()...)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to read datasets")
	}

	stats := report.ComputeAll(records)
	report.WriteStatsTable(os.Stdout, stats)

	if *labels {
		for _, s := range stats {
			fmt.Printf("\n%s label distribution:\n", s.Name)
			report.WriteLabelTable(os.Stdout, s)
		}
	}

	if *overlap {
		fmt.Println("\nURL overlap (row dataset's URLs found in column dataset):")
		report.WriteOverlapTable(os.Stdout, dataset.OverlapMatrix(dataset.GroupBySource(records)))
	}
}
