package classifier

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

// CrossValResult aggregates the fold evaluations of one k-fold run.
type CrossValResult struct {
	Folds     []*Evaluation `json:"folds"`
	MeanAcc   float64       `json:"mean_accuracy"`
	StdAcc    float64       `json:"std_accuracy"`
	MeanMacro float64       `json:"mean_macro_f1"`
	StdMacro  float64       `json:"std_macro_f1"`
}

// CrossValidate runs seeded k-fold cross validation: samples are
// shuffled once, cut into k near-equal folds, and each fold serves as
// the test set for a model trained on the rest.
func CrossValidate(features [][]float64, labels []string, k int, cfg TrainConfig) (*CrossValResult, error) {
	if k < 2 {
		return nil, fmt.Errorf("need at least 2 folds, got %d", k)
	}
	if len(features) < k {
		return nil, fmt.Errorf("need at least %d samples for %d folds, got %d", k, k, len(features))
	}
	if len(features) != len(labels) {
		return nil, fmt.Errorf("feature count %d does not match label count %d", len(features), len(labels))
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	order := rng.Perm(len(features))

	result := &CrossValResult{}
	accs := make([]float64, 0, k)
	macros := make([]float64, 0, k)

	for fold := 0; fold < k; fold++ {
		lo := fold * len(order) / k
		hi := (fold + 1) * len(order) / k

		trainX := make([][]float64, 0, len(order)-(hi-lo))
		trainY := make([]string, 0, len(order)-(hi-lo))
		testX := make([][]float64, 0, hi-lo)
		testY := make([]string, 0, hi-lo)
		for i, idx := range order {
			if i >= lo && i < hi {
				testX = append(testX, features[idx])
				testY = append(testY, labels[idx])
			} else {
				trainX = append(trainX, features[idx])
				trainY = append(trainY, labels[idx])
			}
		}

		model, err := Train(trainX, trainY, cfg)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", fold+1, err)
		}
		eval, err := EvaluateModel(model, testX, testY)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", fold+1, err)
		}
		log.Debug().
			Int("fold", fold+1).
			Float64("accuracy", eval.Accuracy).
			Float64("macro_f1", eval.MacroF1).
			Msg("Finished cross validation fold")

		result.Folds = append(result.Folds, eval)
		accs = append(accs, eval.Accuracy)
		macros = append(macros, eval.MacroF1)
	}

	result.MeanAcc, result.StdAcc = stat.MeanStdDev(accs, nil)
	result.MeanMacro, result.StdMacro = stat.MeanStdDev(macros, nil)
	return result, nil
}
