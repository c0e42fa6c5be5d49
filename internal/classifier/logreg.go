// Package classifier trains and evaluates the baseline URL classifiers
// on feature vectors. The baseline is a multinomial logistic
// regression fitted with plain SGD, which is strong enough to compare
// tokenization and embedding variants against each other.
package classifier

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TrainConfig holds the SGD settings for logistic regression.
type TrainConfig struct {
	Epochs      int     `json:"epochs" yaml:"epochs"`
	LearnRate   float64 `json:"learn_rate" yaml:"learn_rate"`
	L2          float64 `json:"l2" yaml:"l2"`
	Seed        int64   `json:"seed" yaml:"seed"`
	Standardize bool    `json:"standardize" yaml:"standardize"`
}

// DefaultTrainConfig returns settings that converge on the hand picked
// feature vectors without tuning.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Epochs:      100,
		LearnRate:   0.1,
		L2:          1e-4,
		Seed:        42,
		Standardize: true,
	}
}

// Model is a trained multinomial logistic regression. Weights has one
// row per label with the bias as the last column. Mean and Std hold
// the feature standardization fitted during training, empty when
// standardization was disabled.
type Model struct {
	Labels  []string    `json:"labels"`
	Weights [][]float64 `json:"weights"`
	Mean    []float64   `json:"mean,omitempty"`
	Std     []float64   `json:"std,omitempty"`
}

// Train fits a model on feature vectors and their labels.
func Train(features [][]float64, labels []string, cfg TrainConfig) (*Model, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("no training samples")
	}
	if len(features) != len(labels) {
		return nil, fmt.Errorf("feature count %d does not match label count %d", len(features), len(labels))
	}
	if cfg.Epochs <= 0 || cfg.LearnRate <= 0 {
		return nil, fmt.Errorf("epochs and learn rate must be positive")
	}
	dim := len(features[0])
	for i, f := range features {
		if len(f) != dim {
			return nil, fmt.Errorf("sample %d has %d features, expected %d", i, len(f), dim)
		}
	}

	m := &Model{Labels: distinctLabels(labels)}
	if len(m.Labels) < 2 {
		return nil, fmt.Errorf("need at least two distinct labels, got %d", len(m.Labels))
	}
	classIndex := make(map[string]int, len(m.Labels))
	for i, label := range m.Labels {
		classIndex[label] = i
	}

	x := features
	if cfg.Standardize {
		m.Mean, m.Std = fitStandardizer(features)
		x = make([][]float64, len(features))
		for i, f := range features {
			x[i] = standardize(f, m.Mean, m.Std)
		}
	}

	m.Weights = make([][]float64, len(m.Labels))
	for i := range m.Weights {
		m.Weights[i] = make([]float64, dim+1)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	order := rng.Perm(len(x))
	probs := make([]float64, len(m.Labels))

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		var loss float64
		for _, idx := range order {
			sample := x[idx]
			target := classIndex[labels[idx]]

			m.scores(sample, probs)
			softmaxInPlace(probs)
			loss -= math.Log(math.Max(probs[target], 1e-12))

			for k, w := range m.Weights {
				g := probs[k]
				if k == target {
					g -= 1
				}
				step := cfg.LearnRate * g
				for d := 0; d < dim; d++ {
					w[d] -= step*sample[d] + cfg.LearnRate*cfg.L2*w[d]
				}
				w[dim] -= step
			}
		}
		if (epoch+1)%25 == 0 {
			log.Debug().
				Int("epoch", epoch+1).
				Float64("loss", loss/float64(len(x))).
				Msg("Completed classifier epoch")
		}
	}
	return m, nil
}

// Predict returns the most probable label for one feature vector.
func (m *Model) Predict(features []float64) string {
	probs := m.PredictProba(features)
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return m.Labels[best]
}

// PredictProba returns class probabilities aligned with m.Labels.
func (m *Model) PredictProba(features []float64) []float64 {
	if len(m.Mean) > 0 {
		features = standardize(features, m.Mean, m.Std)
	}
	probs := make([]float64, len(m.Labels))
	m.scores(features, probs)
	softmaxInPlace(probs)
	return probs
}

// PredictAll predicts a label per row.
func (m *Model) PredictAll(features [][]float64) []string {
	out := make([]string, len(features))
	for i, f := range features {
		out[i] = m.Predict(f)
	}
	return out
}

// scores writes the raw linear scores for an already standardized
// sample into out.
func (m *Model) scores(sample []float64, out []float64) {
	dim := len(sample)
	for k, w := range m.Weights {
		out[k] = floats.Dot(w[:dim], sample) + w[dim]
	}
}

func softmaxInPlace(scores []float64) {
	max := floats.Max(scores)
	var sum float64
	for i, s := range scores {
		scores[i] = math.Exp(s - max)
		sum += scores[i]
	}
	floats.Scale(1/sum, scores)
}

func distinctLabels(labels []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, label := range labels {
		if !seen[label] {
			seen[label] = true
			out = append(out, label)
		}
	}
	sort.Strings(out)
	return out
}

// fitStandardizer computes per column mean and standard deviation.
// Constant columns get deviation 1 so standardizing them is a no-op
// shift instead of a division by zero.
func fitStandardizer(features [][]float64) (mean, std []float64) {
	dim := len(features[0])
	mean = make([]float64, dim)
	std = make([]float64, dim)
	col := make([]float64, len(features))
	for d := 0; d < dim; d++ {
		for i, f := range features {
			col[i] = f[d]
		}
		mean[d] = stat.Mean(col, nil)
		std[d] = stat.StdDev(col, nil)
		if std[d] == 0 || math.IsNaN(std[d]) {
			std[d] = 1
		}
	}
	return mean, std
}

func standardize(features, mean, std []float64) []float64 {
	out := make([]float64, len(features))
	for i := range features {
		out[i] = (features[i] - mean[i]) / std[i]
	}
	return out
}
