package embedding

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

// TrainConfig holds skip-gram training settings. The defaults follow
// the common word2vec values with a smaller minimum count, since URL
// token corpora are far smaller than natural language ones.
type TrainConfig struct {
	Dim       int     `json:"dim" yaml:"dim"`
	Window    int     `json:"window" yaml:"window"`
	Epochs    int     `json:"epochs" yaml:"epochs"`
	Negative  int     `json:"negative" yaml:"negative"`
	LearnRate float64 `json:"learn_rate" yaml:"learn_rate"`
	MinCount  int     `json:"min_count" yaml:"min_count"`
	Subsample float64 `json:"subsample" yaml:"subsample"`
	Seed      int64   `json:"seed" yaml:"seed"`
}

// DefaultTrainConfig returns the standard training settings.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Dim:       100,
		Window:    5,
		Epochs:    10,
		Negative:  5,
		LearnRate: 0.025,
		MinCount:  2,
		Subsample: 1e-3,
		Seed:      42,
	}
}

func (c TrainConfig) validate() error {
	switch {
	case c.Dim <= 0:
		return fmt.Errorf("dim must be positive, got %d", c.Dim)
	case c.Window <= 0:
		return fmt.Errorf("window must be positive, got %d", c.Window)
	case c.Epochs <= 0:
		return fmt.Errorf("epochs must be positive, got %d", c.Epochs)
	case c.Negative < 0:
		return fmt.Errorf("negative sample count must not be negative, got %d", c.Negative)
	case c.LearnRate <= 0:
		return fmt.Errorf("learn rate must be positive, got %g", c.LearnRate)
	}
	return nil
}

// Train fits skip-gram vectors with negative sampling over tokenized
// sentences. Runs with the same sentences, config and seed produce
// identical tables.
func Train(sentences [][]string, cfg TrainConfig) (*Table, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid training config: %w", err)
	}
	if len(sentences) == 0 {
		return nil, fmt.Errorf("no training sentences")
	}

	vocab := buildVocab(sentences, cfg.MinCount)
	if len(vocab.words) == 0 {
		return nil, fmt.Errorf("no words appear at least %d times", cfg.MinCount)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	in := make([][]float64, len(vocab.words))
	out := make([][]float64, len(vocab.words))
	for i := range in {
		in[i] = make([]float64, cfg.Dim)
		for d := range in[i] {
			in[i][d] = (rng.Float64() - 0.5) / float64(cfg.Dim)
		}
		out[i] = make([]float64, cfg.Dim)
	}

	totalWords := float64(vocab.total * cfg.Epochs)
	processed := 0
	grad := make([]float64, cfg.Dim)

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		var loss float64
		var pairs int
		for _, sentence := range sentences {
			ids := vocab.sample(sentence, cfg.Subsample, rng)
			for i, center := range ids {
				alpha := cfg.LearnRate * math.Max(1-float64(processed)/totalWords, 1e-4)
				processed++

				win := 1 + rng.Intn(cfg.Window)
				for j := i - win; j <= i+win; j++ {
					if j < 0 || j >= len(ids) || j == i {
						continue
					}
					loss += trainPair(in[center], out, vocab, ids[j], cfg.Negative, alpha, grad, rng)
					pairs++
				}
			}
		}
		if pairs > 0 {
			log.Debug().
				Int("epoch", epoch+1).
				Int("pairs", pairs).
				Float64("loss", loss/float64(pairs)).
				Msg("Completed embedding epoch")
		}
	}

	t := &Table{dim: cfg.Dim, vectors: make(map[string][]float64, len(vocab.words)), avg: make([]float64, cfg.Dim)}
	for i, word := range vocab.words {
		t.vectors[word] = in[i]
		floats.Add(t.avg, in[i])
	}
	floats.Scale(1/float64(len(vocab.words)), t.avg)
	return t, nil
}

// trainPair applies one positive and Negative sampled updates for a
// (center, context) pair and returns the pair's log loss.
func trainPair(l1 []float64, out [][]float64, v *vocabulary, ctx, negative int, alpha float64, grad []float64, rng *rand.Rand) float64 {
	for i := range grad {
		grad[i] = 0
	}
	var loss float64

	p := sigmoid(floats.Dot(l1, out[ctx]))
	loss -= math.Log(math.Max(p, 1e-10))
	g := (1 - p) * alpha
	floats.AddScaled(grad, g, out[ctx])
	floats.AddScaled(out[ctx], g, l1)

	for n := 0; n < negative; n++ {
		neg := v.negativeSample(rng)
		if neg == ctx {
			continue
		}
		p := sigmoid(floats.Dot(l1, out[neg]))
		loss -= math.Log(math.Max(1-p, 1e-10))
		g := -p * alpha
		floats.AddScaled(grad, g, out[neg])
		floats.AddScaled(out[neg], g, l1)
	}

	floats.Add(l1, grad)
	return loss
}

func sigmoid(x float64) float64 {
	switch {
	case x > 6:
		return 1
	case x < -6:
		return 0
	}
	return 1 / (1 + math.Exp(-x))
}

type vocabulary struct {
	words  []string
	index  map[string]int
	counts []int
	total  int
	cum    []float64
}

// buildVocab counts tokens and keeps those seen at least minCount
// times, ordered by descending count with ties broken alphabetically
// so training is deterministic.
func buildVocab(sentences [][]string, minCount int) *vocabulary {
	counts := make(map[string]int)
	for _, sentence := range sentences {
		for _, w := range sentence {
			counts[w]++
		}
	}

	v := &vocabulary{index: make(map[string]int)}
	for w, c := range counts {
		if c >= minCount {
			v.words = append(v.words, w)
		}
	}
	sort.Slice(v.words, func(i, j int) bool {
		ci, cj := counts[v.words[i]], counts[v.words[j]]
		if ci != cj {
			return ci > cj
		}
		return v.words[i] < v.words[j]
	})

	v.counts = make([]int, len(v.words))
	v.cum = make([]float64, len(v.words))
	var cum float64
	for i, w := range v.words {
		v.index[w] = i
		v.counts[i] = counts[w]
		v.total += counts[w]
		// Unigram distribution raised to 3/4, as in word2vec.
		cum += math.Pow(float64(counts[w]), 0.75)
		v.cum[i] = cum
	}
	return v
}

// sample maps a sentence to vocabulary ids, dropping unknown words and
// randomly discarding very frequent ones when subsample is enabled.
func (v *vocabulary) sample(sentence []string, subsample float64, rng *rand.Rand) []int {
	ids := make([]int, 0, len(sentence))
	for _, w := range sentence {
		id, ok := v.index[w]
		if !ok {
			continue
		}
		if subsample > 0 {
			freq := float64(v.counts[id]) / float64(v.total)
			keep := math.Sqrt(subsample/freq) + subsample/freq
			if keep < 1 && rng.Float64() > keep {
				continue
			}
		}
		ids = append(ids, id)
	}
	return ids
}

func (v *vocabulary) negativeSample(rng *rand.Rand) int {
	r := rng.Float64() * v.cum[len(v.cum)-1]
	return sort.SearchFloat64s(v.cum, r)
}
