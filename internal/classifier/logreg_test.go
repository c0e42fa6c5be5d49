package classifier

import (
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toyData builds two well separated gaussian blobs plus a third class
// offset on the second axis, enough for SGD to reach a clean fit.
func toyData(n int, seed int64) ([][]float64, []string) {
	rng := rand.New(rand.NewSource(seed))
	centers := map[string][]float64{
		"alpha": {0, 0},
		"beta":  {6, 0},
		"gamma": {3, 6},
	}
	var features [][]float64
	var labels []string
	for label, c := range centers {
		for i := 0; i < n; i++ {
			features = append(features, []float64{
				c[0] + rng.NormFloat64()*0.5,
				c[1] + rng.NormFloat64()*0.5,
			})
			labels = append(labels, label)
		}
	}
	return features, labels
}

func TestTrainSeparableData(t *testing.T) {
	features, labels := toyData(40, 1)

	model, err := Train(features, labels, DefaultTrainConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, model.Labels)

	eval, err := EvaluateModel(model, features, labels)
	require.NoError(t, err)
	assert.Greater(t, eval.Accuracy, 0.95)
}

func TestTrainIsDeterministic(t *testing.T) {
	features, labels := toyData(20, 2)
	cfg := DefaultTrainConfig()

	a, err := Train(features, labels, cfg)
	require.NoError(t, err)
	b, err := Train(features, labels, cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Weights, b.Weights)
}

func TestTrainRejectsBadInput(t *testing.T) {
	cfg := DefaultTrainConfig()

	_, err := Train(nil, nil, cfg)
	assert.Error(t, err)

	_, err = Train([][]float64{{1}}, []string{"a", "b"}, cfg)
	assert.Error(t, err)

	_, err = Train([][]float64{{1}, {2}}, []string{"only", "only"}, cfg)
	assert.Error(t, err, "single class data must be rejected")

	_, err = Train([][]float64{{1, 2}, {3}}, []string{"a", "b"}, cfg)
	assert.Error(t, err, "ragged feature rows must be rejected")
}

func TestPredictProbaSumsToOne(t *testing.T) {
	features, labels := toyData(15, 3)
	model, err := Train(features, labels, DefaultTrainConfig())
	require.NoError(t, err)

	probs := model.PredictProba([]float64{3, 3})
	require.Len(t, probs, 3)
	var sum float64
	for _, p := range probs {
		assert.GreaterOrEqual(t, p, 0.0)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestStandardizationStored(t *testing.T) {
	features, labels := toyData(15, 4)

	cfg := DefaultTrainConfig()
	cfg.Standardize = true
	model, err := Train(features, labels, cfg)
	require.NoError(t, err)
	require.Len(t, model.Mean, 2)
	require.Len(t, model.Std, 2)
	for _, s := range model.Std {
		assert.False(t, math.IsNaN(s))
		assert.NotZero(t, s)
	}

	cfg.Standardize = false
	plain, err := Train(features, labels, cfg)
	require.NoError(t, err)
	assert.Empty(t, plain.Mean)
}

func TestSaveLoadModelRoundTrip(t *testing.T) {
	features, labels := toyData(15, 5)
	model, err := Train(features, labels, DefaultTrainConfig())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, SaveModel(model, path))

	loaded, err := LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, model.Labels, loaded.Labels)
	assert.Equal(t, model.Predict([]float64{6, 0}), loaded.Predict([]float64{6, 0}))
}

func TestLoadModelRejectsCorrupt(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadModel(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, SaveModel(&Model{Labels: []string{"a", "b"}, Weights: [][]float64{{1, 2}, {1}}}, bad))
	_, err = LoadModel(bad)
	assert.Error(t, err, "ragged weight rows must be rejected")
}

func TestCrossValidate(t *testing.T) {
	features, labels := toyData(20, 6)

	result, err := CrossValidate(features, labels, 5, DefaultTrainConfig())
	require.NoError(t, err)
	require.Len(t, result.Folds, 5)
	assert.Greater(t, result.MeanAcc, 0.9)
	assert.GreaterOrEqual(t, result.StdAcc, 0.0)

	_, err = CrossValidate(features, labels, 1, DefaultTrainConfig())
	assert.Error(t, err, "single fold is not cross validation")
}
