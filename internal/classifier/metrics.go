package classifier

import (
	"fmt"
	"sort"
)

// ClassMetrics holds per label precision, recall and F1.
type ClassMetrics struct {
	Label     string  `json:"label"`
	Support   int     `json:"support"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Evaluation summarizes predictions against true labels.
type Evaluation struct {
	Accuracy  float64        `json:"accuracy"`
	MacroF1   float64        `json:"macro_f1"`
	PerClass  []ClassMetrics `json:"per_class"`
	Labels    []string       `json:"labels"`
	Confusion [][]int        `json:"confusion"`
	Total     int            `json:"total"`
}

// Evaluate compares predicted labels with true labels. Both slices
// must be aligned; labels never seen in either slice get no row.
func Evaluate(trueLabels, predicted []string) (*Evaluation, error) {
	if len(trueLabels) != len(predicted) {
		return nil, fmt.Errorf("true label count %d does not match prediction count %d",
			len(trueLabels), len(predicted))
	}
	if len(trueLabels) == 0 {
		return nil, fmt.Errorf("no samples to evaluate")
	}

	labels := distinctLabels(append(append([]string{}, trueLabels...), predicted...))
	index := make(map[string]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}

	// Confusion rows are true labels, columns are predictions.
	confusion := make([][]int, len(labels))
	for i := range confusion {
		confusion[i] = make([]int, len(labels))
	}
	correct := 0
	for i, truth := range trueLabels {
		confusion[index[truth]][index[predicted[i]]]++
		if truth == predicted[i] {
			correct++
		}
	}

	eval := &Evaluation{
		Accuracy:  float64(correct) / float64(len(trueLabels)),
		Labels:    labels,
		Confusion: confusion,
		Total:     len(trueLabels),
	}

	var f1Sum float64
	for i, label := range labels {
		tp := confusion[i][i]
		var fp, fn, support int
		for j := range labels {
			if j != i {
				fp += confusion[j][i]
				fn += confusion[i][j]
			}
			support += confusion[i][j]
		}
		m := ClassMetrics{Label: label, Support: support}
		if tp+fp > 0 {
			m.Precision = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			m.Recall = float64(tp) / float64(tp+fn)
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		f1Sum += m.F1
		eval.PerClass = append(eval.PerClass, m)
	}
	eval.MacroF1 = f1Sum / float64(len(labels))
	return eval, nil
}

// EvaluateModel predicts every sample and scores the predictions.
func EvaluateModel(m *Model, features [][]float64, labels []string) (*Evaluation, error) {
	return Evaluate(labels, m.PredictAll(features))
}

// SortedByF1 returns the per class metrics ordered worst first, which
// is the order worth reading when a model misbehaves.
func (e *Evaluation) SortedByF1() []ClassMetrics {
	out := make([]ClassMetrics, len(e.PerClass))
	copy(out, e.PerClass)
	sort.Slice(out, func(i, j int) bool { return out[i].F1 < out[j].F1 })
	return out
}
