package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/rodaine/table"

	"github.com/nordlys-ml/urlclass/internal/classifier"
)

// WriteStatsTable renders dataset statistics as an aligned text table.
func WriteStatsTable(w io.Writer, stats []Stats) {
	tbl := table.New("Dataset", "Records", "Labels", "URL len (mean±std)", "Distinct URLs", "Distinct tokens", "Top domain")
	tbl.WithWriter(w)
	for _, s := range stats {
		top := ""
		if len(s.TopDomains) > 0 {
			top = fmt.Sprintf("%s (%d)", s.TopDomains[0].Domain, s.TopDomains[0].Count)
		}
		tbl.AddRow(
			s.Name,
			s.Records,
			len(s.Labels),
			fmt.Sprintf("%.1f±%.1f", s.URLLenMean, s.URLLenStd),
			s.DistinctURLs,
			s.DistinctTokens,
			top,
		)
	}
	tbl.Print()
}

// WriteLabelTable renders one dataset's label distribution, largest
// label first.
func WriteLabelTable(w io.Writer, s Stats) {
	labels := make([]string, 0, len(s.Labels))
	for label := range s.Labels {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if s.Labels[labels[i]] != s.Labels[labels[j]] {
			return s.Labels[labels[i]] > s.Labels[labels[j]]
		}
		return labels[i] < labels[j]
	})

	tbl := table.New("Label", "Records", "Share")
	tbl.WithWriter(w)
	for _, label := range labels {
		share := float64(s.Labels[label]) / float64(s.Records)
		tbl.AddRow(label, s.Labels[label], fmt.Sprintf("%.1f%%", share*100))
	}
	tbl.Print()
}

// WriteEvaluationTable renders per-class metrics plus the aggregate
// row of one evaluation.
func WriteEvaluationTable(w io.Writer, eval *classifier.Evaluation) {
	tbl := table.New("Label", "Support", "Precision", "Recall", "F1")
	tbl.WithWriter(w)
	for _, m := range eval.PerClass {
		tbl.AddRow(m.Label, m.Support, fmt.Sprintf("%.3f", m.Precision),
			fmt.Sprintf("%.3f", m.Recall), fmt.Sprintf("%.3f", m.F1))
	}
	tbl.Print()
	fmt.Fprintf(w, "\naccuracy %.3f  macro-F1 %.3f  (%d samples)\n",
		eval.Accuracy, eval.MacroF1, eval.Total)
}

// WriteConfusionTable renders the confusion matrix with true labels
// as rows and predictions as columns.
func WriteConfusionTable(w io.Writer, eval *classifier.Evaluation) {
	header := make([]interface{}, 0, len(eval.Labels)+1)
	header = append(header, "true \\ predicted")
	for _, label := range eval.Labels {
		header = append(header, label)
	}

	tbl := table.New(header...)
	tbl.WithWriter(w)
	for i, label := range eval.Labels {
		row := make([]interface{}, 0, len(eval.Labels)+1)
		row = append(row, label)
		for _, n := range eval.Confusion[i] {
			row = append(row, n)
		}
		tbl.AddRow(row...)
	}
	tbl.Print()
}

// WriteOverlapTable renders the pairwise URL overlap matrix.
func WriteOverlapTable(w io.Writer, matrix map[string]map[string]int) {
	names := make([]string, 0, len(matrix))
	for name := range matrix {
		names = append(names, name)
	}
	sort.Strings(names)

	header := make([]interface{}, 0, len(names)+1)
	header = append(header, "dataset")
	for _, name := range names {
		header = append(header, name)
	}

	tbl := table.New(header...)
	tbl.WithWriter(w)
	for _, x := range names {
		row := make([]interface{}, 0, len(names)+1)
		row = append(row, x)
		for _, y := range names {
			row = append(row, matrix[x][y])
		}
		tbl.AddRow(row...)
	}
	tbl.Print()
}
