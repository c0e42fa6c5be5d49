package report

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/nordlys-ml/urlclass/internal/classifier"
)

// RenderEvaluationChart writes a standalone HTML bar chart of the
// per-class precision, recall and F1 of one evaluation.
func RenderEvaluationChart(w io.Writer, title string, eval *classifier.Evaluation) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("accuracy %.3f, macro-F1 %.3f over %d samples", eval.Accuracy, eval.MacroF1, eval.Total),
		}),
	)

	labels := make([]string, 0, len(eval.PerClass))
	precision := make([]opts.BarData, 0, len(eval.PerClass))
	recall := make([]opts.BarData, 0, len(eval.PerClass))
	f1 := make([]opts.BarData, 0, len(eval.PerClass))
	for _, m := range eval.PerClass {
		labels = append(labels, m.Label)
		precision = append(precision, opts.BarData{Value: m.Precision})
		recall = append(recall, opts.BarData{Value: m.Recall})
		f1 = append(f1, opts.BarData{Value: m.F1})
	}

	bar.SetXAxis(labels).
		AddSeries("precision", precision).
		AddSeries("recall", recall).
		AddSeries("f1", f1)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render evaluation chart: %w", err)
	}
	return nil
}

// WriteEvaluationChart renders the chart into an HTML file.
func WriteEvaluationChart(path, title string, eval *classifier.Evaluation) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	if err := RenderEvaluationChart(f, title, eval); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close chart file %s: %w", path, err)
	}
	return nil
}
