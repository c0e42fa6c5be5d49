package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordlys-ml/urlclass/internal/classifier"
	"github.com/nordlys-ml/urlclass/internal/dataset"
)

func statsRecords() []dataset.Record {
	return []dataset.Record{
		{URL: "http://www.arts-site.com/", Label: "arts", Source: "dmoz"},
		{URL: "http://www.arts-site.com/gallery", Label: "arts", Source: "dmoz"},
		{URL: "http://sports.example.org/news", Label: "sports", Source: "dmoz"},
		{URL: "not parseable", Label: "arts", Source: "dmoz"},
	}
}

func TestCompute(t *testing.T) {
	s := Compute("dmoz", statsRecords())

	assert.Equal(t, "dmoz", s.Name)
	assert.Equal(t, 4, s.Records)
	assert.Equal(t, map[string]int{"arts": 3, "sports": 1}, s.Labels)
	assert.Greater(t, s.URLLenMean, 0.0)

	// Four distinct URLs, sketch error is negligible at this size.
	assert.Equal(t, uint64(4), s.DistinctURLs)
	assert.NotZero(t, s.DistinctTokens)

	require.NotEmpty(t, s.TopDomains)
	assert.Equal(t, "arts-site.com", s.TopDomains[0].Domain)
	assert.Equal(t, 2, s.TopDomains[0].Count)
}

func TestComputeEmpty(t *testing.T) {
	s := Compute("empty", nil)
	assert.Equal(t, 0, s.Records)
	assert.Zero(t, s.URLLenMean)
	assert.Empty(t, s.TopDomains)
}

func TestComputeAllIsSorted(t *testing.T) {
	records := append(statsRecords(),
		dataset.Record{URL: "http://phish.bad-site.xyz/login", Label: "bad", Source: "phishing"})

	all := ComputeAll(records)
	require.Len(t, all, 2)
	assert.Equal(t, "dmoz", all[0].Name)
	assert.Equal(t, "phishing", all[1].Name)
}

func TestTopDomainsOrdering(t *testing.T) {
	counts := map[string]int{"b.com": 2, "a.com": 2, "c.com": 5}
	top := topDomains(counts, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "c.com", top[0].Domain)
	assert.Equal(t, "a.com", top[1].Domain, "ties break alphabetically")
}

func TestWriteStatsTable(t *testing.T) {
	var buf bytes.Buffer
	WriteStatsTable(&buf, []Stats{Compute("dmoz", statsRecords())})

	out := buf.String()
	assert.Contains(t, out, "Dataset")
	assert.Contains(t, out, "dmoz")
	assert.Contains(t, out, "arts-site.com")
}

func TestWriteLabelTable(t *testing.T) {
	var buf bytes.Buffer
	WriteLabelTable(&buf, Compute("dmoz", statsRecords()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, lines[1], "arts", "largest label must come first")
	assert.Contains(t, buf.String(), "75.0%")
}

func evalFixture(t *testing.T) *classifier.Evaluation {
	t.Helper()
	eval, err := classifier.Evaluate(
		[]string{"good", "good", "bad", "bad"},
		[]string{"good", "bad", "bad", "bad"},
	)
	require.NoError(t, err)
	return eval
}

func TestWriteEvaluationTable(t *testing.T) {
	var buf bytes.Buffer
	WriteEvaluationTable(&buf, evalFixture(t))

	out := buf.String()
	assert.Contains(t, out, "Precision")
	assert.Contains(t, out, "bad")
	assert.Contains(t, out, "accuracy 0.750")
}

func TestWriteConfusionTable(t *testing.T) {
	var buf bytes.Buffer
	WriteConfusionTable(&buf, evalFixture(t))

	out := buf.String()
	assert.Contains(t, out, "true \\ predicted")
	assert.Contains(t, out, "good")
}

func TestWriteOverlapTable(t *testing.T) {
	var buf bytes.Buffer
	WriteOverlapTable(&buf, map[string]map[string]int{
		"dmoz":     {"dmoz": 3, "phishing": 1},
		"phishing": {"dmoz": 1, "phishing": 2},
	})

	out := buf.String()
	assert.Contains(t, out, "dmoz")
	assert.Contains(t, out, "phishing")
}

func TestRenderEvaluationChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderEvaluationChart(&buf, "baseline", evalFixture(t)))

	out := buf.String()
	assert.Contains(t, out, "baseline")
	assert.Contains(t, out, "echarts")
}
