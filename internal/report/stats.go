// Package report computes dataset statistics and renders experiment
// results as terminal tables or HTML charts.
package report

import (
	"sort"

	"github.com/axiomhq/hyperloglog"
	"golang.org/x/net/publicsuffix"
	"gonum.org/v1/gonum/stat"

	"github.com/nordlys-ml/urlclass/internal/dataset"
	"github.com/nordlys-ml/urlclass/pkg/urltoken"
)

// topDomainCount caps how many registered domains a report keeps.
const topDomainCount = 10

// DomainCount is one registered domain with its record count.
type DomainCount struct {
	Domain string
	Count  int
}

// Stats summarizes one dataset. Distinct counts are HyperLogLog
// estimates, exact enough for corpus-sized inputs while staying cheap
// on the multi-million row DMOZ export.
type Stats struct {
	Name           string
	Records        int
	Labels         map[string]int
	URLLenMean     float64
	URLLenStd      float64
	DistinctURLs   uint64
	DistinctTokens uint64
	TopDomains     []DomainCount
}

// Compute derives statistics for one dataset. URLs the tokenizer
// rejects still count toward lengths and distinct URLs but contribute
// no tokens or domains.
func Compute(name string, records []dataset.Record) Stats {
	s := Stats{
		Name:    name,
		Records: len(records),
		Labels:  dataset.CountByLabel(records),
	}

	urlSketch := hyperloglog.New16()
	tokenSketch := hyperloglog.New16()
	domains := make(map[string]int)
	lengths := make([]float64, 0, len(records))
	tok := urltoken.NewTokenizer()

	for _, r := range records {
		lengths = append(lengths, float64(len(r.URL)))
		urlSketch.Insert([]byte(r.URL))

		data, err := tok.Tokenize(r.URL)
		if err != nil {
			continue
		}
		for _, t := range urltoken.Flatten(data) {
			tokenSketch.Insert([]byte(t))
		}
		if domain, err := publicsuffix.EffectiveTLDPlusOne(data.Raw.Host); err == nil {
			domains[domain]++
		}
	}

	if len(lengths) > 0 {
		s.URLLenMean, s.URLLenStd = stat.MeanStdDev(lengths, nil)
		if len(lengths) == 1 {
			s.URLLenStd = 0
		}
	}
	s.DistinctURLs = urlSketch.Estimate()
	s.DistinctTokens = tokenSketch.Estimate()
	s.TopDomains = topDomains(domains, topDomainCount)
	return s
}

// ComputeAll computes per-source statistics, ordered by source name.
func ComputeAll(records []dataset.Record) []Stats {
	groups := dataset.GroupBySource(records)
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Stats, 0, len(names))
	for _, name := range names {
		out = append(out, Compute(name, groups[name]))
	}
	return out
}

// topDomains returns the n most frequent domains, ties broken
// alphabetically so reports are stable.
func topDomains(counts map[string]int, n int) []DomainCount {
	out := make([]DomainCount, 0, len(counts))
	for domain, count := range counts {
		out = append(out, DomainCount{Domain: domain, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Domain < out[j].Domain
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
