package dataset

import (
	"sort"

	"github.com/bits-and-blooms/bloom/v3"
)

// overlapFalsePositiveRate keeps the Bloom filter small while staying
// far below one miscount per thousand URLs.
const overlapFalsePositiveRate = 0.001

// EstimateOverlap approximates how many URLs in b also appear in a,
// using a Bloom filter over a's URLs. The count can overshoot by the
// filter's false positive rate but never undershoots.
func EstimateOverlap(a, b []Record) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	filter := bloom.NewWithEstimates(uint(len(a)), overlapFalsePositiveRate)
	for _, r := range a {
		filter.AddString(r.URL)
	}
	n := 0
	for _, r := range b {
		if filter.TestString(r.URL) {
			n++
		}
	}
	return n
}

// OverlapMatrix estimates pairwise URL overlap between record groups,
// keyed by source name. matrix[x][y] approximates |y ∩ x| counted over
// y's records.
func OverlapMatrix(groups map[string][]Record) map[string]map[string]int {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	matrix := make(map[string]map[string]int, len(names))
	for _, x := range names {
		matrix[x] = make(map[string]int, len(names))
		for _, y := range names {
			if x == y {
				matrix[x][y] = len(groups[x])
				continue
			}
			matrix[x][y] = EstimateOverlap(groups[x], groups[y])
		}
	}
	return matrix
}

// GroupBySource splits records by their Source column.
func GroupBySource(records []Record) map[string][]Record {
	groups := make(map[string][]Record)
	for _, r := range records {
		groups[r.Source] = append(groups[r.Source], r)
	}
	return groups
}
