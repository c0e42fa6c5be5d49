package urltoken

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	_ "embed"
)

// MinSplitLen is the length at or below which strings are kept whole
// instead of being segmented into dictionary words.
const MinSplitLen = 4

//go:embed words.txt
var embeddedWords string

var (
	defaultSplitterOnce sync.Once
	defaultSplitter     *Splitter
)

// Splitter segments concatenated strings ("geocities") into dictionary
// words ("geo", "cities") using a Zipf-cost dynamic program over a
// frequency-ranked word list. Earlier entries are assumed more frequent
// and therefore cheaper.
type Splitter struct {
	cost    map[string]float64
	maxWord int
}

// NewSplitter builds a Splitter from a word list ordered by descending
// frequency. Duplicate entries keep their first (cheapest) rank.
func NewSplitter(words []string) *Splitter {
	s := &Splitter{cost: make(map[string]float64, len(words))}
	logN := math.Log(float64(len(words)))
	rank := 0
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		rank++
		if _, seen := s.cost[w]; seen {
			continue
		}
		s.cost[w] = math.Log(float64(rank) * logN)
		if len(w) > s.maxWord {
			s.maxWord = len(w)
		}
	}
	return s
}

// LoadSplitterFile reads a frequency dictionary with one entry per line,
// either "word" or "word count", ordered by descending frequency. The
// count column is ignored; only the order matters.
func LoadSplitterFile(path string) (*Splitter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list: %w", err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		words = append(words, fields[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list %s is empty", path)
	}
	return NewSplitter(words), nil
}

// DefaultSplitter returns the Splitter built from the embedded word list.
func DefaultSplitter() *Splitter {
	defaultSplitterOnce.Do(func() {
		defaultSplitter = NewSplitter(strings.Fields(embeddedWords))
	})
	return defaultSplitter
}

// Split tokenizes text into words. Strings of MinSplitLen characters or
// fewer are returned as-is; longer strings are segmented chunk by chunk,
// where chunks are maximal runs of letters, digits and apostrophes.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	if len(text) <= MinSplitLen {
		return []string{text}
	}
	var out []string
	for _, chunk := range splitChunks(text) {
		out = append(out, s.segment(chunk)...)
	}
	return out
}

// segment runs the dynamic program over a single alphanumeric chunk.
// Substrings absent from the dictionary carry infinite cost, which
// degrades them to single characters; runs of digits are reassembled
// into one token, and "'s" attaches to the preceding token.
func (s *Splitter) segment(chunk string) []string {
	n := len(chunk)
	if n == 0 {
		return nil
	}
	lower := strings.ToLower(chunk)

	cost := make([]float64, n+1)
	split := make([]int, n+1)
	for i := 1; i <= n; i++ {
		bestCost := math.Inf(1)
		bestK := 1
		maxK := i
		if s.maxWord > 0 && s.maxWord < maxK {
			maxK = s.maxWord
		}
		for k := 1; k <= maxK; k++ {
			c := cost[i-k]
			if wc, ok := s.cost[lower[i-k:i]]; ok {
				c += wc
			} else {
				c = math.Inf(1)
			}
			if c < bestCost {
				bestCost, bestK = c, k
			}
		}
		cost[i] = bestCost
		split[i] = bestK
	}

	var out []string
	for i := n; i > 0; {
		k := split[i]
		piece := chunk[i-k : i]
		merged := false
		if piece != "'" && len(out) > 0 {
			last := out[len(out)-1]
			if last == "'s" || (isDigit(chunk[i-1]) && isDigit(last[0])) {
				out[len(out)-1] = piece + last
				merged = true
			}
		}
		if !merged {
			out = append(out, piece)
		}
		i -= k
	}
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}

// splitChunks splits text into maximal runs of [a-zA-Z0-9'].
func splitChunks(text string) []string {
	var chunks []string
	start := -1
	for i := 0; i < len(text); i++ {
		if isChunkByte(text[i]) {
			if start < 0 {
				start = i
			}
		} else if start >= 0 {
			chunks = append(chunks, text[start:i])
			start = -1
		}
	}
	if start >= 0 {
		chunks = append(chunks, text[start:])
	}
	return chunks
}

func isChunkByte(c byte) bool {
	return c == '\'' || isDigit(c) ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
