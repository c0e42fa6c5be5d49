package embedding

import (
	"github.com/zeebo/xxh3"
	"gonum.org/v1/gonum/floats"
)

// HashedTable derives a deterministic unit vector for any word by
// hashing it once per dimension. It needs no embedding file, which
// makes it a cheap stand-in when none of the trained tables fit on
// disk, at the cost of carrying no semantic similarity at all.
type HashedTable struct {
	dim  int
	seed uint64
}

// NewHashedTable returns a hash backed table producing vectors of the
// given dimension. The same word, dimension and seed always yield the
// same vector.
func NewHashedTable(dim int, seed uint64) *HashedTable {
	return &HashedTable{dim: dim, seed: seed}
}

// Dim returns the vector dimension.
func (h *HashedTable) Dim() int { return h.dim }

// Lookup returns the hashed vector for word. It never misses.
func (h *HashedTable) Lookup(word string) ([]float64, bool) {
	vec := make([]float64, h.dim)
	for i := range vec {
		bits := xxh3.HashStringSeed(word, h.seed+uint64(i))
		// Top 53 bits give a uniform float in [0, 1).
		vec[i] = float64(bits>>11)/float64(1<<53)*2 - 1
	}
	if norm := floats.Norm(vec, 2); norm > 0 {
		floats.Scale(1/norm, vec)
	}
	return vec, true
}

// Average returns the zero vector. Hashed components are symmetric
// around zero, so the zero vector is the population mean.
func (h *HashedTable) Average() []float64 {
	return make([]float64, h.dim)
}
