// Package matrix provides square float64 matrices for the multiplication
// benchmark: random generation and the naive triple-loop product. The
// multiplication kernel is the quantity under measurement and is kept
// byte-for-byte comparable with the sibling language variants: same loop
// order, same operation count, single scalar accumulator.
package matrix

import (
	"fmt"
	mrand "math/rand"
)

// Matrix is a square n×n matrix backed by one contiguous buffer of n²
// elements in row-major order. Element (i,j) lives at Data[i*N+j].
type Matrix struct {
	N    int
	Data []float64
}

// New allocates a zeroed n×n matrix.
func New(n int) (*Matrix, error) {
	if n <= 0 {
		return nil, fmt.Errorf("matrix size must be positive, got %d", n)
	}

	return &Matrix{
		N:    n,
		Data: make([]float64, n*n),
	}, nil
}

// At returns element (i,j).
func (m *Matrix) At(i, j int) float64 {
	return m.Data[i*m.N+j]
}

// Factory produces random matrices from a seeded source.
type Factory struct {
	rng *mrand.Rand
}

// NewFactory creates a Factory. Seed 0 is a valid fixed seed; callers that
// want non-reproducible matrices pass a wall-clock seed.
func NewFactory(seed int64) *Factory {
	return &Factory{
		rng: mrand.New(mrand.NewSource(seed)),
	}
}

// Random builds an n×n matrix with each cell drawn independently from a
// uniform distribution over [0,1).
func (f *Factory) Random(n int) (*Matrix, error) {
	m, err := New(n)
	if err != nil {
		return nil, fmt.Errorf("allocate %dx%d matrix: %w", n, n, err)
	}

	for i := range m.Data {
		m.Data[i] = f.rng.Float64()
	}

	return m, nil
}

// Multiply computes C = A·B with the canonical O(n³) triple loop, loop
// order i→j→k, accumulating each cell left to right in a single float64.
// Neither input is mutated. The result is bit-reproducible for fixed
// inputs; the algorithm must stay identical across language variants so
// cross-language timings compare like for like.
func Multiply(a, b *Matrix) (*Matrix, error) {
	if a.N != b.N {
		return nil, fmt.Errorf("dimension mismatch: %dx%d vs %dx%d",
			a.N, a.N, b.N, b.N)
	}

	n := a.N

	c, err := New(n)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		ai := a.Data[i*n : i*n+n]
		ci := c.Data[i*n : i*n+n]

		for j := 0; j < n; j++ {
			sum := 0.0
			for k := 0; k < n; k++ {
				sum += ai[k] * b.Data[k*n+j]
			}
			ci[j] = sum
		}
	}

	return c, nil
}
