package recommender

// SimilarityMatrix is a dense, square, symmetric matrix of pairwise cosine
// similarities stored in row-major order.
type SimilarityMatrix struct {
	N      int
	Values []float64
}

// NewSimilarityMatrix allocates an n x n zero matrix.
func NewSimilarityMatrix(n int) *SimilarityMatrix {
	return &SimilarityMatrix{N: n, Values: make([]float64, n*n)}
}

// At returns the similarity between rows i and j.
func (s *SimilarityMatrix) At(i, j int) float64 {
	return s.Values[i*s.N+j]
}

// Row returns row i. The slice aliases the matrix and must not be modified.
func (s *SimilarityMatrix) Row(i int) []float64 {
	return s.Values[i*s.N : (i+1)*s.N]
}

func (s *SimilarityMatrix) set(i, j int, v float64) {
	s.Values[i*s.N+j] = v
	s.Values[j*s.N+i] = v
}

// Compute returns the linear kernel of m with itself. Rows of m are unit
// length, so every entry is a cosine similarity in [0, 1]. Only the upper
// triangle is computed; it is mirrored so the result is exactly symmetric.
func Compute(m *FeatureMatrix) *SimilarityMatrix {
	n := m.Len()
	sim := NewSimilarityMatrix(n)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sim.set(i, j, dot(m.Rows[i], m.Rows[j]))
		}
	}
	return sim
}

// dot multiplies two sparse rows sorted by term index.
func dot(a, b []Entry) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Term == b[j].Term:
			sum += a[i].Weight * b[j].Weight
			i++
			j++
		case a[i].Term < b[j].Term:
			i++
		default:
			j++
		}
	}
	return sum
}
