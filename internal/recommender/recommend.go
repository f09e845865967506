package recommender

import (
	"fmt"
	"sort"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
)

// DefaultTopN is the number of recommendations returned when none is requested.
const DefaultTopN = 10

// Options tune a recommendation query.
type Options struct {
	// TopN caps the number of results. Zero or negative means DefaultTopN.
	TopN int

	// ExcludeSelfByIndex drops the entry whose column equals the query row
	// instead of dropping the top ranked entry. The positional drop can
	// discard an exact duplicate ranked ahead of the query row.
	ExcludeSelfByIndex bool
}

func (o Options) topN() int {
	if o.TopN <= 0 {
		return DefaultTopN
	}
	return o.TopN
}

type scored struct {
	col   int
	score float64
}

// Recommend returns the books most similar to title.
//
// The query row is ranked by descending score with a stable sort, so equal
// scores keep corpus order. rows must be aligned with the matrix; a length
// mismatch yields domain.ErrArtifactMismatch.
func Recommend(title string, sim *SimilarityMatrix, rows []domain.CorpusRow, index *TitleIndex, opts Options) ([]domain.Recommendation, error) {
	if sim == nil || index == nil {
		return nil, domain.ErrArtifactNotFound
	}
	if len(rows) != sim.N || len(sim.Values) != sim.N*sim.N {
		return nil, fmt.Errorf("%d rows for a %dx%d matrix: %w", len(rows), sim.N, sim.N, domain.ErrArtifactMismatch)
	}

	r, err := index.Lookup(title)
	if err != nil {
		return nil, err
	}
	if r < 0 || r >= sim.N {
		return nil, fmt.Errorf("row %d outside %d rows: %w", r, sim.N, domain.ErrArtifactMismatch)
	}

	pairs := make([]scored, 0, sim.N)
	for col, score := range sim.Row(r) {
		if opts.ExcludeSelfByIndex && col == r {
			continue
		}
		pairs = append(pairs, scored{col: col, score: score})
	}
	sort.SliceStable(pairs, func(a, b int) bool { return pairs[a].score > pairs[b].score })

	if !opts.ExcludeSelfByIndex && len(pairs) > 0 {
		pairs = pairs[1:]
	}
	if n := opts.topN(); len(pairs) > n {
		pairs = pairs[:n]
	}

	recs := make([]domain.Recommendation, len(pairs))
	for i, p := range pairs {
		recs[i] = domain.Recommendation{
			ID:              rows[p.col].ID,
			Title:           rows[p.col].Title,
			SimilarityScore: p.score,
		}
	}
	return recs, nil
}
