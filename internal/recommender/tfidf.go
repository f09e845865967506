package recommender

import (
	"math"
	"regexp"
	"sort"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
)

// tokenPattern selects tokens of two or more word characters.
var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

// Entry is one non-zero weight in a sparse feature row.
type Entry struct {
	Term   int
	Weight float64
}

// FeatureMatrix is a sparse N x V TF-IDF matrix. Each row is sorted by term
// index and has unit L2 norm unless it is empty.
type FeatureMatrix struct {
	Rows  [][]Entry
	Terms int
}

// Len returns the number of documents (rows).
func (m *FeatureMatrix) Len() int {
	return len(m.Rows)
}

// Vectorizer is a fitted TF-IDF model: a lexicographically ordered
// vocabulary and the smoothed inverse document frequency of every term.
type Vectorizer struct {
	Terms []string  `json:"terms"`
	IDF   []float64 `json:"idf"`

	vocabulary map[string]int
}

// FitTransform learns the vocabulary and IDF weights of corpus and returns
// the fitted vectorizer with the corpus feature matrix.
//
// Weights follow the smoothed scheme idf = ln((1+n)/(1+df)) + 1 applied to
// raw term counts, and every row is L2-normalized so that a dot product of
// two rows is their cosine similarity. Returns domain.ErrEmptyCorpus when
// corpus is empty or no document yields a single term.
func FitTransform(corpus []string) (*Vectorizer, *FeatureMatrix, error) {
	if len(corpus) == 0 {
		return nil, nil, domain.ErrEmptyCorpus
	}

	counts := make([]map[string]int, len(corpus))
	df := make(map[string]int)
	for i, doc := range corpus {
		tc := termCounts(doc)
		counts[i] = tc
		for term := range tc {
			df[term]++
		}
	}
	if len(df) == 0 {
		return nil, nil, domain.ErrEmptyCorpus
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(corpus))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	v := &Vectorizer{Terms: terms, IDF: idf}
	v.index()

	m := &FeatureMatrix{Rows: make([][]Entry, len(corpus)), Terms: len(terms)}
	for i, tc := range counts {
		m.Rows[i] = v.weigh(tc)
	}
	return v, m, nil
}

// Transform projects a normalized document onto the fitted vocabulary.
// Unknown terms are ignored.
func (v *Vectorizer) Transform(doc string) []Entry {
	if v.vocabulary == nil {
		v.index()
	}
	return v.weigh(termCounts(doc))
}

// Len returns the vocabulary size.
func (v *Vectorizer) Len() int {
	return len(v.Terms)
}

func (v *Vectorizer) index() {
	v.vocabulary = make(map[string]int, len(v.Terms))
	for i, term := range v.Terms {
		v.vocabulary[term] = i
	}
}

func (v *Vectorizer) weigh(tc map[string]int) []Entry {
	row := make([]Entry, 0, len(tc))
	for term, count := range tc {
		idx, ok := v.vocabulary[term]
		if !ok {
			continue
		}
		row = append(row, Entry{Term: idx, Weight: float64(count) * v.IDF[idx]})
	}
	sort.Slice(row, func(a, b int) bool { return row[a].Term < row[b].Term })

	var sum float64
	for _, e := range row {
		sum += e.Weight * e.Weight
	}
	if sum == 0 {
		return row
	}
	norm := math.Sqrt(sum)
	for i := range row {
		row[i].Weight /= norm
	}
	return row
}

// termCounts tokenizes doc and counts every token that is not an English
// stop word.
func termCounts(doc string) map[string]int {
	counts := make(map[string]int)
	for _, tok := range tokenPattern.FindAllString(doc, -1) {
		if _, stop := sklearnEnglish[tok]; stop {
			continue
		}
		counts[tok]++
	}
	return counts
}
