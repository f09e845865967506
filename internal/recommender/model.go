package recommender

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
)

// Model is one trained artifact generation: the fitted vectorizer, the
// similarity matrix, the title index and the corpus rows aligned with it.
// A Model is immutable once built and safe for concurrent reads.
type Model struct {
	Manifest   domain.ArtifactManifest
	Vectorizer *Vectorizer
	Similarity *SimilarityMatrix
	Index      *TitleIndex
	Rows       []domain.CorpusRow

	// Records holds the retained documents of the run that built the model.
	// It is not persisted.
	Records []domain.TrainingRecord
}

// Train normalizes docs, drops those left without a single vocabulary term,
// and builds a complete model from the rest. Returns domain.ErrEmptyCorpus
// when nothing is retained.
func Train(docs []domain.CorpusDocument) (*Model, error) {
	records := retain(docs)
	corpus := make([]string, len(records))
	rows := make([]domain.CorpusRow, len(records))
	for i, rec := range records {
		corpus[i] = rec.Description
		rows[i] = domain.CorpusRow{ID: rec.ID, Title: rec.Title}
	}

	vec, features, err := FitTransform(corpus)
	if err != nil {
		return nil, err
	}

	titles := make([]string, len(rows))
	for i, row := range rows {
		titles[i] = row.Title
	}

	return &Model{
		Manifest: domain.ArtifactManifest{
			Fingerprint: Fingerprint(rows),
			Rows:        len(rows),
			Terms:       vec.Len(),
		},
		Vectorizer: vec,
		Similarity: Compute(features),
		Index:      BuildTitleIndex(titles),
		Rows:       rows,
		Records:    records,
	}, nil
}

// Stamp assigns the generation and training time to the model manifest.
func (m *Model) Stamp(generation string, trainedAt time.Time) {
	m.Manifest.Generation = generation
	m.Manifest.TrainedAt = trainedAt.UTC()
}

// Recommend queries the model for titles similar to title.
func (m *Model) Recommend(title string, opts Options) ([]domain.Recommendation, error) {
	return Recommend(title, m.Similarity, m.Rows, m.Index, opts)
}

// Row returns the corpus row reachable by title.
func (m *Model) Row(title string) (domain.CorpusRow, bool) {
	r, err := m.Index.Lookup(title)
	if err != nil || r >= len(m.Rows) {
		return domain.CorpusRow{}, false
	}
	return m.Rows[r], true
}

// CorpusFingerprint returns the fingerprint a model trained on docs would
// carry, without fitting anything.
func CorpusFingerprint(docs []domain.CorpusDocument) string {
	records := retain(docs)
	rows := make([]domain.CorpusRow, len(records))
	for i, rec := range records {
		rows[i] = domain.CorpusRow{ID: rec.ID, Title: rec.Title}
	}
	return Fingerprint(rows)
}

// retain keeps the documents whose normalized description has at least one
// vocabulary term, in feed order.
func retain(docs []domain.CorpusDocument) []domain.TrainingRecord {
	var records []domain.TrainingRecord
	for _, doc := range docs {
		text := NormalizeNullable(doc.Description)
		if text == "" || len(termCounts(text)) == 0 {
			continue
		}
		records = append(records, domain.TrainingRecord{ID: doc.ID, Title: doc.Title, Description: text})
	}
	return records
}

// Fingerprint hashes the ordered (id, title) pairs of a corpus together with
// its length.
func Fingerprint(rows []domain.CorpusRow) string {
	h := sha256.New()
	h.Write([]byte(strconv.Itoa(len(rows))))
	for _, row := range rows {
		h.Write([]byte{'\n'})
		h.Write([]byte(strconv.FormatInt(row.ID, 10)))
		h.Write([]byte{0})
		h.Write([]byte(row.Title))
	}
	return strconv.Itoa(len(rows)) + ":" + hex.EncodeToString(h.Sum(nil))
}

type vectorizerBlob struct {
	Generation string    `json:"generation"`
	Terms      []string  `json:"terms"`
	IDF        []float64 `json:"idf"`
}

type indexBlob struct {
	Generation string             `json:"generation"`
	Rows       []domain.CorpusRow `json:"rows"`
	Entries    []IndexEntry       `json:"entries"`
}

// similarityMagic prefixes the binary similarity matrix blob.
var similarityMagic = []byte("SIM1")

// Encode serializes the model into a complete artifact set. Every blob
// carries the manifest generation so a mixed set is detected on Decode.
func Encode(m *Model) (*domain.ArtifactSet, error) {
	if m.Manifest.Generation == "" {
		return nil, fmt.Errorf("encode model: missing generation")
	}
	gen := m.Manifest.Generation

	vec, err := json.Marshal(vectorizerBlob{Generation: gen, Terms: m.Vectorizer.Terms, IDF: m.Vectorizer.IDF})
	if err != nil {
		return nil, fmt.Errorf("encode vectorizer: %w", err)
	}
	idx, err := json.Marshal(indexBlob{Generation: gen, Rows: m.Rows, Entries: m.Index.Entries()})
	if err != nil {
		return nil, fmt.Errorf("encode title index: %w", err)
	}

	return &domain.ArtifactSet{
		Manifest: m.Manifest,
		Blobs: map[string][]byte{
			domain.ArtifactVectorizer: vec,
			domain.ArtifactSimilarity: encodeSimilarity(gen, m.Similarity),
			domain.ArtifactTitleIndex: idx,
		},
	}, nil
}

func encodeSimilarity(gen string, sim *SimilarityMatrix) []byte {
	var buf bytes.Buffer
	buf.Grow(len(similarityMagic) + 2 + len(gen) + 4 + 8*len(sim.Values))
	buf.Write(similarityMagic)
	_ = binary.Write(&buf, binary.LittleEndian, uint16(len(gen)))
	buf.WriteString(gen)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sim.N))
	b := make([]byte, 8)
	for _, v := range sim.Values {
		binary.LittleEndian.PutUint64(b, math.Float64bits(v))
		buf.Write(b)
	}
	return buf.Bytes()
}

func decodeSimilarity(data []byte) (string, *SimilarityMatrix, error) {
	if !bytes.HasPrefix(data, similarityMagic) {
		return "", nil, fmt.Errorf("similarity matrix: bad header")
	}
	data = data[len(similarityMagic):]
	if len(data) < 2 {
		return "", nil, fmt.Errorf("similarity matrix: truncated")
	}
	genLen := int(binary.LittleEndian.Uint16(data))
	data = data[2:]
	if len(data) < genLen+4 {
		return "", nil, fmt.Errorf("similarity matrix: truncated")
	}
	gen := string(data[:genLen])
	data = data[genLen:]
	n := int(binary.LittleEndian.Uint32(data))
	data = data[4:]
	if len(data) != 8*n*n {
		return "", nil, fmt.Errorf("similarity matrix: want %d values, have %d bytes", n*n, len(data))
	}
	sim := NewSimilarityMatrix(n)
	for i := range sim.Values {
		sim.Values[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[8*i:]))
	}
	return gen, sim, nil
}

// Decode rebuilds a model from an artifact set.
//
// Returns domain.ErrArtifactNotFound when the set is missing or incomplete
// and domain.ErrArtifactMismatch when its blobs belong to different
// generations or disagree on the corpus they describe.
func Decode(set *domain.ArtifactSet) (*Model, error) {
	if !set.Complete() {
		return nil, domain.ErrArtifactNotFound
	}
	gen := set.Manifest.Generation

	var vb vectorizerBlob
	if err := json.Unmarshal(set.Blobs[domain.ArtifactVectorizer], &vb); err != nil {
		return nil, fmt.Errorf("decode vectorizer: %v: %w", err, domain.ErrArtifactMismatch)
	}
	var ib indexBlob
	if err := json.Unmarshal(set.Blobs[domain.ArtifactTitleIndex], &ib); err != nil {
		return nil, fmt.Errorf("decode title index: %v: %w", err, domain.ErrArtifactMismatch)
	}
	simGen, sim, err := decodeSimilarity(set.Blobs[domain.ArtifactSimilarity])
	if err != nil {
		return nil, fmt.Errorf("decode %v: %w", err, domain.ErrArtifactMismatch)
	}

	for name, g := range map[string]string{
		domain.ArtifactVectorizer: vb.Generation,
		domain.ArtifactSimilarity: simGen,
		domain.ArtifactTitleIndex: ib.Generation,
	} {
		if g != gen {
			return nil, fmt.Errorf("%s has generation %q, manifest %q: %w", name, g, gen, domain.ErrArtifactMismatch)
		}
	}
	if len(vb.Terms) != len(vb.IDF) {
		return nil, fmt.Errorf("vectorizer has %d terms and %d weights: %w", len(vb.Terms), len(vb.IDF), domain.ErrArtifactMismatch)
	}
	if len(ib.Rows) != sim.N || set.Manifest.Rows != sim.N {
		return nil, fmt.Errorf("%d index rows, manifest %d, matrix %d: %w", len(ib.Rows), set.Manifest.Rows, sim.N, domain.ErrArtifactMismatch)
	}
	if fp := Fingerprint(ib.Rows); fp != set.Manifest.Fingerprint {
		return nil, fmt.Errorf("corpus fingerprint %s, manifest %s: %w", fp, set.Manifest.Fingerprint, domain.ErrArtifactMismatch)
	}
	for _, e := range ib.Entries {
		if e.Row < 0 || e.Row >= sim.N {
			return nil, fmt.Errorf("title %q points at row %d: %w", e.Title, e.Row, domain.ErrArtifactMismatch)
		}
	}

	vec := &Vectorizer{Terms: vb.Terms, IDF: vb.IDF}
	vec.index()
	return &Model{
		Manifest:   set.Manifest,
		Vectorizer: vec,
		Similarity: sim,
		Index:      indexFromEntries(ib.Entries),
		Rows:       ib.Rows,
	}, nil
}
