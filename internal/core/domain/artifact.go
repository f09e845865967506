package domain

import "time"

// Artifact names. A trained model is always persisted as all three.
const (
	ArtifactVectorizer = "tfidf_vectorizer"
	ArtifactSimilarity = "cosine_sim_matrix"
	ArtifactTitleIndex = "idx_series"
)

// ArtifactNames lists every artifact that makes up a complete set
var ArtifactNames = []string{ArtifactVectorizer, ArtifactSimilarity, ArtifactTitleIndex}

// ArtifactManifest describes the artifact set currently in use
type ArtifactManifest struct {
	Generation  string    `json:"generation"`
	Fingerprint string    `json:"fingerprint"`
	Rows        int       `json:"rows"`
	Terms       int       `json:"terms"`
	TrainedAt   time.Time `json:"trained_at"`
}

// ArtifactSet is a manifest plus the encoded blobs it describes
type ArtifactSet struct {
	Manifest ArtifactManifest
	Blobs    map[string][]byte
}

// Complete reports whether every named artifact is present
func (s *ArtifactSet) Complete() bool {
	if s == nil || s.Manifest.Generation == "" {
		return false
	}
	for _, name := range ArtifactNames {
		if _, ok := s.Blobs[name]; !ok {
			return false
		}
	}
	return true
}
