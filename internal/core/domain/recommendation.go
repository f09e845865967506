package domain

import "time"

// CorpusDocument is one row of the training feed
type CorpusDocument struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// CorpusRow identifies the book occupying one row of the similarity matrix
type CorpusRow struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Recommendation is a single ranked result of a prediction
type Recommendation struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	SimilarityScore float64 `json:"similarity_score"`
}

// TrainingRecord echoes a retained document and its normalized text
type TrainingRecord struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TrainingResult is returned by a training run
type TrainingResult struct {
	Message      string           `json:"msg"`
	TotalRecords int              `json:"total_records"`
	Generation   string           `json:"generation,omitempty"`
	TrainingData []TrainingRecord `json:"training_data,omitempty"`
}

// Trained reports whether the run produced a new artifact set
func (r *TrainingResult) Trained() bool {
	return r.Generation != ""
}

// PredictRequest asks for books similar to Title
type PredictRequest struct {
	Title string `json:"title"`
}

// Preference is one recorded recommendation outcome
type Preference struct {
	ID                   int64     `json:"id"`
	UserID               string    `json:"user_id"`
	InputBookTitle       string    `json:"inputed_book_title"`
	InputBookID          *int64    `json:"inputed_book_id,omitempty"`
	RecommendedBookID    int64     `json:"recommended_book_id"`
	RecommendedBookTitle string    `json:"recommended_book_title"`
	SimilarityScore      float64   `json:"similarity_score"`
	CreatedAt            time.Time `json:"created_at"`
}

// PreferenceView is a history entry joined with the recommended book
type PreferenceView struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Price           float64 `json:"price"`
	Rating          string  `json:"rating"`
	ImageURL        string  `json:"image_url"`
	SimilarityScore float64 `json:"similarity_score"`
}
