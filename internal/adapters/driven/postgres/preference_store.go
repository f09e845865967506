package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
	"github.com/shelfwise/shelfwise-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PreferenceStore = (*PreferenceStore)(nil)

// PreferenceStore implements driven.PreferenceStore using PostgreSQL
type PreferenceStore struct {
	db *DB
}

// NewPreferenceStore creates a new PreferenceStore
func NewPreferenceStore(db *DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

// SaveBatch inserts prefs in one transaction and fills in their IDs
func (s *PreferenceStore) SaveBatch(ctx context.Context, prefs []*domain.Preference) error {
	if len(prefs) == 0 {
		return nil
	}
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO user_preferences
				(user_id, inputed_book_title, inputed_book_id, recommended_book_id,
				 recommended_book_title, similarity_score, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`)
		if err != nil {
			return fmt.Errorf("prepare preference insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range prefs {
			err := stmt.QueryRowContext(ctx,
				p.UserID, p.InputBookTitle, NullInt64(p.InputBookID), p.RecommendedBookID,
				p.RecommendedBookTitle, p.SimilarityScore, p.CreatedAt,
			).Scan(&p.ID)
			if err != nil {
				return fmt.Errorf("insert preference: %w", err)
			}
		}
		return nil
	})
}

// ListByUser returns a user's history joined with the recommended books,
// highest similarity first. Recommendations whose book left the catalog
// are omitted.
func (s *PreferenceStore) ListByUser(ctx context.Context, userID string) ([]*domain.PreferenceView, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.title, b.price, b.rating, b.image_url, up.similarity_score
		FROM user_preferences up
		JOIN books b ON b.id = up.recommended_book_id
		WHERE up.user_id = $1
		ORDER BY up.similarity_score DESC, up.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := []*domain.PreferenceView{}
	for rows.Next() {
		var v domain.PreferenceView
		if err := rows.Scan(&v.ID, &v.Title, &v.Price, &v.Rating, &v.ImageURL, &v.SimilarityScore); err != nil {
			return nil, err
		}
		views = append(views, &v)
	}
	return views, rows.Err()
}
