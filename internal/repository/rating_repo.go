package repository

import (
	"context"

	"github.com/article-engagement-api/internal/database"
	"github.com/article-engagement-api/internal/models"
)

// ratingRepo is the concrete implementation of RatingRepository
type ratingRepo struct {
	db *database.DB
}

// NewRatingRepo creates a new rating repository
func NewRatingRepo(db *database.DB) RatingRepository {
	return &ratingRepo{db: db}
}

// Create appends a rating entry
func (r *ratingRepo) Create(ctx context.Context, rating *models.Rating) error {
	query := `
		INSERT INTO article_ratings (id, article_id, value, timestamp_ms)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query,
		rating.ID, rating.ArticleID, []byte(rating.Value), rating.Timestamp,
	)
	return err
}

// ListByArticle returns every rating entry of an article in entry order
func (r *ratingRepo) ListByArticle(ctx context.Context, articleID string) ([]*models.Rating, error) {
	query := `
		SELECT id, article_id, value, timestamp_ms
		FROM article_ratings WHERE article_id = $1 ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []*models.Rating
	for rows.Next() {
		var rating models.Rating
		var value []byte
		if err := rows.Scan(&rating.ID, &rating.ArticleID, &value, &rating.Timestamp); err != nil {
			return nil, err
		}
		rating.Value = value
		ratings = append(ratings, &rating)
	}
	return ratings, rows.Err()
}
