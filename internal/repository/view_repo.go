package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/article-engagement-api/internal/database"
)

// viewRepo is the concrete implementation of ViewRepository
type viewRepo struct {
	db *database.DB
}

// NewViewRepo creates a new view counter repository
func NewViewRepo(db *database.DB) ViewRepository {
	return &viewRepo{db: db}
}

// Increment upserts the counter so concurrent first views never lose a count
func (r *viewRepo) Increment(ctx context.Context, articleID string) (int64, error) {
	query := `
		INSERT INTO article_views (article_id, views, updated_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (article_id)
		DO UPDATE SET views = article_views.views + 1, updated_at = NOW()
		RETURNING views
	`
	var views int64
	err := r.db.QueryRowContext(ctx, query, articleID).Scan(&views)
	return views, err
}

// Get retrieves the view counter of an article
func (r *viewRepo) Get(ctx context.Context, articleID string) (int64, error) {
	var views int64
	err := r.db.QueryRowContext(ctx, "SELECT views FROM article_views WHERE article_id = $1", articleID).Scan(&views)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return views, err
}
