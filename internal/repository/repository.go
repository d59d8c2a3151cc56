package repository

import (
	"context"

	"github.com/article-engagement-api/internal/database"
	"github.com/article-engagement-api/internal/models"
)

// ViewRepository defines the interface for article view counters
type ViewRepository interface {
	// Increment atomically adds one view, creating the counter on first use
	Increment(ctx context.Context, articleID string) (int64, error)
	// Get returns the counter, or 0 when the article was never viewed
	Get(ctx context.Context, articleID string) (int64, error)
}

// RatingRepository defines the interface for append-only rating entries
type RatingRepository interface {
	Create(ctx context.Context, rating *models.Rating) error
	ListByArticle(ctx context.Context, articleID string) ([]*models.Rating, error)
}

// CommentRepository defines the interface for append-only comment entries
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByArticle(ctx context.Context, articleID string) ([]*models.Comment, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	View    ViewRepository
	Rating  RatingRepository
	Comment CommentRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		View:    NewViewRepo(db),
		Rating:  NewRatingRepo(db),
		Comment: NewCommentRepo(db),
	}
}
