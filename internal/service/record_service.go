package service

import (
	"context"

	"github.com/article-engagement-api/internal/models"
	"github.com/article-engagement-api/internal/repository"
)

// recordService assembles the store-shaped record of one article
type recordService struct {
	views    ViewService
	ratings  repository.RatingRepository
	comments CommentService
}

func newRecordService(views ViewService, comments CommentService, ratings repository.RatingRepository) *recordService {
	return &recordService{views: views, ratings: ratings, comments: comments}
}

// Get returns views, ratings and comments keyed by entry id
func (s *recordService) Get(ctx context.Context, articleID string) (*models.EngagementRecord, error) {
	views, err := s.views.Get(ctx, articleID)
	if err != nil {
		return nil, err
	}

	ratings, err := s.ratings.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.List(ctx, articleID)
	if err != nil {
		return nil, err
	}

	record := &models.EngagementRecord{
		ArticleID: articleID,
		Views:     views,
		Ratings:   make(map[string]*models.Rating, len(ratings)),
		Comments:  make(map[string]*models.Comment, len(comments)),
	}
	for _, r := range ratings {
		record.Ratings[r.ID] = r
	}
	for _, c := range comments {
		record.Comments[c.ID] = c
	}
	return record, nil
}
