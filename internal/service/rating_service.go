package service

import (
	"context"
	"fmt"

	"github.com/article-engagement-api/internal/models"
	"github.com/article-engagement-api/internal/realtime"
	"github.com/article-engagement-api/internal/repository"
	"github.com/rs/zerolog"
)

// ratingService is the concrete implementation of RatingService
type ratingService struct {
	baseService
	repo repository.RatingRepository
	log  zerolog.Logger
}

func newRatingService(repo repository.RatingRepository, base baseService, log zerolog.Logger) *ratingService {
	return &ratingService{
		baseService: base,
		repo:        repo,
		log:         log.With().Str("service", "ratings").Logger(),
	}
}

// Submit appends one rating entry. Nothing here prevents the same visitor
// from voting twice; that check lives with the caller's vote marker.
func (s *ratingService) Submit(ctx context.Context, articleID string, value int) (*models.Rating, error) {
	if err := s.validator.ValidateArticleID(articleID); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateRating(value); err != nil {
		return nil, err
	}

	now := s.now()
	rating := models.NewRating(articleID, value, models.NowMillis(now))
	rating.ID = models.NewEntryID(now)

	ctx, cancel := s.writeContext(ctx)
	defer cancel()

	if err := s.repo.Create(ctx, rating); err != nil {
		return nil, fmt.Errorf("create rating: %w", err)
	}
	s.hub.Publish(models.RatingsPath(articleID))

	s.log.Info().
		Str("article_id", articleID).
		Str("rating_id", rating.ID).
		Int("value", value).
		Msg("Rating submitted")
	return rating, nil
}

// Summary computes the current average and count
func (s *ratingService) Summary(ctx context.Context, articleID string) (models.RatingSummary, error) {
	ratings, err := s.repo.ListByArticle(ctx, articleID)
	if err != nil {
		return models.RatingSummary{}, err
	}
	return models.Summarize(ratings), nil
}

// Watch subscribes to the rating summary of an article
func (s *ratingService) Watch(ctx context.Context, articleID string) *realtime.Subscription[models.RatingSummary] {
	return realtime.Watch(ctx, s.hub, models.RatingsPath(articleID), func(ctx context.Context) (models.RatingSummary, error) {
		return s.Summary(ctx, articleID)
	}, s.log)
}
