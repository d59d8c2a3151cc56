package service

import (
	"context"
	"time"

	"github.com/article-engagement-api/internal/config"
	"github.com/article-engagement-api/internal/models"
	"github.com/article-engagement-api/internal/realtime"
	"github.com/article-engagement-api/internal/repository"
	"github.com/article-engagement-api/internal/validation"
	"github.com/rs/zerolog"
)

// ViewService defines the interface for view counting
type ViewService interface {
	// Track counts one view in the background; failures are swallowed
	Track(articleID string)
	Increment(ctx context.Context, articleID string) (int64, error)
	Get(ctx context.Context, articleID string) (int64, error)
	Watch(ctx context.Context, articleID string) *realtime.Subscription[int64]
	// Stop waits for in-flight increments and rejects new ones
	Stop()
}

// RatingService defines the interface for star ratings
type RatingService interface {
	Submit(ctx context.Context, articleID string, value int) (*models.Rating, error)
	Summary(ctx context.Context, articleID string) (models.RatingSummary, error)
	Watch(ctx context.Context, articleID string) *realtime.Subscription[models.RatingSummary]
}

// CommentService defines the interface for comments
type CommentService interface {
	Submit(ctx context.Context, articleID string, in models.CommentInput) (*models.Comment, error)
	// List returns comments newest first
	List(ctx context.Context, articleID string) ([]*models.Comment, error)
	Watch(ctx context.Context, articleID string) *realtime.Subscription[[]*models.Comment]
}

// RecordService exposes the raw engagement record of an article
type RecordService interface {
	Get(ctx context.Context, articleID string) (*models.EngagementRecord, error)
}

// Services holds all service interfaces
type Services struct {
	Views    ViewService
	Ratings  RatingService
	Comments CommentService
	Records  RecordService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, hub *realtime.Hub, cfg *config.Config, log zerolog.Logger) *Services {
	base := baseService{
		hub:          hub,
		validator:    validation.NewValidator(),
		writeTimeout: cfg.Engagement.WriteTimeout,
		now:          time.Now,
	}

	viewSvc := newViewService(repos.View, base, cfg.Engagement.ViewWorkers, log)
	ratingSvc := newRatingService(repos.Rating, base, log)
	commentSvc := newCommentService(repos.Comment, base, log)

	return &Services{
		Views:    viewSvc,
		Ratings:  ratingSvc,
		Comments: commentSvc,
		Records:  newRecordService(viewSvc, commentSvc, repos.Rating),
	}
}

// baseService carries what every engagement service shares
type baseService struct {
	hub          *realtime.Hub
	validator    *validation.Validator
	writeTimeout time.Duration
	now          func() time.Time
}

// writeContext bounds a store write so a stalled transport cannot hold a
// control disabled forever
func (b baseService) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.writeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.writeTimeout)
}
