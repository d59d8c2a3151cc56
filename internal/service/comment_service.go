package service

import (
	"context"
	"fmt"

	"github.com/article-engagement-api/internal/models"
	"github.com/article-engagement-api/internal/realtime"
	"github.com/article-engagement-api/internal/repository"
	"github.com/rs/zerolog"
)

// commentService is the concrete implementation of CommentService
type commentService struct {
	baseService
	repo repository.CommentRepository
	log  zerolog.Logger
}

func newCommentService(repo repository.CommentRepository, base baseService, log zerolog.Logger) *commentService {
	return &commentService{
		baseService: base,
		repo:        repo,
		log:         log.With().Str("service", "comments").Logger(),
	}
}

// Submit trims, validates and appends a comment
func (s *commentService) Submit(ctx context.Context, articleID string, in models.CommentInput) (*models.Comment, error) {
	if err := s.validator.ValidateArticleID(articleID); err != nil {
		return nil, err
	}

	in = in.Trimmed()
	if err := s.validator.ValidateComment(in); err != nil {
		return nil, err
	}

	now := s.now()
	comment := &models.Comment{
		ID:        models.NewEntryID(now),
		ArticleID: articleID,
		Name:      in.Name,
		Body:      in.Body,
		Timestamp: models.NowMillis(now),
	}

	ctx, cancel := s.writeContext(ctx)
	defer cancel()

	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	s.hub.Publish(models.CommentsPath(articleID))

	s.log.Info().
		Str("article_id", articleID).
		Str("comment_id", comment.ID).
		Int("body_len", len(comment.Body)).
		Msg("Comment submitted")
	return comment, nil
}

// List returns an article's comments, newest first
func (s *commentService) List(ctx context.Context, articleID string) ([]*models.Comment, error) {
	comments, err := s.repo.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	models.SortNewestFirst(comments)
	return comments, nil
}

// Watch subscribes to the comment list of an article
func (s *commentService) Watch(ctx context.Context, articleID string) *realtime.Subscription[[]*models.Comment] {
	return realtime.Watch(ctx, s.hub, models.CommentsPath(articleID), func(ctx context.Context) ([]*models.Comment, error) {
		return s.List(ctx, articleID)
	}, s.log)
}
