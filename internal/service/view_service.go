package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/article-engagement-api/internal/models"
	"github.com/article-engagement-api/internal/realtime"
	"github.com/article-engagement-api/internal/repository"
	"github.com/rs/zerolog"
)

// viewService is the concrete implementation of ViewService
type viewService struct {
	baseService
	repo repository.ViewRepository
	log  zerolog.Logger

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
	// Semaphore bounding in-flight background increments
	sem chan struct{}
}

func newViewService(repo repository.ViewRepository, base baseService, workers int, log zerolog.Logger) *viewService {
	if workers < 1 {
		workers = 1
	}
	return &viewService{
		baseService: base,
		repo:        repo,
		log:         log.With().Str("service", "views").Logger(),
		sem:         make(chan struct{}, workers),
	}
}

// Track counts a page view without blocking the caller. When every worker is
// busy the view is dropped rather than queued.
func (s *viewService) Track(articleID string) {
	if err := s.validator.ValidateArticleID(articleID); err != nil {
		s.log.Debug().Err(err).Msg("View not tracked")
		return
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	select {
	case s.sem <- struct{}{}:
	default:
		s.mu.Unlock()
		s.log.Debug().Str("article_id", articleID).Msg("View dropped, worker pool saturated")
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer func() { <-s.sem }()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error().Interface("panic", r).Str("article_id", articleID).Msg("View increment panicked - recovered")
			}
		}()

		if _, err := s.Increment(context.Background(), articleID); err != nil {
			s.log.Debug().Err(err).Str("article_id", articleID).Msg("View increment failed")
		}
	}()
}

// Increment counts one view and announces the new value
func (s *viewService) Increment(ctx context.Context, articleID string) (int64, error) {
	if err := s.validator.ValidateArticleID(articleID); err != nil {
		return 0, err
	}

	ctx, cancel := s.writeContext(ctx)
	defer cancel()

	views, err := s.repo.Increment(ctx, articleID)
	if err != nil {
		return 0, fmt.Errorf("increment views: %w", err)
	}
	s.hub.Publish(models.ViewsPath(articleID))
	return views, nil
}

// Get returns the current view counter
func (s *viewService) Get(ctx context.Context, articleID string) (int64, error) {
	if err := s.validator.ValidateArticleID(articleID); err != nil {
		return 0, err
	}
	return s.repo.Get(ctx, articleID)
}

// Watch subscribes to the view counter of an article
func (s *viewService) Watch(ctx context.Context, articleID string) *realtime.Subscription[int64] {
	return realtime.Watch(ctx, s.hub, models.ViewsPath(articleID), func(ctx context.Context) (int64, error) {
		return s.repo.Get(ctx, articleID)
	}, s.log)
}

// Stop rejects new views and waits for in-flight ones
func (s *viewService) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info().Msg("View tracker stopped")
}
