package mocks

import (
	"context"
	"sync"

	"github.com/article-engagement-api/internal/models"
	"github.com/article-engagement-api/internal/repository"
)

// Verify interface compliance
var (
	_ repository.ViewRepository    = (*MockViewRepository)(nil)
	_ repository.RatingRepository  = (*MockRatingRepository)(nil)
	_ repository.CommentRepository = (*MockCommentRepository)(nil)
)

// MockViewRepository is an in-memory ViewRepository
type MockViewRepository struct {
	mu             sync.Mutex
	Views          map[string]int64
	IncrementError error
	GetError       error
	IncrementCalls int
}

func NewMockViewRepository() *MockViewRepository {
	return &MockViewRepository{Views: make(map[string]int64)}
}

func (m *MockViewRepository) Increment(ctx context.Context, articleID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IncrementCalls++
	if m.IncrementError != nil {
		return 0, m.IncrementError
	}
	m.Views[articleID]++
	return m.Views[articleID], nil
}

func (m *MockViewRepository) Get(ctx context.Context, articleID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return 0, m.GetError
	}
	return m.Views[articleID], nil
}

// Calls returns the number of Increment calls so far
func (m *MockViewRepository) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.IncrementCalls
}

// SetIncrementError makes subsequent increments fail
func (m *MockViewRepository) SetIncrementError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IncrementError = err
}

// MockRatingRepository is an in-memory RatingRepository
type MockRatingRepository struct {
	mu          sync.Mutex
	Ratings     map[string][]*models.Rating
	InsertError error
	ListError   error
	// CreateFunc, when set, runs before the insert (e.g. to block a write)
	CreateFunc  func(ctx context.Context, rating *models.Rating) error
	CreateCalls int
}

func NewMockRatingRepository() *MockRatingRepository {
	return &MockRatingRepository{Ratings: make(map[string][]*models.Rating)}
}

func (m *MockRatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	m.mu.Lock()
	m.CreateCalls++
	fn := m.CreateFunc
	insertErr := m.InsertError
	m.mu.Unlock()

	if fn != nil {
		if err := fn(ctx, rating); err != nil {
			return err
		}
	}
	if insertErr != nil {
		return insertErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ratings[rating.ArticleID] = append(m.Ratings[rating.ArticleID], rating)
	return nil
}

func (m *MockRatingRepository) ListByArticle(ctx context.Context, articleID string) ([]*models.Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	out := make([]*models.Rating, len(m.Ratings[articleID]))
	copy(out, m.Ratings[articleID])
	return out, nil
}

// Seed stores ratings directly, bypassing validation
func (m *MockRatingRepository) Seed(articleID string, ratings ...*models.Rating) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range ratings {
		r.ArticleID = articleID
		m.Ratings[articleID] = append(m.Ratings[articleID], r)
	}
}

// Count returns the number of stored ratings for an article
func (m *MockRatingRepository) Count(articleID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Ratings[articleID])
}

// Calls returns the number of Create calls so far
func (m *MockRatingRepository) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CreateCalls
}

// SetInsertError makes subsequent inserts fail
func (m *MockRatingRepository) SetInsertError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertError = err
}

// MockCommentRepository is an in-memory CommentRepository
type MockCommentRepository struct {
	mu          sync.Mutex
	Comments    map[string][]*models.Comment
	InsertError error
	ListError   error
	CreateCalls int
}

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{Comments: make(map[string][]*models.Comment)}
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.InsertError != nil {
		return m.InsertError
	}
	m.Comments[comment.ArticleID] = append(m.Comments[comment.ArticleID], comment)
	return nil
}

func (m *MockCommentRepository) ListByArticle(ctx context.Context, articleID string) ([]*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	out := make([]*models.Comment, len(m.Comments[articleID]))
	copy(out, m.Comments[articleID])
	return out, nil
}

// Seed stores comments directly
func (m *MockCommentRepository) Seed(articleID string, comments ...*models.Comment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range comments {
		c.ArticleID = articleID
		m.Comments[articleID] = append(m.Comments[articleID], c)
	}
}

// Calls returns the number of Create calls so far
func (m *MockCommentRepository) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CreateCalls
}

// SetInsertError makes subsequent inserts fail
func (m *MockCommentRepository) SetInsertError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertError = err
}

// NewRepositories returns in-memory repositories wired together
func NewRepositories() (*repository.Repositories, *MockViewRepository, *MockRatingRepository, *MockCommentRepository) {
	views := NewMockViewRepository()
	ratings := NewMockRatingRepository()
	comments := NewMockCommentRepository()
	return &repository.Repositories{
		View:    views,
		Rating:  ratings,
		Comment: comments,
	}, views, ratings, comments
}
