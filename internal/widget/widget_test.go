package widget_test

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/article-engagement-api/internal/config"
	"github.com/article-engagement-api/internal/mocks"
	"github.com/article-engagement-api/internal/realtime"
	"github.com/article-engagement-api/internal/service"
	"github.com/article-engagement-api/internal/widget"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	services    *service.Services
	viewRepo    *mocks.MockViewRepository
	ratingRepo  *mocks.MockRatingRepository
	commentRepo *mocks.MockCommentRepository
	markers     *widget.MemoryVoteMarkers
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repos, views, ratings, comments := mocks.NewRepositories()
	hub := realtime.NewHub(zerolog.Nop())
	services := service.NewServices(repos, hub, config.Default(), zerolog.Nop())
	t.Cleanup(services.Views.Stop)

	return &fixture{
		services:    services,
		viewRepo:    views,
		ratingRepo:  ratings,
		commentRepo: comments,
		markers:     widget.NewMemoryVoteMarkers(),
	}
}

func (f *fixture) deps() widget.Deps {
	return widget.DepsFromServices(f.services, f.markers, zerolog.Nop())
}

func parse(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

// eventually waits until el's latest markup satisfies cond
func eventually(t *testing.T, el *widget.Buffer, cond func(doc *goquery.Document) bool) *goquery.Document {
	t.Helper()
	var doc *goquery.Document
	require.Eventually(t, func() bool {
		markup := el.HTML()
		if markup == "" {
			return false
		}
		doc = parse(t, markup)
		return cond(doc)
	}, 2*time.Second, 5*time.Millisecond, "last render: %s", el.HTML())
	return doc
}

func text(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).Text())
}
