package widget

import (
	"context"
	"fmt"
	"sync"

	"github.com/article-engagement-api/internal/service"
	"github.com/rs/zerolog"
)

// Deps are the collaborators of an article page
type Deps struct {
	Views    ViewCounter
	Ratings  RatingStore
	Comments CommentStore
	Markers  VoteMarkers
	Log      zerolog.Logger
}

// DepsFromServices builds page dependencies from the service layer
func DepsFromServices(services *service.Services, markers VoteMarkers, log zerolog.Logger) Deps {
	return Deps{
		Views:    services.Views,
		Ratings:  services.Ratings,
		Comments: services.Comments,
		Markers:  markers,
		Log:      log,
	}
}

// Page is the live engagement state of one article view
type Page struct {
	ArticleID string
	// Widget is nil when the page lacks a rating section. It only sees votes
	// cast through it: a vote recorded by another widget instance for the same
	// browser shows up here once the page is initialized again.
	Widget *RatingWidget
	// Comments is nil when the page has neither a comment list nor a form
	Comments *CommentsModule

	closeOnce sync.Once
	bindings  Group
}

// Close tears down every subscription the page holds
func (p *Page) Close() {
	p.closeOnce.Do(func() {
		p.bindings.Close()
		if p.Comments != nil {
			p.Comments.Close()
		}
	})
}

// InitEngagement counts the view and wires the view counter, rating summary,
// rating widget and comments of an article into doc. Components whose
// element is missing are skipped.
func InitEngagement(ctx context.Context, deps Deps, doc Document, articleID string) (*Page, error) {
	if articleID == "" {
		return nil, fmt.Errorf("init engagement: article id is required")
	}

	log := deps.Log.With().Str("article_id", articleID).Logger()
	page := &Page{ArticleID: articleID}

	TrackView(deps.Views, articleID)

	if el, ok := doc.Element(ViewCountID); ok {
		page.bindings = append(page.bindings, ListenViewCount(ctx, deps.Views, articleID, el))
	}
	if el, ok := doc.Element(RatingSummaryID); ok {
		page.bindings = append(page.bindings, ListenRatingSummary(ctx, deps.Ratings, articleID, el))
	}
	if el, ok := doc.Element(RatingSectionID); ok {
		page.Widget = NewRatingWidget(articleID, el, deps.Markers, deps.Ratings, log)
	}
	list, hasList := doc.Element(CommentsListID)
	form, hasForm := doc.Element(CommentsSectionID)
	if hasList || hasForm {
		page.Comments = SetupComments(ctx, deps.Comments, articleID, list, form)
	}

	log.Debug().
		Int("bindings", len(page.bindings)).
		Bool("rating_widget", page.Widget != nil).
		Bool("comments", page.Comments != nil).
		Msg("Engagement initialized")
	return page, nil
}
