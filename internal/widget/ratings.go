package widget

import (
	"context"
	"errors"
	"sync"

	"github.com/article-engagement-api/internal/models"
	"github.com/article-engagement-api/internal/realtime"
	"github.com/rs/zerolog"
)

var (
	// ErrAlreadyVoted is returned when the browser's vote marker is present
	ErrAlreadyVoted = errors.New("already voted")
	// ErrSubmitInFlight is returned while a previous submission is pending
	ErrSubmitInFlight = errors.New("submission already in progress")
	// ErrInvalidStar is returned for clicks outside 1..5
	ErrInvalidStar = errors.New("star must be between 1 and 5")
)

// ratingRetryMessage is shown inline when a vote could not be stored
const ratingRetryMessage = "Could not save your rating. Please try again."

// RatingWatcher streams an article's rating summary
type RatingWatcher interface {
	Watch(ctx context.Context, articleID string) *realtime.Subscription[models.RatingSummary]
}

// RatingSubmitter appends a rating entry
type RatingSubmitter interface {
	Submit(ctx context.Context, articleID string, value int) (*models.Rating, error)
}

// RatingStore is everything the rating components need
type RatingStore interface {
	RatingWatcher
	RatingSubmitter
}

// ListenRatingSummary keeps el showing the article's average and count
func ListenRatingSummary(ctx context.Context, ratings RatingWatcher, articleID string, el Element) *Binding {
	if el == nil {
		return nil
	}
	return bind(ratings.Watch(ctx, articleID), el, RenderRatingSummary)
}

// RatingWidget is the interactive 1-5 star input of one article in one browser
type RatingWidget struct {
	el      Element
	markers VoteMarkers
	ratings RatingSubmitter
	log     zerolog.Logger

	mu    sync.Mutex
	state RatingWidgetState
}

// NewRatingWidget renders the widget into el. A present vote marker puts it
// straight into the Voted phase without reading the store.
func NewRatingWidget(articleID string, el Element, markers VoteMarkers, ratings RatingSubmitter, log zerolog.Logger) *RatingWidget {
	w := &RatingWidget{
		el:      el,
		markers: markers,
		ratings: ratings,
		log:     log.With().Str("component", "rating_widget").Str("article_id", articleID).Logger(),
		state:   RatingWidgetState{ArticleID: articleID, Phase: Unvoted},
	}
	if value, ok := markers.Get(articleID); ok {
		w.state.Phase = Voted
		w.state.Value = value
	}

	w.mu.Lock()
	w.render()
	w.mu.Unlock()
	return w
}

// State returns a copy of the current state
func (w *RatingWidget) State() RatingWidgetState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Hover previews the stars up to i without committing. Pages served over
// HTTP draw the preview in the browser from each button's data-value; Hover
// drives it for pages rendered in-process.
func (w *RatingWidget) Hover(i int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.Phase != Unvoted || i < 0 || i > models.MaxRating {
		return
	}
	w.state.Preview = i
	w.render()
}

// Leave resets the hover preview
func (w *RatingWidget) Leave() {
	w.Hover(0)
}

// Click commits a vote of i stars. The controls are disabled while the
// write is in flight; the vote marker is stored only once the write succeeded.
func (w *RatingWidget) Click(ctx context.Context, i int) error {
	w.mu.Lock()
	switch {
	case w.state.Phase == Voted:
		w.mu.Unlock()
		return ErrAlreadyVoted
	case w.state.Phase == Submitting:
		w.mu.Unlock()
		return ErrSubmitInFlight
	case i < models.MinRating || i > models.MaxRating:
		w.mu.Unlock()
		return ErrInvalidStar
	}
	w.state.Phase = Submitting
	w.state.Preview = i
	w.state.Error = ""
	w.render()
	articleID := w.state.ArticleID
	w.mu.Unlock()

	_, err := w.ratings.Submit(ctx, articleID, i)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		w.log.Warn().Err(err).Int("value", i).Msg("Rating submission failed")
		w.state.Phase = Unvoted
		w.state.Preview = 0
		w.state.Error = ratingRetryMessage
		w.render()
		return err
	}

	if err := w.markers.Set(articleID, i); err != nil {
		w.log.Warn().Err(err).Msg("Failed to store vote marker")
	}
	w.state.Phase = Voted
	w.state.Value = i
	w.state.Preview = 0
	w.render()
	return nil
}

// render must be called with w.mu held
func (w *RatingWidget) render() {
	w.el.SetHTML(RenderRatingWidget(w.state))
}
