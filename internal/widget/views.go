package widget

import (
	"context"

	"github.com/article-engagement-api/internal/realtime"
)

// ViewCounter is the slice of the view service the page needs
type ViewCounter interface {
	Track(articleID string)
	Watch(ctx context.Context, articleID string) *realtime.Subscription[int64]
}

// TrackView counts one page view. It never blocks and never fails visibly.
func TrackView(views ViewCounter, articleID string) {
	views.Track(articleID)
}

// ListenViewCount keeps el showing "N reads" for the article
func ListenViewCount(ctx context.Context, views ViewCounter, articleID string, el Element) *Binding {
	if el == nil {
		return nil
	}
	return bind(views.Watch(ctx, articleID), el, RenderViewCount)
}
