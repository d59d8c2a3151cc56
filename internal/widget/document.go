// Package widget renders article engagement (view counts, star ratings,
// comments) into page elements and keeps them live as the store changes.
//
// Components never touch a concrete page. They render markup into an Element
// looked up by DOM id from a Document, and rewrite it wholesale on every update.
package widget

import (
	"sync"

	"github.com/article-engagement-api/internal/realtime"
)

// DOM ids the article page template provides
const (
	ViewCountID     = "engagement-view-count"
	RatingSummaryID = "engagement-rating"
	RatingSectionID = "rating-section"
	// CommentsListID and CommentsSectionID must be siblings: the list is
	// re-rendered on every change, the form in the section only on its own
	CommentsListID    = "comments-list"
	CommentsSectionID = "comments-section"
	cardRatingPrefix  = "card-rating-"
)

// ArticleElementIDs lists the elements an article page must provide
var ArticleElementIDs = []string{ViewCountID, RatingSummaryID, RatingSectionID, CommentsListID, CommentsSectionID}

// CardRatingID is the id of the compact summary element of a listing card
func CardRatingID(articleID string) string {
	return cardRatingPrefix + articleID
}

// Element is a region of the page a component owns
type Element interface {
	SetHTML(markup string)
}

// ElementFunc adapts a function to Element
type ElementFunc func(markup string)

// SetHTML calls f
func (f ElementFunc) SetHTML(markup string) { f(markup) }

// Document looks elements up by id
type Document interface {
	Element(id string) (Element, bool)
}

// MapDocument is a Document backed by a map
type MapDocument map[string]Element

// Element implements Document
func (d MapDocument) Element(id string) (Element, bool) {
	el, ok := d[id]
	return el, ok && el != nil
}

// Buffer is an Element that keeps everything rendered into it
type Buffer struct {
	mu      sync.Mutex
	history []string
}

// SetHTML records markup
func (b *Buffer) SetHTML(markup string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = append(b.history, markup)
}

// HTML returns the latest markup
func (b *Buffer) HTML() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.history) == 0 {
		return ""
	}
	return b.history[len(b.history)-1]
}

// History returns every render in order
func (b *Buffer) History() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.history))
	copy(out, b.history)
	return out
}

// Binding keeps an element in sync with a subscription until closed
type Binding struct {
	cancel func()
	done   chan struct{}
}

// Close cancels the subscription and waits for the last render to finish.
// A nil Binding is a no-op.
func (b *Binding) Close() {
	if b == nil {
		return
	}
	b.cancel()
	<-b.done
}

// follow calls fn with every snapshot of sub
func follow[T any](sub *realtime.Subscription[T], fn func(T)) *Binding {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for v := range sub.C() {
			fn(v)
		}
	}()
	return &Binding{cancel: sub.Cancel, done: done}
}

// bind renders every snapshot of sub into el
func bind[T any](sub *realtime.Subscription[T], el Element, render func(T) string) *Binding {
	return follow(sub, func(v T) {
		el.SetHTML(render(v))
	})
}

// Group closes several bindings together
type Group []*Binding

// Close closes every binding
func (g Group) Close() {
	for _, b := range g {
		b.Close()
	}
}
