package widget

import (
	"fmt"
	"strings"
	"time"

	"github.com/article-engagement-api/internal/format"
	"github.com/article-engagement-api/internal/models"
)

// Every function in this file is pure: state in, markup out.

const noRatingsHTML = `<span class="rating-empty">No ratings yet</span>`

// RenderViewCount renders "1.3k reads" / "1 read"
func RenderViewCount(views int64) string {
	label := " reads"
	if views == 1 {
		label = " read"
	}
	return `<span class="view-count">` + format.FormatCount(views) + label + `</span>`
}

// RenderRatingSummary renders stars, the one-decimal average and "N ratings"
func RenderRatingSummary(s models.RatingSummary) string {
	if s.Empty() {
		return noRatingsHTML
	}
	return fmt.Sprintf(
		`<span class="rating-stars">%s</span> <span class="rating-average">%s</span> <span class="rating-count">(%s)</span>`,
		format.StarsHTML(s.Average, false, ""),
		format.Average(s.Average),
		format.Plural(int64(s.Count), "rating"),
	)
}

// RenderCardRating renders the compact listing form: no label, bare count
func RenderCardRating(s models.RatingSummary) string {
	if s.Empty() {
		return noRatingsHTML
	}
	return fmt.Sprintf(
		`<span class="rating-stars">%s</span> <span class="rating-average">%s</span> <span class="rating-count">(%d)</span>`,
		format.StarsHTML(s.Average, false, ""),
		format.Average(s.Average),
		s.Count,
	)
}

// Phase is the state of the rating widget
type Phase int

const (
	// Unvoted: no local vote marker, the stars are clickable
	Unvoted Phase = iota
	// Submitting: a vote is in flight, the stars are disabled
	Submitting
	// Voted: the browser already rated this article
	Voted
)

func (p Phase) String() string {
	switch p {
	case Unvoted:
		return "unvoted"
	case Submitting:
		return "submitting"
	case Voted:
		return "voted"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// RatingWidgetState is everything the rating widget renders from
type RatingWidgetState struct {
	ArticleID string
	Phase     Phase
	// Preview is the number of stars lit by hover, or the pending vote
	Preview int
	// Value is the recorded vote in the Voted phase
	Value int
	Error string
}

// RenderRatingWidget renders the interactive control or the voted confirmation
func RenderRatingWidget(s RatingWidgetState) string {
	var b strings.Builder

	if s.Phase == Voted {
		fmt.Fprintf(&b, `<div class="rating-widget voted" data-article="%s">`, format.EscapeHTML(s.ArticleID))
		fmt.Fprintf(&b, `<span class="rating-stars">%s</span>`, format.StarsHTML(float64(s.Value), false, s.ArticleID))
		fmt.Fprintf(&b, `<p class="rating-thanks">You rated this article %s. Thanks!</p>`, format.Plural(int64(s.Value), "star"))
		b.WriteString(`</div>`)
		return b.String()
	}

	fmt.Fprintf(&b, `<div class="rating-widget" data-article="%s" data-phase="%s">`, format.EscapeHTML(s.ArticleID), s.Phase)
	b.WriteString(`<p class="rating-prompt">Rate this article:</p>`)
	fmt.Fprintf(&b, `<div class="rating-input" role="group" aria-label="Rate this article">%s</div>`,
		format.StarButtonsHTML(s.Preview, s.Phase == Submitting, s.ArticleID))
	if s.Error != "" {
		fmt.Fprintf(&b, `<p class="rating-error" role="alert">%s</p>`, format.EscapeHTML(s.Error))
	}
	b.WriteString(`</div>`)
	return b.String()
}

// FormState is the state of the comment form
type FormState struct {
	Name    string
	Body    string
	Pending bool
	// Status is the inline message; StatusKind is "error" or "success"
	Status     string
	StatusKind string
	// Focus names the field that should receive input focus
	Focus string
}

// RenderCommentList renders the loading, empty or newest-first list state.
// Comments must already be sorted.
func RenderCommentList(loaded bool, comments []*models.Comment, now time.Time) string {
	if !loaded {
		return `<div class="comments-list"><p class="comments-loading">Loading comments…</p></div>`
	}
	if len(comments) == 0 {
		return `<div class="comments-list"><p class="comments-empty">No comments yet. Be the first to share your thoughts!</p></div>`
	}

	var b strings.Builder
	b.WriteString(`<div class="comments-list">`)
	for _, c := range comments {
		ts := time.UnixMilli(c.Timestamp).UTC()
		fmt.Fprintf(&b,
			`<article class="comment"><header><strong class="comment-name">%s</strong> <time class="comment-time" datetime="%s">%s</time></header><p class="comment-body">%s</p></article>`,
			format.EscapeHTML(c.Name),
			ts.Format(time.RFC3339),
			format.TimeAgoAt(c.Timestamp, now),
			format.Paragraphs(c.Body),
		)
	}
	b.WriteString(`</div>`)
	return b.String()
}

// RenderCommentForm renders the submission form
func RenderCommentForm(articleID string, f FormState) string {
	var b strings.Builder

	fmt.Fprintf(&b, `<form class="comment-form" method="post" action="/v1/articles/%s/comments" data-article="%s">`,
		format.EscapeHTML(articleID), format.EscapeHTML(articleID))

	fmt.Fprintf(&b,
		`<label for="comment-name">Name</label><input id="comment-name" name="name" type="text" maxlength="%d" required value="%s"%s>`,
		models.MaxCommentNameLength, format.EscapeHTML(f.Name), focusAttr(f.Focus == "name"))
	fmt.Fprintf(&b,
		`<label for="comment-body">Comment</label><textarea id="comment-body" name="body" maxlength="%d" required%s>%s</textarea>`,
		models.MaxCommentBodyLength, focusAttr(f.Focus == "body"), format.EscapeHTML(f.Body))

	if f.Pending {
		b.WriteString(`<button type="submit" class="comment-submit" disabled>Posting…</button>`)
	} else {
		b.WriteString(`<button type="submit" class="comment-submit">Post comment</button>`)
	}

	if f.Status != "" {
		role := "status"
		if f.StatusKind == "error" {
			role = "alert"
		}
		fmt.Fprintf(&b, `<p class="comment-status %s" role="%s">%s</p>`,
			format.EscapeHTML(f.StatusKind), role, format.EscapeHTML(f.Status))
	}

	b.WriteString(`</form>`)
	return b.String()
}

func focusAttr(focused bool) string {
	if focused {
		return " autofocus"
	}
	return ""
}
