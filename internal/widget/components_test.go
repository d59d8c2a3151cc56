package widget_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/article-engagement-api/internal/models"
	"github.com/article-engagement-api/internal/widget"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingSubmitter fails the test if the widget touches the store
type failingSubmitter struct{ t *testing.T }

func (f failingSubmitter) Submit(context.Context, string, int) (*models.Rating, error) {
	f.t.Fatal("unexpected store write")
	return nil, nil
}

func TestListenViewCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	el := &widget.Buffer{}

	b := widget.ListenViewCount(ctx, f.services.Views, "a1", el)
	defer b.Close()

	eventually(t, el, func(doc *goquery.Document) bool { return text(doc, ".view-count") == "0 reads" })

	f.services.Views.Increment(ctx, "a1")
	eventually(t, el, func(doc *goquery.Document) bool { return text(doc, ".view-count") == "1 read" })
}

func TestListenRatingSummary_LiveUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	el := &widget.Buffer{}

	b := widget.ListenRatingSummary(ctx, f.services.Ratings, "a1", el)

	eventually(t, el, func(doc *goquery.Document) bool { return doc.Find(".rating-empty").Length() == 1 })

	// A write from another visitor anywhere reaches this page
	f.services.Ratings.Submit(ctx, "a1", 5)
	f.services.Ratings.Submit(ctx, "a1", 2)
	eventually(t, el, func(doc *goquery.Document) bool {
		return text(doc, ".rating-average") == "3.5" && text(doc, ".rating-count") == "(2 ratings)"
	})

	b.Close()
	renders := len(el.History())
	f.services.Ratings.Submit(ctx, "a1", 1)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, renders, len(el.History()), "closed binding must not render")
}

func TestListenRatingSummary_MissingElement(t *testing.T) {
	f := newFixture(t)
	b := widget.ListenRatingSummary(context.Background(), f.services.Ratings, "a1", nil)
	assert.Nil(t, b)
	b.Close() // nil binding is safe to close
}

func TestRatingWidget_ClickCommitsVote(t *testing.T) {
	f := newFixture(t)
	el := &widget.Buffer{}

	w := widget.NewRatingWidget("a1", el, f.markers, f.services.Ratings, zerolog.Nop())
	require.Equal(t, widget.Unvoted, w.State().Phase)

	require.NoError(t, w.Click(context.Background(), 4))

	// exactly one new entry with value 4
	require.Equal(t, 1, f.ratingRepo.Count("a1"))
	stored, _ := f.ratingRepo.ListByArticle(context.Background(), "a1")
	v, ok := stored[0].Numeric()
	require.True(t, ok)
	assert.Equal(t, float64(4), v)

	// marker holds the string "4"
	raw, ok := f.markers.Raw("rated_a1")
	require.True(t, ok)
	assert.Equal(t, "4", raw)

	state := w.State()
	assert.Equal(t, widget.Voted, state.Phase)
	assert.Equal(t, 4, state.Value)

	// render history: unvoted, submitting (disabled), voted
	history := el.History()
	require.Len(t, history, 3)
	assert.Equal(t, 5, parse(t, history[1]).Find("button[disabled]").Length())
	assert.Contains(t, history[2], "You rated this article 4 stars.")

	// A reload trusts the marker and never touches the store
	reloaded := &widget.Buffer{}
	again := widget.NewRatingWidget("a1", reloaded, f.markers, failingSubmitter{t}, zerolog.Nop())
	assert.Equal(t, widget.Voted, again.State().Phase)
	assert.Contains(t, reloaded.HTML(), "You rated this article 4 stars.")
	assert.ErrorIs(t, again.Click(context.Background(), 5), widget.ErrAlreadyVoted)
}

func TestRatingWidget_WriteFailureAllowsRetry(t *testing.T) {
	f := newFixture(t)
	el := &widget.Buffer{}
	f.ratingRepo.SetInsertError(errors.New("network unreachable"))

	w := widget.NewRatingWidget("a1", el, f.markers, f.services.Ratings, zerolog.Nop())
	err := w.Click(context.Background(), 3)
	require.Error(t, err)

	state := w.State()
	assert.Equal(t, widget.Unvoted, state.Phase)
	assert.NotEmpty(t, state.Error)
	_, marked := f.markers.Get("a1")
	assert.False(t, marked, "marker must not be stored after a failed write")

	doc := parse(t, el.HTML())
	assert.Equal(t, 0, doc.Find("button[disabled]").Length(), "controls re-enabled")
	assert.Equal(t, "Could not save your rating. Please try again.", text(doc, ".rating-error"))

	f.ratingRepo.SetInsertError(nil)
	require.NoError(t, w.Click(context.Background(), 3))
	assert.Equal(t, widget.Voted, w.State().Phase)
	assert.Equal(t, 1, f.ratingRepo.Count("a1"))
}

func TestRatingWidget_DisabledWhileInFlight(t *testing.T) {
	f := newFixture(t)
	el := &widget.Buffer{}

	release := make(chan struct{})
	f.ratingRepo.CreateFunc = func(ctx context.Context, _ *models.Rating) error {
		<-release
		return nil
	}

	w := widget.NewRatingWidget("a1", el, f.markers, f.services.Ratings, zerolog.Nop())
	done := make(chan error, 1)
	go func() { done <- w.Click(context.Background(), 2) }()

	require.Eventually(t, func() bool { return w.State().Phase == widget.Submitting }, time.Second, time.Millisecond)
	assert.ErrorIs(t, w.Click(context.Background(), 5), widget.ErrSubmitInFlight)
	w.Hover(5) // ignored while submitting
	assert.Equal(t, 2, w.State().Preview)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, f.ratingRepo.Calls())
}

func TestRatingWidget_HoverPreview(t *testing.T) {
	f := newFixture(t)
	el := &widget.Buffer{}
	w := widget.NewRatingWidget("a1", el, f.markers, f.services.Ratings, zerolog.Nop())

	w.Hover(3)
	assert.Equal(t, 3, parse(t, el.HTML()).Find("button.filled").Length())

	w.Leave()
	assert.Equal(t, 0, parse(t, el.HTML()).Find("button.filled").Length())

	assert.ErrorIs(t, w.Click(context.Background(), 0), widget.ErrInvalidStar)
	assert.ErrorIs(t, w.Click(context.Background(), 6), widget.ErrInvalidStar)
	assert.Equal(t, 0, f.ratingRepo.Calls())
}

func TestRatingWidget_ButtonsCarryStarValues(t *testing.T) {
	f := newFixture(t)
	el := &widget.Buffer{}
	widget.NewRatingWidget("a1", el, f.markers, f.services.Ratings, zerolog.Nop())

	buttons := parse(t, el.HTML()).Find("button.star-btn")
	require.Equal(t, 5, buttons.Length())
	buttons.Each(func(i int, b *goquery.Selection) {
		assert.Equal(t, string(rune('1'+i)), b.AttrOr("data-value", ""), "browser preview reads data-value")
		assert.Equal(t, "a1", b.AttrOr("data-article", ""))
	})
}

func TestComments_EmptyNameIsRejectedLocally(t *testing.T) {
	f := newFixture(t)
	list, form := &widget.Buffer{}, &widget.Buffer{}

	m := widget.SetupComments(context.Background(), f.services.Comments, "a1", list, form)
	defer m.Close()

	err := m.Submit(context.Background(), models.CommentInput{Name: "  ", Body: "Nice post"})
	require.Error(t, err)
	assert.Equal(t, 0, f.commentRepo.Calls(), "no remote write on validation failure")

	state := m.Form().State()
	assert.Equal(t, "name", state.Focus)
	assert.Equal(t, "Please enter your name.", state.Status)

	doc := parse(t, form.HTML())
	_, focused := doc.Find("input[name=name]").Attr("autofocus")
	assert.True(t, focused, "name field receives focus")
	assert.Contains(t, text(doc, ".comment-status"), "name")
	assert.Equal(t, "Nice post", doc.Find("textarea[name=body]").Text(), "typed body is kept")
}

func TestComments_SubmitAndLiveList(t *testing.T) {
	f := newFixture(t)
	list, form := &widget.Buffer{}, &widget.Buffer{}
	ctx := context.Background()

	m := widget.SetupComments(ctx, f.services.Comments, "a1", list, form)
	defer m.Close()

	first := list.History()[0]
	assert.Equal(t, 1, parse(t, first).Find(".comments-loading").Length(), "loading placeholder first")
	assert.Equal(t, 1, parse(t, form.HTML()).Find("form.comment-form").Length())

	eventually(t, list, func(doc *goquery.Document) bool { return doc.Find(".comments-empty").Length() == 1 })

	require.NoError(t, m.Submit(ctx, models.CommentInput{Name: "Ada", Body: "First!"}))

	doc := eventually(t, list, func(doc *goquery.Document) bool { return doc.Find("article.comment").Length() == 1 })
	assert.Equal(t, "Ada", text(doc, ".comment-name"))

	fdoc := parse(t, form.HTML())
	assert.Equal(t, "", fdoc.Find("input[name=name]").AttrOr("value", ""), "form cleared on success")
	assert.Equal(t, "", fdoc.Find("textarea[name=body]").Text())
	assert.Equal(t, 1, fdoc.Find(".comment-status.success").Length())

	for _, markup := range list.History() {
		assert.NotContains(t, markup, "<form", "list renders never carry the form")
	}
}

func TestComments_ListUpdateKeepsDraft(t *testing.T) {
	f := newFixture(t)
	list, form := &widget.Buffer{}, &widget.Buffer{}
	ctx := context.Background()

	m := widget.SetupComments(ctx, f.services.Comments, "a1", list, form)
	defer m.Close()
	eventually(t, list, func(doc *goquery.Document) bool { return doc.Find(".comments-empty").Length() == 1 })

	require.Error(t, m.Submit(ctx, models.CommentInput{Name: "", Body: "my draft text"}))
	formRenders := len(form.History())

	// another visitor posts
	_, err := f.services.Comments.Submit(ctx, "a1", models.CommentInput{Name: "Bob", Body: "Hello"})
	require.NoError(t, err)
	eventually(t, list, func(doc *goquery.Document) bool { return doc.Find("article.comment").Length() == 1 })

	assert.Equal(t, formRenders, len(form.History()), "list change does not re-render the form")
	doc := parse(t, form.HTML())
	assert.Equal(t, "my draft text", doc.Find("textarea[name=body]").Text())
	assert.Equal(t, "Please enter your name.", text(doc, ".comment-status"))
}

func TestComments_NewestFirst(t *testing.T) {
	f := newFixture(t)
	list := &widget.Buffer{}
	f.commentRepo.Seed("a1",
		&models.Comment{ID: "01", Name: "T1", Body: "old", Timestamp: time.Now().Add(-time.Hour).UnixMilli()},
		&models.Comment{ID: "02", Name: "T2", Body: "new", Timestamp: time.Now().UnixMilli()},
	)

	m := widget.SetupComments(context.Background(), f.services.Comments, "a1", list, nil)
	defer m.Close()

	doc := eventually(t, list, func(doc *goquery.Document) bool { return doc.Find("article.comment").Length() == 2 })
	names := doc.Find(".comment-name")
	assert.Equal(t, "T2", names.Eq(0).Text())
	assert.Equal(t, "T1", names.Eq(1).Text())
}

func TestComments_WriteFailureShowsRetry(t *testing.T) {
	f := newFixture(t)
	form := &widget.Buffer{}
	f.commentRepo.SetInsertError(errors.New("timeout"))

	m := widget.SetupComments(context.Background(), f.services.Comments, "a1", nil, form)
	defer m.Close()

	err := m.Submit(context.Background(), models.CommentInput{Name: "Ada", Body: "Hello"})
	require.Error(t, err)

	state := m.Form().State()
	assert.False(t, state.Pending)
	assert.Equal(t, "Could not post your comment. Please try again.", state.Status)
	assert.Equal(t, "Ada", state.Name, "input kept for retry")

	doc := parse(t, form.HTML())
	_, disabled := doc.Find("button.comment-submit").Attr("disabled")
	assert.False(t, disabled, "submission re-enabled")
}

func TestCommentForm_PendingLabel(t *testing.T) {
	renders := make(chan widget.FormState, 8)
	release := make(chan struct{})
	submitter := submitFunc(func(ctx context.Context, id string, in models.CommentInput) (*models.Comment, error) {
		<-release
		return &models.Comment{}, nil
	})

	var form *widget.CommentForm
	form = widget.NewCommentForm("a1", submitter, func() { renders <- form.State() })

	done := make(chan error, 1)
	go func() { done <- form.Submit(context.Background(), models.CommentInput{Name: "Ada", Body: "hi"}) }()

	pending := <-renders
	assert.True(t, pending.Pending)
	assert.Contains(t, widget.RenderCommentForm("a1", pending), "Posting…")
	assert.ErrorIs(t, form.Submit(context.Background(), models.CommentInput{Name: "Ada", Body: "hi"}), widget.ErrSubmitInFlight)

	close(release)
	require.NoError(t, <-done)
	final := <-renders
	assert.False(t, final.Pending)
}

type submitFunc func(ctx context.Context, id string, in models.CommentInput) (*models.Comment, error)

func (f submitFunc) Submit(ctx context.Context, id string, in models.CommentInput) (*models.Comment, error) {
	return f(ctx, id, in)
}

func TestFetchCardRatings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.services.Ratings.Submit(ctx, "a1", 4)
	f.services.Ratings.Submit(ctx, "a1", 5)

	a1 := &widget.Buffer{}
	a3 := &widget.Buffer{}
	doc := widget.MapDocument{
		widget.CardRatingID("a1"): a1,
		widget.CardRatingID("a3"): a3,
	}

	group := widget.FetchCardRatings(ctx, f.services.Ratings, doc, []string{"a1", "a2", "a3", "a1"})
	defer group.Close()
	assert.Len(t, group, 2, "missing card element is skipped, duplicates ignored")

	d1 := eventually(t, a1, func(doc *goquery.Document) bool { return text(doc, ".rating-count") == "(2)" })
	assert.Equal(t, "4.5", text(d1, ".rating-average"))
	eventually(t, a3, func(doc *goquery.Document) bool { return doc.Find(".rating-empty").Length() == 1 })
}

func TestInitEngagement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	views, rating, section := &widget.Buffer{}, &widget.Buffer{}, &widget.Buffer{}
	comments, form := &widget.Buffer{}, &widget.Buffer{}
	doc := widget.MapDocument{
		widget.ViewCountID:       views,
		widget.RatingSummaryID:   rating,
		widget.RatingSectionID:   section,
		widget.CommentsListID:    comments,
		widget.CommentsSectionID: form,
	}

	page, err := widget.InitEngagement(ctx, f.deps(), doc, "a1")
	require.NoError(t, err)
	defer page.Close()

	// the page load itself is counted
	eventually(t, views, func(doc *goquery.Document) bool { return text(doc, ".view-count") == "1 read" })
	eventually(t, rating, func(doc *goquery.Document) bool { return doc.Find(".rating-empty").Length() == 1 })
	eventually(t, comments, func(doc *goquery.Document) bool { return doc.Find(".comments-empty").Length() == 1 })
	require.NotNil(t, page.Widget)

	require.NoError(t, page.Widget.Click(ctx, 5))
	eventually(t, rating, func(doc *goquery.Document) bool { return text(doc, ".rating-count") == "(1 rating)" })

	require.NoError(t, page.Comments.Submit(ctx, models.CommentInput{Name: "Ada", Body: "Lovely"}))
	eventually(t, comments, func(doc *goquery.Document) bool { return doc.Find("article.comment").Length() == 1 })
	assert.Contains(t, form.HTML(), "Thanks! Your comment has been posted.")

	page.Close()
	page.Close()
}

func TestInitEngagement_WidgetSeesOnlyItsOwnVotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := widget.MapDocument{widget.RatingSectionID: &widget.Buffer{}}

	page, err := widget.InitEngagement(ctx, f.deps(), doc, "a1")
	require.NoError(t, err)
	defer page.Close()

	// same browser, a different widget instance (e.g. a form post)
	other := widget.NewRatingWidget("a1", &widget.Buffer{}, f.markers, f.services.Ratings, zerolog.Nop())
	require.NoError(t, other.Click(ctx, 4))
	assert.Equal(t, widget.Unvoted, page.Widget.State().Phase)

	reloaded, err := widget.InitEngagement(ctx, f.deps(), doc, "a1")
	require.NoError(t, err)
	defer reloaded.Close()
	assert.Equal(t, widget.Voted, reloaded.Widget.State().Phase)
	assert.Equal(t, 4, reloaded.Widget.State().Value)
}

func TestInitEngagement_ViewTrackingFailureIsSilent(t *testing.T) {
	f := newFixture(t)
	f.viewRepo.SetIncrementError(errors.New("permission denied"))

	rating := &widget.Buffer{}
	page, err := widget.InitEngagement(context.Background(), f.deps(), widget.MapDocument{widget.RatingSummaryID: rating}, "a1")
	require.NoError(t, err)
	defer page.Close()

	eventually(t, rating, func(doc *goquery.Document) bool { return doc.Find(".rating-empty").Length() == 1 })
	assert.Nil(t, page.Widget)
	assert.Nil(t, page.Comments)

	_, err = widget.InitEngagement(context.Background(), f.deps(), widget.MapDocument{}, "")
	assert.Error(t, err)
}
