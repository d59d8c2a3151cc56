package widget

import (
	"context"
	"sync"
	"time"

	"github.com/article-engagement-api/internal/models"
	"github.com/article-engagement-api/internal/realtime"
	"github.com/article-engagement-api/internal/validation"
)

const (
	commentRetryMessage  = "Could not post your comment. Please try again."
	commentPostedMessage = "Thanks! Your comment has been posted."
	statusError          = "error"
	statusSuccess        = "success"
)

// CommentStore is the slice of the comment service the page needs
type CommentStore interface {
	Submit(ctx context.Context, articleID string, in models.CommentInput) (*models.Comment, error)
	Watch(ctx context.Context, articleID string) *realtime.Subscription[[]*models.Comment]
}

// CommentSubmitter appends a comment
type CommentSubmitter interface {
	Submit(ctx context.Context, articleID string, in models.CommentInput) (*models.Comment, error)
}

// CommentForm validates and submits comments for one article
type CommentForm struct {
	articleID string
	comments  CommentSubmitter
	validator *validation.Validator
	onChange  func()

	mu    sync.Mutex
	state FormState
}

// NewCommentForm creates a form; onChange runs after every state change
func NewCommentForm(articleID string, comments CommentSubmitter, onChange func()) *CommentForm {
	if onChange == nil {
		onChange = func() {}
	}
	return &CommentForm{
		articleID: articleID,
		comments:  comments,
		validator: validation.NewValidator(),
		onChange:  onChange,
	}
}

// State returns a copy of the form state
func (f *CommentForm) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Submit validates the input and, when valid, writes it. Invalid input never
// reaches the store; the first invalid field gets focus and a specific message.
func (f *CommentForm) Submit(ctx context.Context, in models.CommentInput) error {
	f.mu.Lock()
	if f.state.Pending {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}

	f.state.Name, f.state.Body = in.Name, in.Body
	if err := f.validator.ValidateComment(in.Trimmed()); err != nil {
		f.fail(err)
		f.mu.Unlock()
		f.onChange()
		return err
	}

	f.state.Pending = true
	f.state.Status, f.state.StatusKind, f.state.Focus = "", "", ""
	f.mu.Unlock()
	f.onChange()

	_, err := f.comments.Submit(ctx, f.articleID, in)

	f.mu.Lock()
	f.state.Pending = false
	if err != nil {
		f.fail(err)
	} else {
		f.state = FormState{Status: commentPostedMessage, StatusKind: statusSuccess}
	}
	f.mu.Unlock()
	f.onChange()
	return err
}

// fail must be called with f.mu held
func (f *CommentForm) fail(err error) {
	f.state.StatusKind = statusError
	if errs, ok := validation.AsErrors(err); ok {
		if first, ok := errs.First(); ok {
			f.state.Status = first.Message
			f.state.Focus = first.Field
			return
		}
	}
	f.state.Status = commentRetryMessage
	f.state.Focus = ""
}

// CommentsModule renders an article's comment list and its form into two
// separate elements. A change to the comment set re-renders the list only, so
// a draft in the form survives other visitors' posts.
type CommentsModule struct {
	articleID string
	list      Element
	formEl    Element
	form      *CommentForm
	now       func() time.Time
	binding   *Binding

	listMu   sync.Mutex
	loaded   bool
	comments []*models.Comment

	formMu sync.Mutex
}

// SetupComments renders the loading state into list and the form into form,
// then follows the article's comments. Either element may be nil.
func SetupComments(ctx context.Context, comments CommentStore, articleID string, list, form Element) *CommentsModule {
	m := &CommentsModule{
		articleID: articleID,
		list:      list,
		formEl:    form,
		now:       time.Now,
	}
	m.form = NewCommentForm(articleID, comments, m.renderForm)
	m.renderForm()

	if list != nil {
		m.renderList()
		m.binding = follow(comments.Watch(ctx, articleID), func(snapshot []*models.Comment) {
			m.listMu.Lock()
			m.loaded = true
			m.comments = snapshot
			m.listMu.Unlock()
			m.renderList()
		})
	}
	return m
}

// Submit posts a comment through the module's form
func (m *CommentsModule) Submit(ctx context.Context, in models.CommentInput) error {
	return m.form.Submit(ctx, in)
}

// Form returns the module's form
func (m *CommentsModule) Form() *CommentForm {
	return m.form
}

// Close stops following the comment set
func (m *CommentsModule) Close() {
	m.binding.Close()
}

func (m *CommentsModule) renderList() {
	m.listMu.Lock()
	defer m.listMu.Unlock()
	m.list.SetHTML(RenderCommentList(m.loaded, m.comments, m.now()))
}

func (m *CommentsModule) renderForm() {
	if m.formEl == nil {
		return
	}
	m.formMu.Lock()
	defer m.formMu.Unlock()
	m.formEl.SetHTML(RenderCommentForm(m.articleID, m.form.State()))
}
