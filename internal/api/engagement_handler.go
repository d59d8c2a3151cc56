package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/article-engagement-api/internal/config"
	"github.com/article-engagement-api/internal/models"
	"github.com/article-engagement-api/internal/service"
	"github.com/article-engagement-api/internal/validation"
	"github.com/article-engagement-api/internal/widget"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const htmlContentType = "text/html; charset=utf-8"

// EngagementHandler handles the article engagement endpoints
type EngagementHandler struct {
	services  *service.Services
	cfg       *config.Config
	validator *validation.Validator
	log       zerolog.Logger
}

// NewEngagementHandler creates a new EngagementHandler
func NewEngagementHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *EngagementHandler {
	return &EngagementHandler{
		services:  services,
		cfg:       cfg,
		validator: validation.NewValidator(),
		log:       log.With().Str("handler", "engagement").Logger(),
	}
}

// articleID returns the validated :id path parameter, or aborts with 400
func (h *EngagementHandler) articleID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if err := h.validator.ValidateArticleID(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return id, true
}

// GetRecord handles GET /v1/articles/:id
func (h *EngagementHandler) GetRecord(c *gin.Context) {
	id, ok := h.articleID(c)
	if !ok {
		return
	}

	ctx, cancel := contextWithTimeout(c, h.cfg.Server.ReadTimeout)
	defer cancel()

	record, err := h.services.Records.Get(ctx, id)
	if err != nil {
		h.log.Error().Err(err).Str("article_id", id).Msg("Failed to load engagement record")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load engagement"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// TrackView handles POST /v1/articles/:id/views. Counting happens in the
// background and never reports failure.
func (h *EngagementHandler) TrackView(c *gin.Context) {
	id, ok := h.articleID(c)
	if !ok {
		return
	}
	widget.TrackView(h.services.Views, id)
	c.Status(http.StatusNoContent)
}

// SubmitRating handles POST /v1/articles/:id/ratings
// Responds with the rating widget fragment in its new state.
func (h *EngagementHandler) SubmitRating(c *gin.Context) {
	id, ok := h.articleID(c)
	if !ok {
		return
	}

	// non-numeric values click star 0, which the widget rejects
	value, _ := strconv.Atoi(strings.TrimSpace(c.PostForm("value")))

	el := &widget.Buffer{}
	markers := newCookieVoteMarkers(c, h.cfg.Engagement.VoteCookieTTL, h.cfg.Engagement.SecureCookies)
	w := widget.NewRatingWidget(id, el, markers, h.services.Ratings, h.log)

	status := http.StatusOK
	if err := w.Click(c.Request.Context(), value); err != nil {
		switch {
		case errors.Is(err, widget.ErrAlreadyVoted):
			status = http.StatusConflict
		case errors.Is(err, widget.ErrInvalidStar):
			status = http.StatusUnprocessableEntity
		default:
			status = http.StatusServiceUnavailable
		}
	}

	c.Data(status, htmlContentType, []byte(el.HTML()))
}

// SubmitComment handles POST /v1/articles/:id/comments
// Responds with the comment form fragment: cleared on success, otherwise
// keeping the input with an inline message.
func (h *EngagementHandler) SubmitComment(c *gin.Context) {
	id, ok := h.articleID(c)
	if !ok {
		return
	}

	var in models.CommentInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form body"})
		return
	}

	form := widget.NewCommentForm(id, h.services.Comments, nil)

	status := http.StatusCreated
	if err := form.Submit(c.Request.Context(), in); err != nil {
		if _, invalid := validation.AsErrors(err); invalid {
			status = http.StatusUnprocessableEntity
		} else {
			status = http.StatusServiceUnavailable
		}
	}

	c.Data(status, htmlContentType, []byte(widget.RenderCommentForm(id, form.State())))
}

// resumedViews is the view counter of a reconnected stream: the page load
// was counted when the stream first opened
type resumedViews struct {
	widget.ViewCounter
}

func (resumedViews) Track(string) {}

// LiveArticle handles GET /v1/articles/:id/live
// Counts the view and streams every engagement element of the article page.
// A reconnect (Last-Event-ID present) streams without counting again.
func (h *EngagementHandler) LiveArticle(c *gin.Context) {
	id, ok := h.articleID(c)
	if !ok {
		return
	}

	ctx, cancel := contextWithTimeout(c, 0)
	doc := newSSEDocument(ctx, widget.ArticleElementIDs...)
	markers := newCookieVoteMarkers(c, h.cfg.Engagement.VoteCookieTTL, h.cfg.Engagement.SecureCookies)

	deps := widget.DepsFromServices(h.services, markers, h.log)
	if c.GetHeader(lastEventIDHeader) != "" {
		deps.Views = resumedViews{deps.Views}
	}

	page, err := widget.InitEngagement(ctx, deps, doc, id)
	if err != nil {
		cancel()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer func() {
		cancel()
		page.Close()
	}()

	doc.stream(c, h.cfg.Engagement.KeepAlive)
}

// LiveCards handles GET /v1/cards/live?ids=a,b,c
func (h *EngagementHandler) LiveCards(c *gin.Context) {
	ids, err := h.cardIDs(c.Query("ids"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	elementIDs := make([]string, len(ids))
	for i, id := range ids {
		elementIDs[i] = widget.CardRatingID(id)
	}

	ctx, cancel := contextWithTimeout(c, 0)
	doc := newSSEDocument(ctx, elementIDs...)
	group := widget.FetchCardRatings(ctx, h.services.Ratings, doc, ids)
	defer func() {
		cancel()
		group.Close()
	}()

	doc.stream(c, h.cfg.Engagement.KeepAlive)
}

// cardIDs parses the comma separated ids parameter
func (h *EngagementHandler) cardIDs(raw string) ([]string, error) {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if err := h.validator.ValidateArticleID(id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	switch {
	case len(ids) == 0:
		return nil, errors.New("ids parameter is required")
	case len(ids) > h.cfg.Engagement.MaxCardIDs:
		return nil, errors.New("too many ids, max " + strconv.Itoa(h.cfg.Engagement.MaxCardIDs))
	}
	return ids, nil
}
