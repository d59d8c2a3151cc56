package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/article-engagement-api/internal/widget"
	"github.com/gin-gonic/gin"
)

// cookieVoteMarkers keeps the vote marker in a rated_{id} cookie
type cookieVoteMarkers struct {
	c      *gin.Context
	ttl    time.Duration
	secure bool
}

func newCookieVoteMarkers(c *gin.Context, ttl time.Duration, secure bool) *cookieVoteMarkers {
	return &cookieVoteMarkers{c: c, ttl: ttl, secure: secure}
}

func (m *cookieVoteMarkers) Get(articleID string) (int, bool) {
	raw, err := m.c.Cookie(widget.MarkerKey(articleID))
	if err != nil {
		return 0, false
	}
	return widget.ParseMarker(raw)
}

func (m *cookieVoteMarkers) Set(articleID string, value int) error {
	m.c.SetSameSite(http.SameSiteLaxMode)
	m.c.SetCookie(widget.MarkerKey(articleID), strconv.Itoa(value), int(m.ttl.Seconds()), "/", "", m.secure, true)
	return nil
}
