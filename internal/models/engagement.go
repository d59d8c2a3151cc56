package models

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Store paths mirror the hierarchical layout articles/{id}/{views,ratings,comments}.
// They double as change-notification topics.
const (
	KindViews    = "views"
	KindRatings  = "ratings"
	KindComments = "comments"
)

// ArticlePath returns the store path of one engagement slice of an article
func ArticlePath(articleID, kind string) string {
	return "articles/" + articleID + "/" + kind
}

// ViewsPath returns the path of the article's view counter
func ViewsPath(articleID string) string { return ArticlePath(articleID, KindViews) }

// RatingsPath returns the path of the article's rating set
func RatingsPath(articleID string) string { return ArticlePath(articleID, KindRatings) }

// CommentsPath returns the path of the article's comment set
func CommentsPath(articleID string) string { return ArticlePath(articleID, KindComments) }

// EngagementRecord is the views/ratings/comments bundle of one article,
// keyed the same way as the store.
type EngagementRecord struct {
	ArticleID string              `json:"article_id"`
	Views     int64               `json:"views"`
	Ratings   map[string]*Rating  `json:"ratings"`
	Comments  map[string]*Comment `json:"comments"`
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewEntryID returns a server-assigned, monotonically ordered entry id
func NewEntryID(now time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}

// NowMillis returns t as milliseconds since the epoch
func NowMillis(t time.Time) int64 {
	return t.UnixMilli()
}
