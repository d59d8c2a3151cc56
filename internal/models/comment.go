package models

import (
	"sort"
	"strings"
)

// Comment limits, counted in characters
const (
	MaxCommentNameLength = 60
	MaxCommentBodyLength = 1000
)

// Comment represents an immutable comment on an article
type Comment struct {
	ID        string `json:"-" db:"id"`
	ArticleID string `json:"-" db:"article_id"`
	Name      string `json:"name" db:"name"`
	Body      string `json:"body" db:"body"`
	Timestamp int64  `json:"timestamp" db:"timestamp_ms"`
}

// CommentInput is a comment as submitted through the form
type CommentInput struct {
	Name string `json:"name" form:"name" validate:"required,max=60"`
	Body string `json:"body" form:"body" validate:"required,max=1000"`
}

// Trimmed returns the input with surrounding whitespace removed
func (in CommentInput) Trimmed() CommentInput {
	return CommentInput{
		Name: strings.TrimSpace(in.Name),
		Body: strings.TrimSpace(in.Body),
	}
}

// SortNewestFirst orders comments by timestamp descending. Entry ids break
// ties, so comments posted in the same millisecond keep insertion order.
func SortNewestFirst(comments []*Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		if comments[i].Timestamp != comments[j].Timestamp {
			return comments[i].Timestamp > comments[j].Timestamp
		}
		return comments[i].ID > comments[j].ID
	})
}
