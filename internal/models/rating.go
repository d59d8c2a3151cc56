package models

import (
	"encoding/json"
	"strconv"
)

// Rating limits
const (
	MinRating = 1
	MaxRating = 5
)

// Rating is one immutable vote on an article. Value is kept as raw JSON so
// malformed entries written by other clients survive a round trip and can be
// filtered out of aggregates.
type Rating struct {
	ID        string          `json:"-" db:"id"`
	ArticleID string          `json:"-" db:"article_id"`
	Value     json.RawMessage `json:"value" db:"value"`
	Timestamp int64           `json:"timestamp" db:"timestamp_ms"`
}

// NewRating builds a rating entry with an integer value
func NewRating(articleID string, value int, timestamp int64) *Rating {
	return &Rating{
		ArticleID: articleID,
		Value:     json.RawMessage(strconv.Itoa(value)),
		Timestamp: timestamp,
	}
}

// Numeric returns the rating value when it is a JSON number
func (r *Rating) Numeric() (float64, bool) {
	if r == nil || len(r.Value) == 0 {
		return 0, false
	}
	var v interface{}
	if err := json.Unmarshal(r.Value, &v); err != nil {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// RatingSummary is the aggregate shown next to an article
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Empty reports whether there is nothing to average
func (s RatingSummary) Empty() bool {
	return s.Count == 0
}

// Summarize averages every numeric rating value; anything else is ignored
func Summarize(ratings []*Rating) RatingSummary {
	var sum float64
	count := 0
	for _, r := range ratings {
		v, ok := r.Numeric()
		if !ok {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return RatingSummary{}
	}
	return RatingSummary{Average: sum / float64(count), Count: count}
}
