package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/article-engagement-api/internal/widget"
	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
)

const (
	// keepAliveEvent is sent when a stream has been idle for the keep-alive period
	keepAliveEvent = "keepalive"
	// lastEventIDHeader is set by EventSource when it reconnects a stream
	lastEventIDHeader = "Last-Event-ID"
)

// sseDocument is a page whose elements live in the client. Every SetHTML on
// one of its elements becomes an event named after the element id.
type sseDocument struct {
	ctx    context.Context
	ids    map[string]bool
	events chan sse.Event
}

func newSSEDocument(ctx context.Context, ids ...string) *sseDocument {
	d := &sseDocument{
		ctx:    ctx,
		ids:    make(map[string]bool, len(ids)),
		events: make(chan sse.Event, 32),
	}
	for _, id := range ids {
		d.ids[id] = true
	}
	return d
}

// Element implements widget.Document
func (d *sseDocument) Element(id string) (widget.Element, bool) {
	if !d.ids[id] {
		return nil, false
	}
	return widget.ElementFunc(func(markup string) {
		select {
		case d.events <- sse.Event{Event: id, Data: markup}:
		case <-d.ctx.Done():
		}
	}), true
}

// stream writes the document's events to the client until ctx ends.
// Element events carry increasing ids so a reconnecting client announces
// itself with Last-Event-ID.
func (d *sseDocument) stream(c *gin.Context, keepAlive time.Duration) {
	h := c.Writer.Header()
	h.Set("Content-Type", sse.ContentType)
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	var tick <-chan time.Time
	if keepAlive > 0 {
		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()
		tick = ticker.C
	}

	var seq uint64
	for {
		var ev sse.Event
		select {
		case <-d.ctx.Done():
			return
		case ev = <-d.events:
			seq++
			ev.Id = strconv.FormatUint(seq, 10)
		case <-tick:
			ev = sse.Event{Event: keepAliveEvent, Data: ""}
		}

		if err := sse.Encode(c.Writer, ev); err != nil {
			return
		}
		c.Writer.Flush()
	}
}
