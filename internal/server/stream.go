package server

import (
	"fmt"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/multielectric/mesupply/internal/models"
)

// heartbeatInterval keeps intermediaries from closing idle streams.
const heartbeatInterval = 15 * time.Second

// streamBuffer is the per-client event buffer. A client that cannot drain it
// loses events rather than stalling the publisher.
const streamBuffer = 16

// streamOrders is the long-lived per-client push stream. It bridges the hub
// to an SSE response: the subscribed listener only does a non-blocking send
// into this client's buffered channel, so one stalled client never affects
// publication to the others. Listener and heartbeat are torn down together
// whether the client disconnects cleanly or the transport errors.
func (s *Server) streamOrders(c *gin.Context) {
	ch := make(chan models.OrderEvent, streamBuffer)
	sub := s.hub.Subscribe(func(ev models.OrderEvent) {
		select {
		case ch <- ev:
		default:
			// Slow client; drop instead of blocking the publisher.
		}
	})
	defer s.hub.Unsubscribe(sub)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache, no-transform")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Writer.WriteString(": connected\n\n")
	c.Writer.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case ev := <-ch:
			if err := sse.Encode(c.Writer, sse.Event{Data: ev}); err != nil {
				return
			}
			c.Writer.Flush()
		case t := <-heartbeat.C:
			fmt.Fprintf(c.Writer, ": keepalive %d\n\n", t.UnixMilli())
			c.Writer.Flush()
		}
	}
}
