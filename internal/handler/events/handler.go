// Package events streams collection-change signals to connected clients.
package events

import (
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/testra/backoffice-api/internal/handler"
	"github.com/testra/backoffice-api/pkg/messaging"
)

const keepaliveInterval = 30 * time.Second

var defaultCollections = []string{"appointments", "companies", "notifications"}

type Handler struct {
	broker messaging.Broker
}

func NewHandler(broker messaging.Broker) *Handler {
	return &Handler{broker: broker}
}

// Stream holds an SSE connection open and forwards change signals for the
// requested collections. The payload carries only the collection name:
// clients respond by re-fetching the full result set, so a dropped or
// reordered signal can never leave them showing partial state.
func (h *Handler) Stream(c *gin.Context) {
	collections := defaultCollections
	if raw := c.Query("collections"); raw != "" {
		collections = strings.Split(raw, ",")
	}

	ctx := c.Request.Context()
	changed := make(chan string, 8)

	for _, collection := range collections {
		collection = strings.TrimSpace(collection)
		if collection == "" {
			continue
		}
		msgs, err := h.broker.Subscribe(ctx, messaging.CollectionChannel(collection))
		if err != nil {
			handler.RespondError(c, err)
			return
		}
		go func(name string, msgs <-chan []byte) {
			for range msgs {
				select {
				case changed <- name:
				case <-ctx.Done():
					return
				}
			}
		}(collection, msgs)
	}

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case name := <-changed:
			c.SSEvent("change", gin.H{"collection": name})
			return true
		case <-keepalive.C:
			c.SSEvent("ping", nil)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
