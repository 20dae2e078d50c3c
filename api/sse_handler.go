package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/complaint-BE/internal/event"
	"github.com/katatrina/complaint-BE/internal/token"
	"github.com/lithammer/shortuuid/v4"
)

// streamEvents delivers the same events as the socket over Server-Sent Events,
// for clients that cannot hold a WebSocket open.
func (server *Server) streamEvents(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	// SSE headers
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	client := event.NewClient(shortuuid.New(), authPayload.Subject, authPayload.Role)
	server.hub.Register(client)
	defer server.hub.Unregister(client)

	for {
		select {
		case ev, ok := <-client.Events():
			if !ok {
				return
			}
			data, _ := json.Marshal(ev.Data)
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Name, data)
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}
