package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/katatrina/complaint-BE/internal/event"
	"github.com/katatrina/complaint-BE/internal/token"
	"github.com/lithammer/shortuuid/v4"
	"github.com/rs/zerolog/log"
)

const socketWriteTimeout = 10 * time.Second

const (
	socketActionJoin  = "join"
	socketActionLeave = "leave"
)

// socketFrame is what clients send over the socket.
type socketFrame struct {
	Action     string `json:"action"`
	ChatroomID string `json:"chatroomId"`
}

// serveSocket authenticates the handshake, then streams hub events to the connection
// until either side goes away.
func (server *Server) serveSocket(c *gin.Context) {
	payload, err := verifyToken(c, server.tokenMaker, server.blacklist, socketToken(c.Request))
	if err != nil {
		log.Warn().Err(err).Str("remote", c.ClientIP()).Msg("socket handshake rejected")
		c.JSON(http.StatusUnauthorized, errorResponse(ErrUnauthorized))
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(server.config.AllowedOrigins),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to accept socket")
		return
	}
	defer conn.CloseNow()

	client := event.NewClient(shortuuid.New(), payload.Subject, payload.Role)
	server.hub.Register(client)
	defer server.hub.Unregister(client)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	go func() {
		defer cancel()
		server.readSocketFrames(ctx, conn, client)
	}()

	for {
		select {
		case ev, ok := <-client.Events():
			if !ok {
				return
			}
			writeCtx, writeCancel := context.WithTimeout(ctx, socketWriteTimeout)
			err = wsjson.Write(writeCtx, conn, ev)
			writeCancel()
			if err != nil {
				log.Debug().Err(err).Str("client", client.ID).Msg("socket write failed")
				return
			}
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}
	}
}

func (server *Server) readSocketFrames(ctx context.Context, conn *websocket.Conn, client *event.Client) {
	for {
		var frame socketFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				log.Debug().Err(err).Str("client", client.ID).Msg("socket read failed")
			}
			return
		}

		if frame.ChatroomID == "" {
			continue
		}
		channel := event.ChatroomChannel(frame.ChatroomID)

		switch frame.Action {
		case socketActionJoin:
			if !canJoinChatroom(client.Role) {
				log.Warn().Str("client", client.ID).Str("role", client.Role).Str("chatroom", frame.ChatroomID).
					Msg("chatroom join refused")
				continue
			}
			server.hub.Join(client, channel)
		case socketActionLeave:
			server.hub.Leave(client, channel)
		default:
			log.Debug().Str("client", client.ID).Str("action", frame.Action).Msg("unknown socket action")
		}
	}
}

// canJoinChatroom limits chatroom channels to staff.
func canJoinChatroom(role string) bool {
	switch role {
	case token.RoleSuperAdmin, token.RoleAdmin, token.RoleOfficer:
		return true
	}
	return false
}

// socketToken reads the handshake token from the query string or the Authorization header.
func socketToken(r *http.Request) string {
	query := r.URL.Query()

	accessToken := query.Get("token")
	if accessToken == "" {
		accessToken = query.Get("auth")
	}
	if accessToken == "" {
		accessToken = r.Header.Get(authorizationHeaderKey)
	}

	accessToken = strings.TrimSpace(accessToken)
	return strings.TrimSpace(strings.TrimPrefix(accessToken, authorizationTypeBearer+" "))
}

// originPatterns converts allowed CORS origins into the host patterns the socket handshake checks.
func originPatterns(allowedOrigins []string) []string {
	patterns := make([]string, 0, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			patterns = append(patterns, origin)
			continue
		}
		parsed, err := url.Parse(origin)
		if err != nil || parsed.Host == "" {
			continue
		}
		patterns = append(patterns, parsed.Host)
	}
	return patterns
}
