package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/katatrina/complaint-BE/internal/event"
	"github.com/katatrina/complaint-BE/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func socketURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http") + "/socket"
}

func waitForClients(t *testing.T, hub *event.Hub, n int) {
	require.Eventually(t, func() bool { return hub.ClientCount() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestSocket_RejectsMissingOrInvalidToken(t *testing.T) {
	server := newTestServer(t, nil)
	ts := httptest.NewServer(server.router)
	defer ts.Close()

	for _, query := range []string{"", "?token=garbage"} {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, resp, err := websocket.Dial(ctx, socketURL(ts.URL)+query, nil)
		cancel()

		require.Error(t, err, query)
		require.NotNil(t, resp, query)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, query)
	}
}

func TestSocket_ReceivesBroadcastAndTargetedEvents(t *testing.T) {
	server := newTestServer(t, nil)
	ts := httptest.NewServer(server.router)
	defer ts.Close()

	accessToken := createToken(t, server, token.Principal{ID: "user-1", Role: token.RoleAdmin})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, socketURL(ts.URL)+"?token=Bearer%20"+accessToken, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	waitForClients(t, server.hub, 1)

	server.hub.Broadcast(event.Event{Name: event.EventComplaintStatus, Data: map[string]string{"complaintId": "r1", "status": "Resolved"}})

	var frame struct {
		Event string            `json:"event"`
		Data  map[string]string `json:"data"`
	}
	require.NoError(t, wsjson.Read(ctx, conn, &frame))
	assert.Equal(t, event.EventComplaintStatus, frame.Event)
	assert.Equal(t, "Resolved", frame.Data["status"])

	server.hub.EmitTo("user-1", event.Event{Name: event.EventComplaintAssignment, Data: map[string]string{"complaintId": "r1"}})
	require.NoError(t, wsjson.Read(ctx, conn, &frame))
	assert.Equal(t, event.EventComplaintAssignment, frame.Event)

	conn.Close(websocket.StatusNormalClosure, "")
	waitForClients(t, server.hub, 0)
}

func TestSocket_JoinChatroom(t *testing.T) {
	server := newTestServer(t, nil)
	ts := httptest.NewServer(server.router)
	defer ts.Close()

	accessToken := createToken(t, server, token.Principal{ID: "officer-1", Role: token.RoleOfficer})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	header := http.Header{}
	header.Set(authorizationHeaderKey, "Bearer "+accessToken)
	conn, _, err := websocket.Dial(ctx, socketURL(ts.URL), &websocket.DialOptions{HTTPHeader: header})
	require.NoError(t, err)
	defer conn.CloseNow()

	waitForClients(t, server.hub, 1)
	require.NoError(t, wsjson.Write(ctx, conn, socketFrame{Action: socketActionJoin, ChatroomID: "c1"}))

	channel := event.ChatroomChannel("c1")
	// The join is processed asynchronously; keep emitting until the first message lands.
	received := make(chan string, 1)
	go func() {
		var frame struct {
			Event string `json:"event"`
		}
		if err := wsjson.Read(ctx, conn, &frame); err == nil {
			received <- frame.Event
		}
	}()

	require.Eventually(t, func() bool {
		server.hub.EmitTo(channel, event.Event{Name: event.EventChatNewMessage})
		select {
		case name := <-received:
			return name == event.EventChatNewMessage
		default:
			return false
		}
	}, 2*time.Second, 20*time.Millisecond)
}

func TestSocket_StudentCannotJoinChatroom(t *testing.T) {
	server := newTestServer(t, nil)
	ts := httptest.NewServer(server.router)
	defer ts.Close()

	accessToken := createToken(t, server, token.Principal{ID: "student-1", Role: token.RoleStudent})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, socketURL(ts.URL)+"?token="+accessToken, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	waitForClients(t, server.hub, 1)
	require.NoError(t, wsjson.Write(ctx, conn, socketFrame{Action: socketActionJoin, ChatroomID: "c1"}))

	channel := event.ChatroomChannel("c1")
	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) {
		server.hub.EmitTo(channel, event.Event{Name: event.EventChatNewMessage})
		time.Sleep(20 * time.Millisecond)
	}
	server.hub.Broadcast(event.Event{Name: event.EventComplaintStatus})

	var frame struct {
		Event string `json:"event"`
	}
	require.NoError(t, wsjson.Read(ctx, conn, &frame))
	assert.Equal(t, event.EventComplaintStatus, frame.Event, "chatroom events must not reach a student")
}

func TestCanJoinChatroom(t *testing.T) {
	assert.True(t, canJoinChatroom(token.RoleSuperAdmin))
	assert.True(t, canJoinChatroom(token.RoleAdmin))
	assert.True(t, canJoinChatroom(token.RoleOfficer))
	assert.False(t, canJoinChatroom(token.RoleStudent))
	assert.False(t, canJoinChatroom(""))
}

func TestSocketToken(t *testing.T) {
	testCases := []struct {
		name     string
		target   string
		header   string
		expected string
	}{
		{"token query", "/socket?token=abc", "", "abc"},
		{"auth query with bearer", "/socket?auth=Bearer%20abc", "", "abc"},
		{"header", "/socket", "Bearer abc", "abc"},
		{"query wins", "/socket?token=q", "Bearer h", "q"},
		{"missing", "/socket", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				request.Header.Set(authorizationHeaderKey, tc.header)
			}
			assert.Equal(t, tc.expected, socketToken(request))
		})
	}
}

func TestOriginPatterns(t *testing.T) {
	patterns := originPatterns([]string{"http://localhost:3000", "https://admin.uni.edu", "*", "::bad"})
	assert.Equal(t, []string{"localhost:3000", "admin.uni.edu", "*"}, patterns)
}
