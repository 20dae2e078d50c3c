package proxy

import (
	"context"
	"errors"
	"testing"

	"github.com/katatrina/complaint-BE/internal/db"
	"github.com/katatrina/complaint-BE/internal/event"
	"github.com/katatrina/complaint-BE/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnricher_BodyDefaults(t *testing.T) {
	store := &fakeStore{users: map[string]db.User{
		"u1": {ID: "u1", Name: "Jane Doe"},
	}}
	enricher := NewEnricher(store, &fakeEmitter{})

	testCases := []struct {
		name     string
		action   Action
		body     string
		expected string
	}{
		{"assign resolves admin name", ActionAssignAdmin, `{"adminId":"u1"}`, `{"adminId":"u1","adminName":"Jane Doe","initiatorName":"Admin"}`},
		{"assign unknown admin", ActionAssignAdmin, `{"adminId":"ghost","initiatorName":"Dean"}`, `{"adminId":"ghost","initiatorName":"Dean"}`},
		{"assign empty body", ActionAssignAdmin, ``, `{"initiatorName":"Admin"}`},
		{"revoke keeps initiator", ActionRevokeAdmin, `{"initiatorName":"Dean"}`, `{"initiatorName":"Dean"}`},
		{"resolve non-object body", ActionResolve, `[1]`, `{"initiatorName":"Admin"}`},
		{"close fills reason", ActionClose, `{}`, `{"initiatorName":"Admin","reason":"Closed by admin"}`},
		{"close keeps reason", ActionClose, `{"reason":"Duplicate","initiatorName":null}`, `{"reason":"Duplicate","initiatorName":"Admin"}`},
		{"other actions untouched", ActionNone, `not json`, `not json`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := &Request{Body: []byte(tc.body)}
			enricher.Enrich(context.Background(), Match{Action: tc.action, ReportID: "r1"}, req)
			if tc.action == ActionNone {
				assert.Equal(t, tc.expected, string(req.Body))
				return
			}
			assert.JSONEq(t, tc.expected, string(req.Body))
		})
	}
}

func TestEnricher_ChatSendPersistsAndEmits(t *testing.T) {
	store := &fakeStore{}
	emitter := &fakeEmitter{}
	enricher := NewEnricher(store, emitter)
	m := Match{Action: ActionChatSend, ReportID: "r1", ChatroomID: "c9"}

	for _, text := range []string{"hello", "again"} {
		req := &Request{
			Body:      []byte(`{"message":"` + text + `","receiverId":"s1","attachments":["https://files/a.png"]}`),
			Principal: token.Principal{ID: "u1"},
		}
		enricher.Enrich(context.Background(), m, req)
	}

	require.Len(t, store.messages, 2)
	assert.Equal(t, "r1", store.messages[0].ReportID)
	assert.Equal(t, "c9", store.messages[0].ChatroomID)
	assert.Equal(t, "u1", store.messages[0].SenderID)
	assert.Equal(t, "s1", store.messages[0].ReceiverID)
	assert.Equal(t, "hello", store.messages[0].Message)
	assert.Equal(t, []string{"https://files/a.png"}, store.messages[0].Attachments)
	assert.Equal(t, "again", store.messages[1].Message)

	require.Len(t, emitter.events, 2)
	for _, e := range emitter.events {
		assert.Equal(t, event.ChatroomChannel("c9"), e.channel)
		assert.Equal(t, event.EventChatNewMessage, e.event.Name)
	}
	data := emitter.events[1].event.Data.(map[string]interface{})
	assert.Equal(t, "r1", data["complaintId"])
	msg := data["message"].(db.ChatMessage)
	assert.Equal(t, "again", msg.Message)
}

func TestEnricher_ChatSendPersistFailureSkipsEmit(t *testing.T) {
	store := &fakeStore{createErr: errors.New("firestore down")}
	emitter := &fakeEmitter{}
	enricher := NewEnricher(store, emitter)

	req := &Request{Body: []byte(`{"message":"hi"}`)}
	enricher.Enrich(context.Background(), Match{Action: ActionChatSend, ReportID: "r1", ChatroomID: "c9"}, req)

	assert.Empty(t, emitter.events)
	assert.JSONEq(t, `{"message":"hi"}`, string(req.Body))
}
