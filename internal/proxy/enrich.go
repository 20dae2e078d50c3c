package proxy

import (
	"context"
	"errors"

	"github.com/katatrina/complaint-BE/internal/db"
	"github.com/katatrina/complaint-BE/internal/event"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	DefaultInitiatorName = "Admin"
	DefaultCloseReason   = "Closed by admin"
)

// Enricher augments outgoing request bodies with locally known facts. It never fails a request.
type Enricher struct {
	store  db.Store
	events event.Emitter
}

func NewEnricher(store db.Store, events event.Emitter) *Enricher {
	return &Enricher{
		store:  store,
		events: events,
	}
}

// Enrich mutates req.Body in place according to the matched action.
func (e *Enricher) Enrich(ctx context.Context, m Match, req *Request) {
	switch m.Action {
	case ActionAssignAdmin:
		req.Body = ensureObject(req.Body)
		req.Body = e.resolveAdminName(ctx, req.Body)
		req.Body = setDefault(req.Body, "initiatorName", DefaultInitiatorName)
	case ActionRevokeAdmin, ActionResolve:
		req.Body = ensureObject(req.Body)
		req.Body = setDefault(req.Body, "initiatorName", DefaultInitiatorName)
	case ActionClose:
		req.Body = ensureObject(req.Body)
		req.Body = setDefault(req.Body, "initiatorName", DefaultInitiatorName)
		req.Body = setDefault(req.Body, "reason", DefaultCloseReason)
	case ActionChatSend:
		e.persistChatMessage(ctx, m, req)
	}
}

func (e *Enricher) resolveAdminName(ctx context.Context, body []byte) []byte {
	adminID := gjson.GetBytes(body, "adminId").String()
	if adminID == "" {
		return body
	}

	admin, err := e.store.GetUserByID(ctx, adminID)
	if err != nil {
		if !errors.Is(err, db.ErrRecordNotFound) {
			log.Warn().Err(err).Str("adminId", adminID).Msg("failed to resolve admin name")
		}
		return body
	}
	if admin.Name == "" {
		return body
	}

	updated, err := sjson.SetBytes(body, "adminName", admin.Name)
	if err != nil {
		log.Warn().Err(err).Msg("failed to set adminName")
		return body
	}
	return updated
}

// persistChatMessage stores the message locally and pushes it to the chatroom channel.
// Failures are logged; the message is still forwarded.
func (e *Enricher) persistChatMessage(ctx context.Context, m Match, req *Request) {
	body := gjson.ParseBytes(req.Body)

	var attachments []string
	for _, a := range body.Get("attachments").Array() {
		if url := a.String(); url != "" {
			attachments = append(attachments, url)
		}
	}

	senderID := body.Get("senderId").String()
	if senderID == "" {
		senderID = req.Principal.ID
	}

	msg, err := e.store.CreateChatMessage(ctx, db.CreateChatMessageParams{
		ReportID:    m.ReportID,
		ChatroomID:  m.ChatroomID,
		SenderID:    senderID,
		ReceiverID:  body.Get("receiverId").String(),
		Message:     body.Get("message").String(),
		Attachments: attachments,
	})
	if err != nil {
		log.Error().Err(err).Str("report", m.ReportID).Str("chatroom", m.ChatroomID).Msg("failed to persist chat message")
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("chatroom", m.ChatroomID).Msg("failed to emit chat message")
		}
	}()
	e.events.EmitTo(event.ChatroomChannel(m.ChatroomID), event.Event{
		Name: event.EventChatNewMessage,
		Data: map[string]interface{}{
			"complaintId": m.ReportID,
			"chatroomId":  m.ChatroomID,
			"message":     msg,
		},
	})
}

// ensureObject replaces anything that is not a JSON object with an empty object.
func ensureObject(body []byte) []byte {
	if gjson.ValidBytes(body) && gjson.ParseBytes(body).IsObject() {
		return body
	}
	return []byte(`{}`)
}

// setDefault sets key to value unless it already holds a non-empty value.
func setDefault(body []byte, key string, value string) []byte {
	if current := gjson.GetBytes(body, key); current.Exists() && current.Type != gjson.Null && current.String() != "" {
		return body
	}

	updated, err := sjson.SetBytes(body, key, value)
	if err != nil {
		log.Warn().Err(err).Str("field", key).Msg("failed to set default field")
		return body
	}
	return updated
}
