package notifier

import (
	"net/http"

	"github.com/katatrina/complaint-BE/internal/token"
)

// Trigger is the report operation that caused a notification.
type Trigger string

const (
	TriggerAssignAdmin      Trigger = "assign-admin"
	TriggerRevokeAdmin      Trigger = "revoke-admin"
	TriggerResolve          Trigger = "resolve"
	TriggerClose            Trigger = "close"
	TriggerChatroomInitiate Trigger = "chatroom-initiate"
)

// AcceptsStatus reports whether a forwarded response with this status should notify anyone.
// A revoke answered with 422 still means the officer is no longer assigned.
func (t Trigger) AcceptsStatus(code int) bool {
	if code >= http.StatusOK && code < http.StatusMultipleChoices {
		return true
	}
	return t == TriggerRevokeAdmin && code == http.StatusUnprocessableEntity
}

// Task is one unit of post-response work. It is consumed once and never retried.
type Task struct {
	Trigger        Trigger
	ReportID       string
	Principal      token.Principal
	Authorization  string
	RequestBody    []byte
	ResponseStatus int
	ResponseBody   []byte
}
